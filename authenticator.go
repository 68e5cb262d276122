package auth

import (
	"context"
	"reflect"
)

type Auther struct {
	provider     IdentityProvider
	signingKey   []byte
	logger       Logger
	tokenService TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		signingKey:   []byte(opts.GetSigningKey()),
		logger:       defLogger{},
		tokenService: tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and issues a signed bearer token. The
// returned Identity lets callers build their response projection.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Debug("Login verify identity rejected", "error", err)
		return "", nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation failed", "error", err)
		return "", nil, err
	}

	return token, identity, nil
}

// SessionFromToken validates a bearer token and projects its claims
// into a session
func (s Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Debug("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

var _ Authenticator = (*Auther)(nil)
