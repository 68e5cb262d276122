package auth

import (
	"os"
	"strconv"
)

// ServiceConfig is the concrete Config used by the deployed service.
// Values are injected at construction time; business logic never reads
// the environment directly.
type ServiceConfig struct {
	SigningKey      string
	SigningMethod   string
	ContextKey      string
	TokenExpiration int
	TokenLookup     string
	AuthScheme      string
	Issuer          string
	Audience        []string
}

var _ Config = (*ServiceConfig)(nil)

// NewConfigFromEnv builds a ServiceConfig from the process environment.
// The bearer token horizon defaults to 1 hour.
func NewConfigFromEnv() *ServiceConfig {
	expiration := 1
	if raw := os.Getenv("TOKEN_EXPIRATION_HOURS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			expiration = parsed
		}
	}

	return &ServiceConfig{
		SigningKey:      os.Getenv("JWT_SECRET"),
		SigningMethod:   "HS256",
		ContextKey:      "user",
		TokenExpiration: expiration,
		TokenLookup:     "header:Authorization",
		AuthScheme:      "Bearer",
		Issuer:          envOrDefault("JWT_ISSUER", "fin-flow"),
		Audience:        []string{},
	}
}

func (c *ServiceConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *ServiceConfig) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *ServiceConfig) GetContextKey() string {
	return c.ContextKey
}

func (c *ServiceConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *ServiceConfig) GetTokenLookup() string {
	return c.TokenLookup
}

func (c *ServiceConfig) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *ServiceConfig) GetIssuer() string {
	return c.Issuer
}

func (c *ServiceConfig) GetAudience() []string {
	return c.Audience
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
