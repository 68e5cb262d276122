package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// AccountFinder is the slice of the store the provider needs
type AccountFinder interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

// AccountProvider resolves identities for login. It returns the same
// low-information error for an unknown email and a wrong password, and
// runs a throwaway hash comparison on the unknown-email path so the two
// failures are not distinguishable by timing either.
type AccountProvider struct {
	store AccountFinder
	// RequireVerifiedEmail blocks login for unverified accounts. It is
	// a deployment policy set at construction time, never read from the
	// environment inside the verification path.
	RequireVerifiedEmail bool
	logger               Logger
	placeholderHash      string
}

// NewAccountProvider will create a new AccountProvider
func NewAccountProvider(store AccountFinder) *AccountProvider {
	return &AccountProvider{
		store:           store,
		logger:          defLogger{},
		placeholderHash: RandomPasswordHash(),
	}
}

func (p *AccountProvider) WithLogger(l Logger) *AccountProvider {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithVerifiedEmailPolicy toggles the verified-email-before-login gate.
func (p *AccountProvider) WithVerifiedEmailPolicy(required bool) *AccountProvider {
	p.RequireVerifiedEmail = required
	return p
}

// VerifyIdentity will find the account, compare the password, and
// return the identity
func (p *AccountProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	account, err := p.store.GetByEmail(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// burn a comparison so the miss costs as much as a mismatch
			_ = ComparePasswordAndHash(password, p.placeholderHash)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	if p.RequireVerifiedEmail && !account.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return identityFromAccount(account), nil
}

func (p *AccountProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	account, err := p.store.GetByEmail(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return identityFromAccount(account), nil
}

type accountIdentity struct {
	id    string
	email string
	role  string
}

func (a accountIdentity) ID() string {
	return a.id
}

func (a accountIdentity) Email() string {
	return a.email
}

func (a accountIdentity) Role() string {
	return a.role
}

var _ Identity = accountIdentity{}

func identityFromAccount(account *Account) Identity {
	return accountIdentity{
		id:    account.ID.String(),
		email: account.Email,
		role:  string(account.Role),
	}
}
