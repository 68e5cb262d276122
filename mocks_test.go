package auth_test

import (
	"context"
	"database/sql"
	"time"

	auth "github.com/ASANIYAN/fin-flow-backend"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockRepositoryManager implements auth.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// RunInTx invokes the transaction body with a zero bun.Tx so
// repository expectations inside the body are exercised, and
// propagates the body's error. A configured non-nil return
// short-circuits without running the body.
func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}
	var tx bun.Tx
	return f(ctx, tx)
}

func (m *MockRepositoryManager) Accounts() auth.Accounts {
	args := m.Called()
	return args.Get(0).(auth.Accounts)
}

// MockAccounts implements auth.Accounts for the methods the handlers
// touch; the embedded interface covers the rest of the repository
// surface without mocking it.
type MockAccounts struct {
	mock.Mock
	auth.Accounts
}

func (m *MockAccounts) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *MockAccounts) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *MockAccounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.Account, error) {
	args := m.Called(ctx, tx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *MockAccounts) CreateTx(ctx context.Context, tx bun.IDB, record *auth.Account, criteria ...repository.InsertCriteria) (*auth.Account, error) {
	args := m.Called(ctx, tx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *MockAccounts) ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string, at time.Time) (*auth.Account, error) {
	args := m.Called(ctx, tx, token, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *MockAccounts) SetResetWindowTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expires time.Time) error {
	args := m.Called(ctx, tx, id, token, expires)
	return args.Error(0)
}

func (m *MockAccounts) ReplacePasswordTx(ctx context.Context, tx bun.IDB, token, passwordHash string, now time.Time) (*auth.Account, error) {
	args := m.Called(ctx, tx, token, passwordHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

// MockNotifier implements auth.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, msg auth.Email) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (string, auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(1).(auth.Identity)
	return args.String(0), identity, args.Error(2)
}

func (m *MockAuthenticator) SessionFromToken(token string) (auth.Session, error) {
	args := m.Called(token)
	session, _ := args.Get(0).(auth.Session)
	return session, args.Error(1)
}

type testIdentity struct {
	id    string
	email string
	role  string
}

func (i testIdentity) ID() string    { return i.id }
func (i testIdentity) Email() string { return i.email }
func (i testIdentity) Role() string  { return i.role }
