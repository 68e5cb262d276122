package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConsumeVerificationTokenSQL flips the verified flag and clears the
// token in one statement keyed on the token itself. A replayed or
// never-issued token matches zero rows, so consumption cannot repeat.
var ConsumeVerificationTokenSQL = `UPDATE "users" AS "usr"
SET
	"is_email_verified" = TRUE,
	"email_verified_at" = ?,
	"verification_token" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."verification_token" = ?
) RETURNING *;`

// ReplaceAccountPasswordSQL swaps the password hash and clears both
// reset columns atomically, keyed on a reset token that is still live.
// A reader never observes a usable token next to the old password.
var ReplaceAccountPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"reset_password_token" = NULL,
	"reset_password_expires" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."reset_password_token" = ?
	AND "usr"."reset_password_expires" > ?
) RETURNING *;`

// SetResetWindowSQL overwrites the reset token and expiry together.
// Last writer wins; any previously emailed token stops matching.
var SetResetWindowSQL = `UPDATE "users" AS "usr"
SET
	"reset_password_token" = ?,
	"reset_password_expires" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]

	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	GetByVerificationToken(ctx context.Context, token string) (*Account, error)
	GetByLiveResetToken(ctx context.Context, token string, now time.Time) (*Account, error)

	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)

	ConsumeVerificationToken(ctx context.Context, token string, at time.Time) (*Account, error)
	ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string, at time.Time) (*Account, error)
	SetResetWindow(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	SetResetWindowTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expires time.Time) error
	ReplacePassword(ctx context.Context, token, passwordHash string, now time.Time) (*Account, error)
	ReplacePasswordTx(ctx context.Context, tx bun.IDB, token, passwordHash string, now time.Time) (*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *accounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	return a.getByColumn(ctx, tx, "email", email)
}

func (a *accounts) GetByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return a.getByColumn(ctx, a.db, "verification_token", token)
}

// GetByLiveResetToken filters out expired windows at query time; a token
// still sitting in storage past its expiry does not match.
func (a *accounts) GetByLiveResetToken(ctx context.Context, token string, now time.Time) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.reset_password_token = ?", token).
		Where("?TableAlias.reset_password_expires > ?", now).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record, criteria...)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	return created, nil
}

func (a *accounts) ConsumeVerificationToken(ctx context.Context, token string, at time.Time) (*Account, error) {
	return a.ConsumeVerificationTokenTx(ctx, a.db, token, at)
}

func (a *accounts) ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string, at time.Time) (*Account, error) {
	res, err := a.Repository.RawTx(ctx, tx, ConsumeVerificationTokenSQL, at, token)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound()
	}

	return res[0], nil
}

func (a *accounts) SetResetWindow(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	return a.SetResetWindowTx(ctx, a.db, id, token, expires)
}

func (a *accounts) SetResetWindowTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expires time.Time) error {
	res, err := a.Repository.RawTx(ctx, tx, SetResetWindowSQL, token, expires, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *accounts) ReplacePassword(ctx context.Context, token, passwordHash string, now time.Time) (*Account, error) {
	return a.ReplacePasswordTx(ctx, a.db, token, passwordHash, now)
}

func (a *accounts) ReplacePasswordTx(ctx context.Context, tx bun.IDB, token, passwordHash string, now time.Time) (*Account, error) {
	res, err := a.Repository.RawTx(ctx, tx, ReplaceAccountPasswordSQL, passwordHash, token, now)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound()
	}

	return res[0], nil
}

func (a *accounts) getByColumn(ctx context.Context, tx bun.IDB, column, value string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"column": column,
				})
		}
		return nil, err
	}

	return record, nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
