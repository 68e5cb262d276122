package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type VerifyEmailMessage struct {
	Token      string `json:"token"`
	OnResponse func(resp *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "account.verify_email" }

type VerifyEmailResponse struct {
	Account *PublicAccount
	Success bool
}

type VerifyEmailHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	if event.Token == "" {
		return ErrInvalidVerificationToken
	}

	account := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// the update is keyed on the token: a consumed token matches
		// zero rows and fails exactly like a token that never existed
		account, err = h.repo.Accounts().ConsumeVerificationTokenTx(ctx, tx, event.Token, time.Now())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidVerificationToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume verification token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify email")
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyEmailResponse{
			Account: account.Public(),
			Success: true,
		})
	}

	return nil
}
