package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (e FinalizePasswordResetMessage) Type() string { return "account.password_reset_finalize" }

func (e FinalizePasswordResetMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Token, validation.Required),
		validation.Field(&e.Password, validation.Required),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload").
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}
	return nil
}

type FinalizePasswordResetHandler struct {
	repo   RepositoryManager
	logger Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(repo RepositoryManager) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	if err := event.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var err error

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		passwordHash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		// one statement swaps the hash and clears both reset columns,
		// keyed on a token whose expiry is still in the future; an
		// expired token is rejected even if it still sits in storage
		_, err = h.repo.Accounts().ReplacePasswordTx(ctx, tx, event.Token, passwordHash, time.Now())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidOrExpiredResetToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account password")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	return nil
}
