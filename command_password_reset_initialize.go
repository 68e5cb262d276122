package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ResetRequestedMessage is the generic outcome for every reset request,
// found or not, so callers cannot probe which emails exist.
const ResetRequestedMessage = "If a user with that email exists, a password reset link has been sent."

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (e InitializePasswordResetMessage) Type() string { return "account.password_reset" }

func (e InitializePasswordResetMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, is.Email),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload").
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}
	return nil
}

type InitializePasswordResetResponse struct {
	Message string
	Success bool
}

type InitializePasswordResetHandler struct {
	repo        RepositoryManager
	notifier    Notifier
	frontendURL string
	logger      Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:     repo,
		notifier: NewLogNotifier(nil),
		logger:   defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithNotifier(n Notifier, frontendURL string) *InitializePasswordResetHandler {
	if n != nil {
		h.notifier = n
	}
	h.frontendURL = frontendURL
	return h
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	if err := event.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resetToken, err := MintToken()
	if err != nil {
		return err
	}

	found := false

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		account, err := h.repo.Accounts().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				// generic success: indistinguishable from the found
				// case, only no email goes out
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
		}

		found = true

		// overwrite unconditionally: only the latest emailed token is
		// valid, prior windows are implicitly invalidated
		expires := ResetTokenExpiry(time.Now())
		if err := h.repo.Accounts().SetResetWindowTx(ctx, tx, account.ID, resetToken, expires); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open password reset window")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	if found {
		go func() {
			msg := PasswordResetEmail(h.frontendURL, event.Email, resetToken)
			if err := h.notifier.Send(context.Background(), msg); err != nil {
				h.logger.Error("password reset email delivery failed: %v", err)
			}
		}()
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{
			Message: ResetRequestedMessage,
			Success: true,
		})
	}

	return nil
}
