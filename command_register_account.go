package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterAccountMessage struct {
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirm_password"`
	Role            AccountRole `json:"role"`
	UseHashid       bool
	OnResponse      func(resp *RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// Validate runs the pre-I/O checks: violations never touch the store.
func (e RegisterAccountMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.FirstName, validation.Required),
		validation.Field(&e.LastName, validation.Required),
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.Password, validation.Required),
		validation.Field(
			&e.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(e.Password)),
		),
		validation.Field(
			&e.Role,
			validation.Required,
			validation.In(RoleBorrower, RoleLender),
		),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload").
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}
	return nil
}

type RegisterAccountResponse struct {
	Account *PublicAccount
	Success bool
}

type RegisterAccountHandler struct {
	repo        RepositoryManager
	notifier    Notifier
	frontendURL string
	logger      Logger
}

// NewRegisterAccountHandler creates a handler with sane defaults.
func NewRegisterAccountHandler(repo RepositoryManager) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		repo:     repo,
		notifier: NewLogNotifier(nil),
		logger:   defLogger{},
	}
}

// WithNotifier sets the transport used for the verification email.
func (h *RegisterAccountHandler) WithNotifier(n Notifier, frontendURL string) *RegisterAccountHandler {
	if n != nil {
		h.notifier = n
	}
	h.frontendURL = frontendURL
	return h
}

func (h *RegisterAccountHandler) WithLogger(logger Logger) *RegisterAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	if err := event.Validate(); err != nil {
		return err
	}

	account := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	verificationToken, err := MintToken()
	if err != nil {
		return err
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		account.PasswordHash = hash
		account.Email = event.Email
		account.FirstName = event.FirstName
		account.LastName = event.LastName
		account.Role = event.Role
		account.VerificationToken = &verificationToken
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				account.ID = id
			}
		}

		if account, err = h.repo.Accounts().CreateTx(ctx, tx, account); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	// delivery is best-effort: the account stands even if every
	// transport fails
	go func() {
		msg := VerificationEmail(h.frontendURL, account.Email, verificationToken)
		if err := h.notifier.Send(context.Background(), msg); err != nil {
			h.logger.Error("verification email delivery failed: %v", err)
		}
	}()

	if event.OnResponse != nil {
		event.OnResponse(&RegisterAccountResponse{
			Account: account.Public(),
			Success: true,
		})
	}

	return nil
}
