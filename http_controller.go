package auth

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// RegisterAuthRoutes mounts the account lifecycle endpoints
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	app.Post(controller.Routes.Signup, controller.RegistrationCreate)
	app.Get(controller.Routes.VerifyEmail, controller.VerifyEmail)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.ForgotPassword, controller.PasswordResetPost)
	app.Post(controller.Routes.ResetPassword, controller.PasswordResetExecute)
	app.Get(controller.Routes.Me, ProtectedRoute(controller.Auther, controller.Config), controller.Me)
}

type AuthControllerRoutes struct {
	Signup         string
	VerifyEmail    string
	Login          string
	ForgotPassword string
	ResetPassword  string
	Me             string
}

type AuthController struct {
	Logger      Logger
	Repo        RepositoryManager
	Auther      Authenticator
	Config      Config
	Notifier    Notifier
	FrontendURL string
	Routes      *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Signup:         "/signup",
			VerifyEmail:    "/verify-email",
			Login:          "/login",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
			Me:             "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator, cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		c.Config = cfg
		return c
	}
}

func WithControllerNotifier(n Notifier, frontendURL string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Notifier = n
		c.FrontendURL = frontendURL
		return c
	}
}

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func (a *AuthController) RegistrationCreate(ctx *fiber.Ctx) error {
	payload := new(RegisterAccountMessage)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("register account parse payload: %v", err)
		return RespondError(ctx, a.Logger, goerrors.Wrap(err, goerrors.CategoryBadInput, "Failed to parse request body"))
	}

	var res *RegisterAccountResponse
	payload.OnResponse = func(resp *RegisterAccountResponse) {
		res = resp
	}

	registerAccount := NewRegisterAccountHandler(a.Repo).
		WithNotifier(a.Notifier, a.FrontendURL).
		WithLogger(a.Logger)

	if err := registerAccount.Execute(ctx.Context(), *payload); err != nil {
		a.Logger.Error("register account error: %v", err)
		return RespondError(ctx, a.Logger, err)
	}

	return RespondSuccess(ctx, http.StatusCreated, "User created successfully", res.Account)
}

func (a *AuthController) VerifyEmail(ctx *fiber.Ctx) error {
	token := ctx.Query("token")

	var res *VerifyEmailResponse
	input := VerifyEmailMessage{
		Token: token,
		OnResponse: func(resp *VerifyEmailResponse) {
			res = resp
		},
	}

	verifyEmail := NewVerifyEmailHandler(a.Repo).WithLogger(a.Logger)

	if err := verifyEmail.Execute(ctx.Context(), input); err != nil {
		a.Logger.Error("email verification error: %v", err)
		return RespondError(ctx, a.Logger, err)
	}

	return RespondSuccess(ctx, http.StatusOK, "Email verified successfully", res.Account)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "Email and password are required").
			WithMetadata(map[string]any{"fields": FormatValidationErrorToMap(err)})
	}
	return nil
}

func (a *AuthController) LoginPost(ctx *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return RespondError(ctx, a.Logger, goerrors.Wrap(err, goerrors.CategoryBadInput, "Failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, a.Logger, err)
	}

	token, identity, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return RespondError(ctx, a.Logger, err)
	}

	account, err := a.Repo.Accounts().GetByEmail(ctx.Context(), identity.Email())
	if err != nil {
		return RespondError(ctx, a.Logger, err)
	}

	return RespondSuccess(ctx, http.StatusOK, "Login successful", fiber.Map{
		"token": token,
		"user":  account.Public(),
	})
}

func (a *AuthController) PasswordResetPost(ctx *fiber.Ctx) error {
	payload := new(InitializePasswordResetMessage)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("password reset parse payload: %v", err)
		return RespondError(ctx, a.Logger, goerrors.Wrap(err, goerrors.CategoryBadInput, "Failed to parse request body"))
	}

	var res *InitializePasswordResetResponse
	payload.OnResponse = func(resp *InitializePasswordResetResponse) {
		res = resp
	}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo).
		WithNotifier(a.Notifier, a.FrontendURL).
		WithLogger(a.Logger)

	if err := initPwdReset.Execute(ctx.Context(), *payload); err != nil {
		a.Logger.Error("password reset initialize error: %v", err)
		return RespondError(ctx, a.Logger, err)
	}

	return RespondSuccess(ctx, http.StatusOK, res.Message, nil)
}

func (a *AuthController) PasswordResetExecute(ctx *fiber.Ctx) error {
	payload := new(FinalizePasswordResetMessage)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("password reset parse payload: %v", err)
		return RespondError(ctx, a.Logger, goerrors.Wrap(err, goerrors.CategoryBadInput, "Failed to parse request body"))
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo).WithLogger(a.Logger)

	if err := finalizePwdReset.Execute(ctx.Context(), *payload); err != nil {
		a.Logger.Error("password reset finalize error: %v", err)
		return RespondError(ctx, a.Logger, err)
	}

	return RespondSuccess(ctx, http.StatusOK, "Password reset successful.", nil)
}

// Me returns the projection of the account behind the bearer token
func (a *AuthController) Me(ctx *fiber.Ctx) error {
	session, err := GetSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, a.Logger, err)
	}

	id, err := session.GetUserUUID()
	if err != nil {
		return RespondError(ctx, a.Logger, ErrUnableToDecodeSession)
	}

	account, err := a.Repo.Accounts().GetByID(ctx.Context(), id.String())
	if err != nil {
		return RespondError(ctx, a.Logger, err)
	}

	return RespondSuccess(ctx, http.StatusOK, "OK", account.Public())
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo field errors into a map
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, fieldErr := range fieldErrs {
			if fieldErr != nil {
				out[field] = fieldErr.Error()
			}
		}
		return out
	}
	if err != nil {
		out["error"] = err.Error()
	}
	return out
}
