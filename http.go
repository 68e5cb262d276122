package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// APIResponse is the uniform envelope every endpoint returns
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondSuccess writes the standardized success envelope
func RespondSuccess(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondError translates an error into the envelope. Rich errors map
// their category to a status; anything else becomes a 500 with a
// generic client message while the detail stays server-side.
func RespondError(c *fiber.Ctx, logger Logger, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		if logger != nil {
			logger.Error("unexpected error at operation boundary: %v", err)
		}
		return c.Status(http.StatusInternalServerError).JSON(APIResponse{
			Success: false,
			Message: "An unexpected error occurred",
			Error:   "An unexpected error occurred",
		})
	}

	status := statusFromCategory(richErr.Category)
	message := richErr.Message
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("internal error at operation boundary: %v", err)
		}
		message = "An unexpected error occurred"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Error:   message,
	})
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ProtectedRoute validates the bearer token on the request and stores
// the resulting session in locals under the configured context key.
func ProtectedRoute(auther Authenticator, cfg Config) fiber.Handler {
	scheme := cfg.GetAuthScheme()
	if scheme == "" {
		scheme = "Bearer"
	}
	contextKey := cfg.GetContextKey()
	if contextKey == "" {
		contextKey = "user"
	}

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return RespondError(c, nil, ErrUnableToFindSession)
		}

		raw := header
		if scheme != "" {
			prefix := scheme + " "
			if !strings.HasPrefix(header, prefix) {
				return RespondError(c, nil, ErrTokenMalformed)
			}
			raw = strings.TrimPrefix(header, prefix)
		}

		session, err := auther.SessionFromToken(raw)
		if err != nil {
			return RespondError(c, nil, err)
		}

		c.Locals(contextKey, session)
		return c.Next()
	}
}

// GetSession retrieves the session a ProtectedRoute middleware stored
func GetSession(c *fiber.Ctx, key string) (Session, error) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	session, ok := raw.(Session)
	if !ok {
		return nil, ErrUnableToDecodeSession
	}

	return session, nil
}
