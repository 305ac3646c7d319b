package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/lborres/roster/core"
	"github.com/lborres/roster/pkg/logging"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string // empty uses err.Error()
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{core.ErrInvalidFederatedToken, http.StatusUnauthorized, "invalid_federated_token", "Google authentication failed"},
	{core.ErrDuplicateIdentity, http.StatusBadRequest, "duplicate_identity", "User already exists"},
	{core.ErrUserNotFound, http.StatusBadRequest, "user_not_found", "User not found"},
	{core.ErrWrongProvider, http.StatusBadRequest, "wrong_provider", "Please login with your original sign-in method"},
	{core.ErrBadCredential, http.StatusBadRequest, "bad_credential", "Invalid credentials"},
	{core.ErrInvalidSession, http.StatusUnauthorized, "invalid_session", "Invalid token"},
	{core.ErrMissingCredential, http.StatusForbidden, "missing_credential", "Token required"},
	{core.ErrRecordNotFound, http.StatusNotFound, "not_found", "Student not found"},
	{core.ErrInvalidBody, http.StatusBadRequest, "invalid_request", ""},
	{core.ErrEmailRequired, http.StatusBadRequest, "invalid_request", ""},
	{core.ErrInvalidEmail, http.StatusBadRequest, "invalid_request", ""},
	{core.ErrPasswordRequired, http.StatusBadRequest, "invalid_request", ""},
	{core.ErrPasswordTooLong, http.StatusBadRequest, "invalid_request", ""},
	{core.ErrNotImplemented, http.StatusNotImplemented, "not_implemented", "Google sign-in is not configured"},
}

// mapError returns the status, machine code and client-facing message for
// err. Unknown errors are internal and their text is never exposed.
func mapError(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = m.err.Error()
			}
			return m.status, m.code, msg
		}
	}
	return http.StatusInternalServerError, "internal", "Internal server error"
}

// writeError sends the JSON error body for err and logs server-side failures
// with their full cause.
func writeError(c fiber.Ctx, err error) error {
	status, code, msg := mapError(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Context()).Error("request failed",
			zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(core.ErrorResponse{Error: code, Message: msg})
}

// ErrorHandler is the app-level fiber.ErrorHandler: routing errors keep their
// status, everything else goes through the roster error mapping.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "invalid_request"
		switch fe.Code {
		case http.StatusNotFound:
			code = "not_found"
		case http.StatusMethodNotAllowed:
			code = "method_not_allowed"
		}
		if fe.Code >= http.StatusInternalServerError {
			code = "internal"
		}
		return c.Status(fe.Code).JSON(core.ErrorResponse{Error: code, Message: fe.Message})
	}
	return writeError(c, err)
}
