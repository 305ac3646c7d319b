package fiber

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"

	"github.com/lborres/roster/core"
	"github.com/lborres/roster/pkg/logging"
)

const localsIdentity = "identity"

// requireAuth builds the middleware guarding protected routes. On success the
// caller's identity is stored in locals for the handlers.
func requireAuth(authorizer core.Authorizer) fiber.Handler {
	return func(c fiber.Ctx) error {
		identity, err := authorizer.Authorize(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return writeError(c, err)
		}

		c.Locals(localsIdentity, identity)
		c.SetContext(logging.Track(c.Context(), zap.String("user_id", identity.UserID)))

		return c.Next()
	}
}

func identityFrom(c fiber.Ctx) (core.Identity, bool) {
	identity, ok := c.Locals(localsIdentity).(core.Identity)
	return identity, ok && identity.UserID != ""
}

// requestLogger scopes log to the request and writes one line per request
// once the chain has finished.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		reqLog := log.With(zap.String("request_id", requestid.FromContext(c)))
		c.SetContext(logging.With(c.Context(), reqLog))

		chainErr := c.Next()

		status := c.Response().StatusCode()
		if chainErr != nil {
			status = http.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(chainErr, &fe) {
				status = fe.Code
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case status >= http.StatusInternalServerError:
			reqLog.Error("request", append(fields, zap.Error(chainErr))...)
		case status >= http.StatusBadRequest:
			reqLog.Warn("request", fields...)
		default:
			reqLog.Info("request", fields...)
		}

		return chainErr
	}
}
