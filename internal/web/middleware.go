package web

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/observability"
	"github.com/spec-kit/ticket-portal/internal/web/flash"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware recovers panics and converts any escaped error into
// the browser-appropriate response: a redirect plus flash message for auth
// and authorization failures, a 404 page for unknown tickets and routes, and a generic
// error page for everything else. No raw failure reaches the user.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				// Fiber reports unmatched routes and disallowed methods as
				// *fiber.Error; those are the client's mistake, not ours.
				var fiberErr *fiber.Error
				if errors.As(err, &fiberErr) && fiberErr.Code < 500 {
					switch fiberErr.Code {
					case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
						err = apperrors.NewNotFound("page")
					default:
						err = apperrors.NewValidationError(fiberErr.Message)
					}
				}
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
				}

				switch domainErr.Code {
				case apperrors.CodeUnauthenticated:
					err = c.Redirect(auth.LoginPath, fiber.StatusSeeOther)
				case apperrors.CodeForbidden:
					flash.Set(c, domainErr.Message)
					err = c.Redirect("/dashboard", fiber.StatusSeeOther)
				case apperrors.CodeNotFound:
					err = c.Status(fiber.StatusNotFound).Render("not_found", fiber.Map{
						"Title": "Not found",
					}, "layout")
				default:
					err = c.Status(domainErr.HTTPStatus).Render("error", fiber.Map{
						"Title": "Something went wrong",
					}, "layout")
				}
			}
		}()
		return c.Next()
	}
}
