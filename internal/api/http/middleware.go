package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/observability"
	"github.com/DiogoBrazil/medimage-api/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and
// logging. The request logger wraps the error boundary so it observes the
// status the envelope was rendered with, not the pre-render default.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware is the single boundary where errors become the wire
// envelope {"detail": {"message": ..., "status_code": N}}. Messages travel
// unchanged from where the error was raised.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = util.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				if metrics != nil && isCredentialFailure(err) {
					metrics.RecordAuthFailure(domainErr.HTTPStatus)
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(fiber.Map{"detail": fiber.Map{
					"message":     domainErr.Message,
					"status_code": domainErr.HTTPStatus,
				}})
				err = nil
			}
		}()
		return c.Next()
	}
}

// toDomainError additionally maps router-level fiber errors (404/405) that
// never pass through the service layer.
func toDomainError(err error) *util.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return util.NewDomainError(fiberErr.Message, fiberErr.Code)
	}
	return util.ToDomainError(err)
}

func isCredentialFailure(err error) bool {
	var authnErr *auth.AuthnError
	var authzErr *auth.AuthzError
	return errors.As(err, &authnErr) || errors.As(err, &authzErr)
}
