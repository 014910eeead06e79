package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/observability"
	"storefront/internal/services"
	"storefront/internal/upload"

	"github.com/gofiber/fiber/v2"
)

// Client facing error messages.
const (
	MsgInvalidInput        = "Invalid input. Please check the provided data."
	MsgInvalidParameters   = "Invalid input. Please check the provided parameters."
	MsgCredentialsRequired = "Username and password are required."
	MsgInvalidCredentials  = "Invalid username or password."
	MsgConflict            = "Username or email already exists."
	MsgInvalidImageType    = "Invalid file type. Only images are allowed."
	MsgImageTooLarge       = "File too large."
	MsgUnexpected          = "An unexpected error occurred. Please try again later."
)

// ErrMissingParameters is returned when a required query parameter is absent.
var ErrMissingParameters = errors.New("missing query parameters")

// Options holds settings shared by all handlers.
type Options struct {
	Logger         *slog.Logger
	Metrics        *observability.Metrics
	Paginator      services.Paginator
	RequestTimeout time.Duration
	UploadField    string
}

// requestContext derives the context passed to the store for one request.
func (o Options) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if o.RequestTimeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), o.RequestTimeout)
}

// ErrorHandler renders every error as {"error": ...}. Unclassified errors
// are logged and reported as a generic 500.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.ErrorContext(c.UserContext(), "request failed",
				"request_id", c.Locals("requestid"),
				"method", c.Method(),
				"path", c.Path(),
				"err", err,
			)
		}
		return c.Status(status).JSON(fiber.Map{"error": body})
	}
}

func classify(err error) (int, any) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, verr.Messages
	}

	switch {
	case errors.Is(err, services.ErrCredentialsRequired):
		return fiber.StatusBadRequest, MsgCredentialsRequired
	case errors.Is(err, services.ErrMissingFields):
		return fiber.StatusBadRequest, MsgInvalidInput
	case errors.Is(err, ErrMissingParameters):
		return fiber.StatusBadRequest, MsgInvalidParameters
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, MsgInvalidCredentials
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict, MsgConflict
	case errors.Is(err, upload.ErrInvalidImageType):
		return fiber.StatusBadRequest, MsgInvalidImageType
	case errors.Is(err, upload.ErrImageTooLarge):
		return fiber.StatusRequestEntityTooLarge, MsgImageTooLarge
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) && ferr.Code < fiber.StatusInternalServerError {
		return ferr.Code, ferr.Message
	}
	return fiber.StatusInternalServerError, MsgUnexpected
}

// badInput marks a body that could not be parsed.
func badInput(err error) error {
	return errors.Join(services.ErrMissingFields, err)
}
