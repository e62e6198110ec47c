package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"albumshop/internal/apperr"
	"albumshop/internal/domain"
	applog "albumshop/internal/log"
	"albumshop/internal/validate"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

// ErrorHandler renders every error as {"error":{code,message,details?}}.
// Causes never reach the client; transient failures are logged instead.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && apperr.As(err) == nil {
		return c.Status(fe.Code).JSON(errorEnvelope{Error: errorPayload{
			Code:    fiberCode(fe.Code),
			Message: fe.Message,
		}})
	}

	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Transient(err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Kind())
	if typed.Kind() == apperr.KindTransient {
		applog.Error(c, "server.error", err, nil)
	}

	payload := errorPayload{Code: string(typed.Kind()), Message: typed.Message()}
	if payload.Message == "" || typed.Kind() == apperr.KindTransient {
		payload.Message = meta.PublicMessage
	}
	if meta.DetailsAllowed {
		payload.Details = typed.Details()
	}
	if meta.Retryable {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(meta.HTTPStatus).JSON(errorEnvelope{Error: payload})
}

func fiberCode(status int) string {
	switch {
	case status == fiber.StatusNotFound, status == fiber.StatusMethodNotAllowed:
		return string(apperr.KindNotFound)
	case status == fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case status == fiber.StatusTooManyRequests:
		return string(apperr.KindRateLimit)
	case status >= 500:
		return string(apperr.KindTransient)
	}
	return string(apperr.KindInvalidInput)
}

// bind decodes and validates the JSON body. Validation failures are logged
// as security events, like every other rejected input.
func bind(c *fiber.Ctx, dest any) error {
	if err := validate.DecodeJSON(c.Body(), dest); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"details": apperr.As(err).Details()})
		return err
	}
	return nil
}

// idParam returns a validated path parameter.
func idParam(c *fiber.Ctx, name string) (string, error) {
	id, ok := validate.ID(c.Params(name))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": name})
		return "", apperr.InvalidInput("invalid " + name).WithDetails(map[string]string{name: "is invalid"})
	}
	return id, nil
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func created(c *fiber.Ctx, body any) error {
	return c.Status(fiber.StatusCreated).JSON(body)
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
