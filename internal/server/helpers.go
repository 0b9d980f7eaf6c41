package server

import (
	"log/slog"

	"devhub/internal/middleware"
	"devhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Post routes report a missing document as 404; profile routes keep the
// older 400 contract.
const (
	postNotFoundStatus    = fiber.StatusNotFound
	profileNotFoundStatus = fiber.StatusBadRequest
)

// decode parses the JSON body into dst and runs its validation rules. An
// empty body is validated as the zero value so clients get field errors.
func (s *Server) decode(c *fiber.Ctx, dst any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return models.NewValidationError("Invalid request body")
		}
	}
	return s.validate.Struct(dst)
}

// fail writes err using the router's status mapping.
func (s *Server) fail(c *fiber.Ctx, err error, notFoundStatus int) error {
	appErr := models.AsAppError(err)

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case models.CodeUnauthorized, models.CodeForbidden:
		status = fiber.StatusUnauthorized
	case models.CodeValidation, models.CodeConflict:
		status = fiber.StatusBadRequest
	case models.CodeNotFound:
		status = notFoundStatus
	case models.CodeStaleWrite:
		status = fiber.StatusConflict
	default:
		s.log.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("user_id", middleware.UserID(c)),
			slog.String("error", appErr.Error()),
		)
	}
	return models.RespondWithError(c, status, appErr)
}

type msgResponse struct {
	Msg string `json:"msg"`
}

type tokenResponse struct {
	Token string `json:"token"`
}
