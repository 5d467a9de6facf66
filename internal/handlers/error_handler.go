package handlers

import (
	"errors"
	"net/http"

	"inventario/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler turns handler errors into a rendered error page, or JSON for
// XMLHttpRequest callers. Errors that are not *fiber.Error are logged and
// answered with 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		logrus.WithError(err).
			WithField("method", c.Method()).
			WithField("path", c.Path()).
			Error("Unhandled error")
	}

	if c.XHR() {
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}

	renderErr := c.Status(code).Render("errors/error", fiber.Map{
		"Title":   http.StatusText(code),
		"Code":    code,
		"Message": message,
	}, views.BaseLayout)
	if renderErr != nil {
		logrus.WithError(renderErr).Error("Failed to render error page")
		return c.Status(code).SendString(message)
	}
	return nil
}
