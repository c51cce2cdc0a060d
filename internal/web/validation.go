package web

import (
	"errors"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/dates"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const invalidRequestMessage = "Los datos enviados no son válidos."

// registerValidations adds the custom rules used by request bodies.
func registerValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("isodate", validateISODate)
}

// validateISODate accepts calendar-day keys such as 2025-09-04.
func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(dates.KeyLayout, fl.Field().String())
	return err == nil
}

// bindJSON binds the body into dst, mapping validation failures to a
// MalformedInput carrying message.
func bindJSON(c *gin.Context, dst any, message string) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if message == "" {
			message = invalidRequestMessage
		}
		return apperr.Wrap(apperr.MalformedInput, "web.bind", message, err)
	}
	return nil
}
