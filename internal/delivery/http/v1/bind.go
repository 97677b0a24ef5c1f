package v1

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/validation"
)

// bindJSON decodes and validates the body into req, reporting a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
	} else {
		c.Error(apperror.BadRequest("Invalid request body"))
	}
	return false
}
