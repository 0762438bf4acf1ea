package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON binds the request body and flattens any validator failure into
// the single-string error the envelope carries.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondBadRequest(ctx, bindErrorMessage(err))

		return false
	}

	return true
}

func bindErrorMessage(err error) string {
	var validatorErrs validator.ValidationErrors

	if errors.As(err, &validatorErrs) {
		parts := make([]string, 0, len(validatorErrs))

		for _, fe := range validatorErrs {
			parts = append(parts, fieldMessage(fe))
		}

		return strings.Join(parts, "; ")
	}

	return "Invalid request body"
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()

	if field != "" {
		field = strings.ToLower(field[:1]) + field[1:]
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "gte":
		return field + " must be at least " + fe.Param()
	case "lte":
		return field + " must be at most " + fe.Param()
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}
