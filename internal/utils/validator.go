// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("ifsc", validateIFSC)
	validate.RegisterValidation("promo_code", validatePromoCode)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateIFSC(fl validator.FieldLevel) bool {
	return ifscPattern.MatchString(strings.ToUpper(fl.Field().String()))
}

func validatePromoCode(fl validator.FieldLevel) bool {
	code := strings.TrimSpace(fl.Field().String())
	if len(code) < 3 || len(code) > 20 {
		return false
	}
	matched, _ := regexp.MatchString("^[a-zA-Z0-9]+$", code)
	return matched
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "ifsc":
		return "Invalid IFSC code format"
	case "promo_code":
		return "Promo code must be 3-20 alphanumeric characters"
	default:
		return e.Field() + " is invalid"
	}
}
