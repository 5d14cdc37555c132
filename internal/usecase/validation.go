package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct roda as tags `validate` e traduz para ValidationError por campo.
func validateStruct(s any) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fieldPath(fe), Message: messageFor(fe)})
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	// Namespace vem como "CaptureLeadInput.product_ids[0]"
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "uuid":
		return "must be a valid UUID"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	default:
		return "failed on " + fe.Tag()
	}
}

func ValidateCaptureLeadInput(input CaptureLeadInput) []ValidationError {
	errs := validateStruct(input)

	if input.Email == nil && input.Phone == nil {
		errs = append(errs, ValidationError{"email", "Informe ao menos email ou telefone"})
	}
	if len(input.ProductIDs) == 0 && input.ProductID == nil {
		errs = append(errs, ValidationError{"product_id", "Informe ao menos um produto (product_id ou product_ids)"})
	}
	return errs
}

func ValidateUpdateLeadInput(input UpdateLeadInput) []ValidationError {
	errs := validateStruct(input)
	if input.Email == nil && input.Phone == nil {
		errs = append(errs, ValidationError{"email", "Informe email ou phone para identificar o lead"})
	}
	return errs
}
