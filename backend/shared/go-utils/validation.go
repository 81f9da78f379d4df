package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations adds the thai_id, thai_phone and no_xss tags.
// Empty values pass; combine with `required` where needed.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("thai_id", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || ValidateThaiIDCard(s)
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("thai_phone", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || ValidateThaiPhone(s)
	}); err != nil {
		return err
	}
	return v.RegisterValidation("no_xss", func(fl validator.FieldLevel) bool {
		return !ContainsXSS(fl.Field().String())
	})
}

// NewValidator returns a validator that reports JSON field names and knows
// the custom tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := RegisterCustomValidations(v); err != nil {
		panic(err)
	}
	return v
}
