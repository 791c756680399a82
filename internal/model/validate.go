package model

import "github.com/go-playground/validator/v10"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// mapcode checks the ####-####-#### share-code format.
	v.RegisterValidation("mapcode", func(fl validator.FieldLevel) bool {
		return CodePattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate runs struct-tag validation on any of the request types.
func Validate(req any) error {
	return validate.Struct(req)
}
