package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks form parameters before anything is sent to the backend.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateSignUp validates registration parameters
func (v *Validator) ValidateSignUp(params SignUpParams) error {
	return v.check(params)
}

// ValidateSignIn validates credentials
func (v *Validator) ValidateSignIn(params SignInParams) error {
	return v.check(params)
}

func (v *Validator) check(params any) error {
	err := v.validate.Struct(params)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", InvalidParamsErr, err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fieldMessage(fieldError))
	}
	return fmt.Errorf("%w: %s", InvalidParamsErr, strings.Join(messages, ", "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "eqfield":
		return "passwords do not match"
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
