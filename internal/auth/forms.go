package auth

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// bcrypt は 72 バイトを超える入力を扱えない
const maxPasswordBytes = 72

var validate = newValidator()

type credentialsForm struct {
	Username string `form:"username" validate:"required,max=80"`
	Password string `form:"password" validate:"required,maxbytes"`
	Next     string `form:"next"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}

// validateForm はフォームを検証し、表示用のメッセージを返します。
func validateForm(form any) []string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{"Invalid form submission."}
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fieldMessage(fe))
	}
	return messages
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %d bytes.", fe.Field(), maxPasswordBytes)
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}
