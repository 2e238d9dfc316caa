// Package validate оборачивает go-playground/validator для проверки форм консоли
// до отправки запроса.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

var v = validator.New()

// Struct проверяет структуру по тегам validate и возвращает ошибку с читаемым текстом.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return errors.New(Message(errs))
	}
	return err
}

// Message собирает нарушения в одну строку через запятую.
func Message(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "gt", "gte":
			msgs = append(msgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}

// MinPasswordLength — минимальная длина нового пароля.
const MinPasswordLength = 6

var (
	ErrPasswordMismatch = errors.New("New password and confirm password do not match")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters long")
)

// Passwords проверяет новый пароль до отправки: совпадение с подтверждением, затем длину.
func Passwords(newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if len([]rune(newPassword)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
