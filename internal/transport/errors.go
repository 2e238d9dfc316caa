package transport

import (
	"errors"
	"fmt"
	"strings"
)

// Kind классифицирует нормализованную ошибку.
type Kind string

const (
	KindNetwork         Kind = "network"         // Сеть недоступна, таймаут, отмена
	KindStatus          Kind = "status"          // Не-2xx статус или success=false
	KindDecode          Kind = "decode"          // Некорректный JSON
	KindUnauthenticated Kind = "unauthenticated" // 401 или нет локальной сессии
	KindValidation      Kind = "validation"      // Клиентская проверка до запроса
)

// ErrUnauthenticated сопоставляется через errors.Is с любой ошибкой вида KindUnauthenticated.
var ErrUnauthenticated = errors.New("unauthenticated")

// Error — единая форма ошибки, чтобы у вызывающего был один путь обработки.
// Message заполняется только когда сервер его прислал, либо для клиентской проверки.
type Error struct {
	Kind    Kind
	Op      string // Логическое имя операции, например "packages.create"
	Status  int    // HTTP-статус, 0 если ответа не было
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is позволяет писать errors.Is(err, transport.ErrUnauthenticated).
func (e *Error) Is(target error) bool {
	return target == ErrUnauthenticated && e.Kind == KindUnauthenticated
}

// NewValidationError создаёт ошибку клиентской проверки; такие ошибки возникают до сетевого вызова.
func NewValidationError(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: msg}
}

// MessageOf возвращает сообщение сервера (или клиентской проверки), если оно есть, иначе fallback.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// KindOf возвращает вид ошибки; для чужих ошибок — KindNetwork.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNetwork
}
