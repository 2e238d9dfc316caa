// Package response содержит структуры и функции для формирования JSON-ответов консоли.
package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/validate"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

// Response стандартная структура ответа консоли.
type Response struct {
	Status     string           `json:"status"`
	Error      string           `json:"error,omitempty"`
	Data       any              `json:"data,omitempty"`
	Toasts     []feedback.Toast `json:"toasts,omitempty"`
	CloseModal bool             `json:"closeModal,omitempty"`
	Refetched  []string         `json:"refetched,omitempty"`
	Redirect   string           `json:"redirect,omitempty"`
}

// ErrorResponse структура для ответов с ошибкой, используется в swagger-описании.
type ErrorResponse struct {
	Status   string `json:"status"`
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// Unauthorized возвращает ответ, отправляющий администратора на страницу входа.
func Unauthorized() Response {
	return Response{
		Status:   StatusError,
		Error:    "session expired",
		Redirect: feedback.LoginPath,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
func ValidationError(errs validator.ValidationErrors) Response {
	return Response{
		Status: StatusError,
		Error:  validate.Message(errs),
	}
}

// FromOutcome переносит результат действия в ответ.
func FromOutcome(out feedback.Outcome) Response {
	resp := Response{
		Status:     StatusOK,
		Data:       out.Data,
		Toasts:     out.Toasts,
		CloseModal: out.CloseModal,
		Refetched:  out.Refetched,
		Redirect:   out.Redirect,
	}
	if !out.OK {
		resp.Status = StatusError
		if len(out.Toasts) > 0 {
			resp.Error = out.Toasts[0].Message
		} else if out.Err != nil {
			resp.Error = out.Err.Error()
		}
	}
	return resp
}

// HTTPStatus подбирает код ответа по результату действия.
func HTTPStatus(out feedback.Outcome) int {
	if out.OK {
		return http.StatusOK
	}
	return StatusOf(out.Err)
}

// StatusOf подбирает код ответа по ошибке транспорта.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, transport.ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	var e *transport.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case transport.KindValidation:
		return http.StatusUnprocessableEntity
	case transport.KindStatus:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// Outcome рендерит результат действия.
func Outcome(w http.ResponseWriter, r *http.Request, out feedback.Outcome) {
	render.Status(r, HTTPStatus(out))
	render.JSON(w, r, FromOutcome(out))
}

// Page рендерит данные страницы или ошибку её загрузки.
func Page(w http.ResponseWriter, r *http.Request, data any, err error, fallback string) {
	if err == nil {
		render.JSON(w, r, StatusOKWithData(data))
		return
	}
	code := StatusOf(err)
	render.Status(r, code)
	if code == http.StatusUnauthorized {
		render.JSON(w, r, Unauthorized())
		return
	}
	render.JSON(w, r, Error(transport.MessageOf(err, fallback)))
}
