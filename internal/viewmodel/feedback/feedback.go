// Package feedback превращает результаты мутаций в то, что видит администратор:
// всплывающие уведомления, закрытие модального окна, повторные выборки и переходы.
package feedback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

// LoginPath — страница входа, куда отправляется администратор без сессии.
const LoginPath = "/auth/login"

// Level — вид уведомления.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toast — одно всплывающее уведомление.
type Toast struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Outcome — результат пользовательского действия.
type Outcome struct {
	OK         bool     `json:"ok"`
	Toasts     []Toast  `json:"toasts,omitempty"`
	CloseModal bool     `json:"closeModal"`
	Refetched  []string `json:"refetched,omitempty"`
	Redirect   string   `json:"redirect,omitempty"`
	Data       any      `json:"data,omitempty"`
	Err        error    `json:"-"`
}

// SessionClearer — сессия, которую нужно закрыть, если сервер её отверг.
type SessionClearer interface {
	Clear()
}

// Refresher — запрос, который повторно выбирается после успешной мутации.
type Refresher interface {
	Name() string
	Sync(ctx context.Context) error
}

// Messages — тексты уведомлений мутации. Сообщение сервера имеет приоритет,
// если Fixed не установлен.
type Messages struct {
	Success string
	Failure string
	Fixed   bool
}

// Succeeded возвращает успешный результат с сообщением сервера или запасным текстом.
func Succeeded(serverMsg, fallback string) Outcome {
	msg := serverMsg
	if msg == "" {
		msg = fallback
	}
	return Outcome{
		OK:         true,
		Toasts:     []Toast{{Level: LevelSuccess, Message: msg}},
		CloseModal: true,
	}
}

// Failed возвращает неуспешный результат. Отказ в авторизации закрывает сессию
// и ведёт на страницу входа вместо уведомления об ошибке.
func Failed(err error, fallback string, sess SessionClearer) Outcome {
	if Unauthenticated(err) {
		if sess != nil {
			sess.Clear()
		}
		return Outcome{Redirect: LoginPath, Err: err}
	}
	return Outcome{
		Toasts: []Toast{{Level: LevelError, Message: transport.MessageOf(err, fallback)}},
		Err:    err,
	}
}

// Rejected возвращает результат клиентской проверки: запрос в сеть не отправлялся.
func Rejected(op, msg string) Outcome {
	return Outcome{
		Toasts: []Toast{{Level: LevelError, Message: msg}},
		Err:    transport.NewValidationError(op, msg),
	}
}

// Unauthenticated сообщает, что ошибка означает потерю сессии.
func Unauthenticated(err error) bool {
	return errors.Is(err, transport.ErrUnauthenticated)
}

// AfterMutation завершает цикл мутация → уведомление → закрытие окна → повторная выборка.
// При ошибке предыдущие данные не трогаются и выборки не повторяются.
func AfterMutation(ctx context.Context, log *slog.Logger, sess SessionClearer, err error, serverMsg string, msgs Messages, deps ...Refresher) Outcome {
	if msgs.Fixed {
		serverMsg = ""
	}
	if err != nil {
		out := Failed(err, msgs.Failure, sess)
		if msgs.Fixed && len(out.Toasts) > 0 {
			out.Toasts[0].Message = msgs.Failure
		}
		return out
	}
	out := Succeeded(serverMsg, msgs.Success)
	for _, dep := range deps {
		if syncErr := dep.Sync(ctx); syncErr != nil {
			log.Warn("refetch after mutation failed", slog.String("query", dep.Name()), sl.Err(syncErr))
			if Unauthenticated(syncErr) {
				if sess != nil {
					sess.Clear()
				}
				out.Redirect = LoginPath
			}
		}
		out.Refetched = append(out.Refetched, dep.Name())
	}
	return out
}

// Lost закрывает сессию, если ошибка загрузки страницы означает её потерю.
func Lost(sess SessionClearer, err error) bool {
	if !Unauthenticated(err) {
		return false
	}
	if sess != nil {
		sess.Clear()
	}
	return true
}
