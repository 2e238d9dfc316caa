// Package middlewarectx содержит HTTP middleware консоли администратора.
//
// RequireSession пропускает запрос к приватным маршрутам только при действующей сессии,
// иначе возвращает 401 и адрес страницы входа. RateLimitMiddleware ограничивает
// частоту входящих запросов.
package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-admin/internal/http/response"
)

// Session описывает сессию администратора, которую проверяет middleware.
type Session interface {
	Authenticated() bool
	Clear()
}

// RequireSession возвращает middleware, который отклоняет запросы без действующей сессии.
// Просроченная сессия очищается, чтобы следующий вход начался с чистого состояния.
func RequireSession(sess Session, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireSession"

			if !sess.Authenticated() {
				log.With(
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				).Info("no active session", slog.String("path", r.URL.Path))
				sess.Clear()
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Unauthorized())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
