// Package notifications реализует HTTP-обработчики страницы уведомлений.
package notifications

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-admin/internal/http/response"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
	notificationsvm "github.com/magabrotheeeer/subscription-admin/internal/viewmodel/notifications"
)

// Service описывает модель представления страницы уведомлений.
type Service interface {
	Page(ctx context.Context) (notificationsvm.Page, error)
	ReadAll(ctx context.Context) feedback.Outcome
	Delete(ctx context.Context, id string) feedback.Outcome
}

// Handler обрабатывает запросы страницы уведомлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// List godoc
// @Summary Список уведомлений
// @Tags Notifications
// @Produce  json
// @Success 200 {object} response.Response{data=notificationsvm.Page}
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Router /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notifications.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := h.service.Page(r.Context())
	if err != nil {
		log.Error("failed to load notifications", sl.Err(err))
	}
	response.Page(w, r, page, err, "Failed to load notifications")
}

// ReadAll godoc
// @Summary Пометить все уведомления прочитанными
// @Tags Notifications
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 502 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notifications/read-all [post]
func (h *Handler) ReadAll(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notifications.ReadAll"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	out := h.service.ReadAll(r.Context())
	if !out.OK {
		log.Error("failed to mark notifications as read", sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

// Delete godoc
// @Summary Удалить уведомление
// @Tags Notifications
// @Produce  json
// @Param id path string true "ID уведомления"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Уведомление не найдено"
// @Router /notifications/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notifications.Delete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	out := h.service.Delete(r.Context(), id)
	if out.OK {
		log.Info("notification deleted", slog.String("id", id))
	} else {
		log.Error("failed to delete notification", slog.String("id", id), sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}
