// Package layout реализует HTTP-обработчик общей шапки консоли.
package layout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-admin/internal/http/response"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	layoutvm "github.com/magabrotheeeer/subscription-admin/internal/viewmodel/layout"
)

// Service описывает модель представления шапки.
type Service interface {
	Header(ctx context.Context, path string) (layoutvm.Header, error)
}

// Handler отдаёт состояние шапки и бокового меню.
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

// ServeHTTP godoc
// @Summary Шапка и боковое меню
// @Description Заголовок страницы по пути, число непрочитанных уведомлений и карточка администратора.
// @Tags Layout
// @Produce  json
// @Param path query string false "Путь текущей страницы, по умолчанию /"
// @Success 200 {object} response.Response{data=layoutvm.Header}
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Router /layout/header [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.layout.Header"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	header, err := h.service.Header(r.Context(), path)
	if err != nil {
		log.Error("failed to build header", sl.Err(err))
	}
	response.Page(w, r, header, err, "Failed to load header")
}
