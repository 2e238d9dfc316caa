// Package overview реализует HTTP-обработчики главной страницы консоли.
package overview

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-admin/internal/http/response"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/month"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	overviewvm "github.com/magabrotheeeer/subscription-admin/internal/viewmodel/overview"
)

// Service описывает модель представления главной страницы.
type Service interface {
	Page(ctx context.Context, year int) (overviewvm.Page, error)
	Earnings(ctx context.Context, year int) (overviewvm.Chart, error)
}

// Handler обрабатывает запросы главной страницы.
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

// Page godoc
// @Summary Главная страница
// @Description Карточки статистики, распределение тарифов и график дохода за год.
// @Tags Overview
// @Produce  json
// @Param year query int false "Год графика дохода, по умолчанию текущий"
// @Success 200 {object} response.Response{data=overviewvm.Page}
// @Failure 400 {object} response.ErrorResponse "Некорректный год"
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Router /overview [get]
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.overview.Page"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	year, ok := parseYear(w, r, log)
	if !ok {
		return
	}
	page, err := h.service.Page(r.Context(), year)
	if err != nil {
		log.Error("failed to load overview", sl.Err(err))
	}
	response.Page(w, r, page, err, "Failed to load overview")
}

// Earnings godoc
// @Summary График дохода
// @Tags Overview
// @Produce  json
// @Param year query int false "Год, по умолчанию текущий"
// @Success 200 {object} response.Response{data=overviewvm.Chart}
// @Failure 400 {object} response.ErrorResponse "Некорректный год"
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Router /overview/earnings [get]
func (h *Handler) Earnings(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.overview.Earnings"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	year, ok := parseYear(w, r, log)
	if !ok {
		return
	}
	chart, err := h.service.Earnings(r.Context(), year)
	if err != nil {
		log.Error("failed to load earnings", sl.Err(err))
	}
	response.Page(w, r, chart, err, "Failed to load earnings")
}

func parseYear(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || !month.ValidYear(time.Now(), year) {
		log.Error("invalid year", slog.String("year", raw))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid year"))
		return 0, false
	}
	return year, true
}
