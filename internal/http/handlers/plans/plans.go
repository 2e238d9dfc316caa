// Package plans реализует HTTP-обработчики страницы тарифов.
package plans

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-admin/internal/http/response"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
	plansvm "github.com/magabrotheeeer/subscription-admin/internal/viewmodel/plans"
)

// CyclePrefix — префикс параметра выбранного периода: cycle.<id>=month.
const CyclePrefix = "cycle."

// Service описывает модель представления страницы тарифов.
type Service interface {
	Page(ctx context.Context, selected map[string]models.BillingCycle) (plansvm.Page, error)
	Create(ctx context.Context, in models.PlanInput) feedback.Outcome
	Update(ctx context.Context, id string, in models.PlanInput) feedback.Outcome
	Delete(ctx context.Context, id string) feedback.Outcome
}

// Handler обрабатывает запросы страницы тарифов.
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
// @Summary Карточки тарифов
// @Description Период оплаты выбирается для каждой карточки параметром cycle.<id>.
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response{data=plansvm.Page}
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Router /plans [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := h.service.Page(r.Context(), Selected(r))
	if err != nil {
		log.Error("failed to load plans", sl.Err(err))
	}
	response.Page(w, r, page, err, "Failed to load packages")
}

// Create godoc
// @Summary Создать тариф
// @Tags Plans
// @Accept  json
// @Produce  json
// @Param request body models.PlanInput true "Данные тарифа"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /plans [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.Create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PlanInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	out := h.service.Create(r.Context(), req)
	if !out.OK {
		log.Error("failed to create plan", sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

// Update godoc
// @Summary Изменить тариф
// @Tags Plans
// @Accept  json
// @Produce  json
// @Param id path string true "ID тарифа"
// @Param request body models.PlanInput true "Данные тарифа"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /plans/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.Update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	var req models.PlanInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	out := h.service.Update(r.Context(), id, req)
	if !out.OK {
		log.Error("failed to update plan", slog.String("id", id), sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

// Delete godoc
// @Summary Удалить тариф
// @Tags Plans
// @Produce  json
// @Param id path string true "ID тарифа"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Router /plans/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.Delete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	out := h.service.Delete(r.Context(), id)
	if out.OK {
		log.Info("plan deleted", slog.String("id", id))
	} else {
		log.Error("failed to delete plan", slog.String("id", id), sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

// Selected собирает выбранные периоды из параметров cycle.<id>.
func Selected(r *http.Request) map[string]models.BillingCycle {
	selected := make(map[string]models.BillingCycle)
	for key, values := range r.URL.Query() {
		id, ok := strings.CutPrefix(key, CyclePrefix)
		if !ok || id == "" || len(values) == 0 {
			continue
		}
		selected[id] = models.BillingCycle(values[0])
	}
	return selected
}
