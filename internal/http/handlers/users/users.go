// Package users реализует HTTP-обработчики страницы управления пользователями.
//
// Список фильтруется и разбивается на страницы на стороне консоли, поэтому
// параметры поиска не уходят на сервер, а передаются модели представления.
package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-admin/internal/http/response"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
	usersvm "github.com/magabrotheeeer/subscription-admin/internal/viewmodel/users"
)

// Service описывает модель представления страницы пользователей.
type Service interface {
	Page(ctx context.Context, f usersvm.Filter, page, limit int) (usersvm.Page, error)
	Prompt(ctx context.Context, id string) (usersvm.Prompt, error)
	ToggleBlock(ctx context.Context, id string) feedback.Outcome
}

// ListRequest — параметры строки запроса списка пользователей.
type ListRequest struct {
	Search string `validate:"max=100"`
	Status string `validate:"omitempty,oneof=all active blocked"`
	Type   string `validate:"omitempty,oneof=all free premium"`
	Page   int    `validate:"gte=0"`
	Limit  int    `validate:"gte=0,lte=100"`
}

// Handler обрабатывает запросы страницы пользователей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// List godoc
// @Summary Список пользователей
// @Description Поиск по имени и email, фильтры статуса и типа подписки, постраничный вывод.
// @Tags Users
// @Produce  json
// @Param search query string false "Подстрока имени или email"
// @Param status query string false "all, active или blocked"
// @Param type query string false "all, free или premium"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Строк на странице"
// @Success 200 {object} response.Response{data=usersvm.Page}
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	req := ListRequest{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
	}
	var err error
	if req.Page, err = intParam(q.Get("page")); err != nil {
		log.Error("invalid page", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid page"))
		return
	}
	if req.Limit, err = intParam(q.Get("limit")); err != nil {
		log.Error("invalid limit", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid limit"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validation failed", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request"))
			return
		}
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	filter := usersvm.Filter{
		Search: req.Search,
		Status: usersvm.StatusFilter(req.Status),
		Type:   usersvm.TypeFilter(req.Type),
	}
	page, err := h.service.Page(r.Context(), filter, req.Page, req.Limit)
	if err != nil {
		log.Error("failed to load users", sl.Err(err))
	}
	response.Page(w, r, page, err, "Failed to load users")
}

// Prompt godoc
// @Summary Текст подтверждения блокировки
// @Tags Users
// @Produce  json
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response{data=usersvm.Prompt}
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/{id}/confirm [get]
func (h *Handler) Prompt(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Prompt"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	prompt, err := h.service.Prompt(r.Context(), id)
	if errors.Is(err, usersvm.ErrNotFound) {
		log.Info("user not found", slog.String("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("User not found"))
		return
	}
	if err != nil {
		log.Error("failed to build prompt", sl.Err(err))
	}
	response.Page(w, r, prompt, err, "Failed to load users")
}

// ToggleBlock godoc
// @Summary Заблокировать или разблокировать пользователя
// @Description После успеха список пользователей и статистика перечитываются.
// @Tags Users
// @Produce  json
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 502 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/block [patch]
func (h *Handler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.ToggleBlock"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing id")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing id"))
		return
	}

	out := h.service.ToggleBlock(r.Context(), id)
	if out.OK {
		log.Info("user status toggled", slog.String("id", id))
	} else {
		log.Error("failed to toggle user status", slog.String("id", id), sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
