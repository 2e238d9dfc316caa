// Package settings реализует HTTP-обработчики страницы профиля администратора.
//
// Форма профиля принимается как multipart/form-data: текстовые поля и необязательный
// файл аватара передаются модели представления одной формой.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-admin/internal/http/response"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/models"
	settingsapi "github.com/magabrotheeeer/subscription-admin/internal/resources/settings"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
	settingsvm "github.com/magabrotheeeer/subscription-admin/internal/viewmodel/settings"
)

// MaxUploadSize ограничивает размер формы профиля вместе с аватаром.
const MaxUploadSize = 5 << 20

// Service описывает модель представления страницы профиля.
type Service interface {
	Profile(ctx context.Context) (settingsvm.ProfileView, error)
	EditProfile(ctx context.Context, in models.ProfileUpdate) feedback.Outcome
	ChangePassword(ctx context.Context, form settingsvm.PasswordForm) feedback.Outcome
}

// Handler обрабатывает запросы страницы профиля.
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

// Profile godoc
// @Summary Профиль администратора
// @Tags Settings
// @Produce  json
// @Success 200 {object} response.Response{data=settingsvm.ProfileView}
// @Failure 401 {object} response.ErrorResponse "Сессия истекла"
// @Router /settings/profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.Profile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	view, err := h.service.Profile(r.Context())
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
	}
	response.Page(w, r, view, err, "Failed to load profile")
}

// EditProfile godoc
// @Summary Изменить профиль
// @Tags Settings
// @Accept  mpfd
// @Produce  json
// @Param fullName formData string true "Имя"
// @Param email formData string true "Email"
// @Param role formData string false "Роль"
// @Param phone formData string false "Телефон"
// @Param profile formData file false "Аватар"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /settings/profile [patch]
func (h *Handler) EditProfile(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.EditProfile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid form"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("failed to remove form files", sl.Err(err))
		}
	}()

	in := models.ProfileUpdate{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Role:     r.FormValue("role"),
		Phone:    r.FormValue("phone"),
	}

	file, header, err := r.FormFile(settingsapi.ProfileFileField)
	switch {
	case err == nil:
		defer file.Close()
		in.Image = &models.Upload{Filename: header.Filename, Content: file}
		log.Info("avatar attached", slog.String("filename", header.Filename), slog.Int64("size", header.Size))
	case !errors.Is(err, http.ErrMissingFile):
		log.Error("failed to read avatar", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid profile image"))
		return
	}

	out := h.service.EditProfile(r.Context(), in)
	if !out.OK {
		log.Error("failed to update profile", sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

// ChangePassword godoc
// @Summary Сменить пароль
// @Tags Settings
// @Accept  json
// @Produce  json
// @Param request body settingsvm.PasswordForm true "Старый и новый пароль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неверный старый пароль"
// @Failure 422 {object} response.ErrorResponse "Пароли не совпадают или слишком короткие"
// @Router /settings/password [patch]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.ChangePassword"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var form settingsvm.PasswordForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	out := h.service.ChangePassword(r.Context(), form)
	if !out.OK {
		log.Error("failed to change password", sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}
