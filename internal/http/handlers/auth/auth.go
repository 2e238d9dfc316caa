// Package auth реализует HTTP-обработчики входа, выхода и восстановления пароля.
//
// Обработчики декодируют JSON, передают данные модели представления и возвращают
// её результат: уведомления и адрес перехода. Проверка полей выполняется моделью
// представления, поэтому одинаково работает и для HTTP, и для прямых вызовов.
package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-admin/internal/http/response"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

// Service описывает модель представления страниц авторизации.
type Service interface {
	Login(ctx context.Context, creds models.Credentials) feedback.Outcome
	Logout(ctx context.Context) feedback.Outcome
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) feedback.Outcome
	VerifyOTP(ctx context.Context, req models.OTPMatchRequest) feedback.Outcome
	ResetPassword(ctx context.Context, req models.PasswordReset) feedback.Outcome
}

// ResetRequest — тело запроса установки нового пароля.
type ResetRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Handler обрабатывает HTTP-запросы страниц авторизации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler с переданными логгером и моделью представления.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// Login godoc
// @Summary Вход администратора
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.Credentials true "Учетные данные"
// @Success 200 {object} response.Response "Вход выполнен, redirect на главную"
// @Failure 400 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Login"
	log := h.logger(op, r)

	var req models.Credentials
	if !decode(w, r, log, &req) {
		return
	}

	out := h.service.Login(r.Context(), req)
	if out.OK {
		log.Info("admin logged in", slog.String("email", req.Email))
	} else {
		log.Warn("login failed", sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

// Logout godoc
// @Summary Выход администратора
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия закрыта, redirect на страницу входа"
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Logout"
	h.logger(op, r).Info("admin logged out")
	response.Outcome(w, r, h.service.Logout(r.Context()))
}

// ForgotPassword godoc
// @Summary Запрос кода восстановления пароля
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.ForgotPasswordRequest true "Email администратора"
// @Success 200 {object} response.Response "Код отправлен, redirect на страницу ввода кода"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.ForgotPassword"
	log := h.logger(op, r)

	var req models.ForgotPasswordRequest
	if !decode(w, r, log, &req) {
		return
	}
	out := h.service.ForgotPassword(r.Context(), req)
	if !out.OK {
		log.Warn("forgot password failed", sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

// VerifyOTP godoc
// @Summary Проверка кода восстановления
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.OTPMatchRequest true "Код и токен восстановления"
// @Success 200 {object} response.Response "Код принят, redirect на страницу нового пароля"
// @Failure 400 {object} response.ErrorResponse "Неверный код"
// @Failure 422 {object} response.ErrorResponse "Код неполный"
// @Router /auth/verify-otp [post]
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.VerifyOTP"
	log := h.logger(op, r)

	var req models.OTPMatchRequest
	if !decode(w, r, log, &req) {
		return
	}
	out := h.service.VerifyOTP(r.Context(), req)
	if !out.OK {
		log.Warn("otp verification failed", sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

// ResetPassword godoc
// @Summary Установка нового пароля
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body ResetRequest true "Токен сброса и новый пароль"
// @Success 200 {object} response.Response "Пароль изменен, redirect на страницу входа"
// @Failure 422 {object} response.ErrorResponse "Пароли не совпадают или слишком короткие"
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.ResetPassword"
	log := h.logger(op, r)

	var req ResetRequest
	if !decode(w, r, log, &req) {
		return
	}
	out := h.service.ResetPassword(r.Context(), models.PasswordReset{
		Token:           req.Token,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if !out.OK {
		log.Warn("password reset failed", sl.Err(out.Err))
	}
	response.Outcome(w, r, out)
}

func (h *Handler) logger(op string, r *http.Request) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return false
	}
	return true
}
