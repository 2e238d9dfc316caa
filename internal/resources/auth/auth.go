// Package auth описывает публичные вызовы входа и восстановления пароля.
// Ни один из них не прикладывает токен сессии.
package auth

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

// ResetTokenHeader — заголовок, в котором передаётся токен сброса пароля.
const ResetTokenHeader = "resettoken"

// API — эндпоинты /auth.
type API struct {
	client *transport.Client
}

// New создаёт API поверх транспорта.
func New(client *transport.Client) *API {
	return &API{client: client}
}

// Login выполняет вход и возвращает токен доступа.
func (a *API) Login(ctx context.Context, creds models.Credentials) (models.Envelope[models.LoginResult], error) {
	return transport.Call[models.LoginResult](ctx, a.client, transport.Request{
		Name:   "auth.login",
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   creds,
		Public: true,
	})
}

// ForgotPassword запрашивает код восстановления на почту.
func (a *API) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (models.Envelope[models.ForgotPasswordResult], error) {
	return transport.Call[models.ForgotPasswordResult](ctx, a.client, transport.Request{
		Name:   "auth.forgot_password",
		Method: http.MethodPost,
		Path:   "/auth/forgot-password-otp",
		Body:   req,
		Public: true,
	})
}

// VerifyOTP проверяет шестизначный код и возвращает короткоживущий токен сброса.
func (a *API) VerifyOTP(ctx context.Context, req models.OTPMatchRequest) (models.Envelope[models.OTPMatchResult], error) {
	return transport.Call[models.OTPMatchResult](ctx, a.client, transport.Request{
		Name:   "auth.verify_otp",
		Method: http.MethodPatch,
		Path:   "/auth/forgot-password-otp-match",
		Body:   req,
		Public: true,
	})
}

// ResetPassword устанавливает новый пароль; токен сброса уходит в заголовке resettoken.
func (a *API) ResetPassword(ctx context.Context, req models.PasswordReset) (models.Envelope[struct{}], error) {
	header := http.Header{}
	header.Set(ResetTokenHeader, req.Token)
	return transport.Call[struct{}](ctx, a.client, transport.Request{
		Name:   "auth.reset_password",
		Method: http.MethodPost,
		Path:   "/auth/dashboard/reset-password",
		Body:   req,
		Header: header,
		Public: true,
	})
}
