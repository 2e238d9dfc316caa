// Package login ведёт вход, выход и восстановление пароля администратора.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/validate"
	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/query"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

const (
	HomePath          = "/"
	VerifyEmailPath   = "/auth/verify-email"
	ResetPasswordPath = "/auth/reset-password"

	OTPLength     = 6
	IncompleteOTP = "Please enter the complete 6-digit code"
)

var (
	loginMessages  = feedback.Messages{Success: "Login successful", Failure: "Login failed. Please check your credentials."}
	forgotMessages = feedback.Messages{Success: "Verification code sent to your email", Failure: "Failed to send verification code"}
	verifyMessages = feedback.Messages{Success: "Verification successful!", Failure: "Invalid verification code. Please try again."}
	resetMessages  = feedback.Messages{Success: "Password reset successfully", Failure: "Failed to reset password"}
)

// Store — сессия, в которую вход записывает токен.
type Store interface {
	Set(token string)
	Clear()
	Authenticated() bool
}

// ViewModel — логика страниц входа и восстановления.
type ViewModel struct {
	set    *resources.Set
	sess   Store
	log    *slog.Logger
	login  *query.Mutation[models.Credentials, models.Envelope[models.LoginResult]]
	forgot *query.Mutation[models.ForgotPasswordRequest, models.Envelope[models.ForgotPasswordResult]]
	verify *query.Mutation[models.OTPMatchRequest, models.Envelope[models.OTPMatchResult]]
	reset  *query.Mutation[models.PasswordReset, models.Envelope[struct{}]]
}

// New создаёт модель страниц входа.
func New(set *resources.Set, sess Store, log *slog.Logger) *ViewModel {
	return &ViewModel{
		set:    set,
		sess:   sess,
		log:    log,
		login:  query.NewMutation("auth.login", set.API.Auth.Login, log),
		forgot: query.NewMutation("auth.forgot_password", set.API.Auth.ForgotPassword, log),
		verify: query.NewMutation("auth.verify_otp", set.API.Auth.VerifyOTP, log),
		reset:  query.NewMutation("auth.reset_password", set.API.Auth.ResetPassword, log),
	}
}

// Login выполняет вход, сохраняет токен и ведёт на главную страницу.
func (vm *ViewModel) Login(ctx context.Context, creds models.Credentials) feedback.Outcome {
	if err := validate.Struct(creds); err != nil {
		return feedback.Rejected("auth.login", err.Error())
	}
	env, err := vm.login.Run(ctx, creds)
	if err == nil && env.Data.AccessToken == "" {
		vm.log.Error("login response without access token", sl.Op("viewmodel.login.Login"))
		return feedback.Failed(errors.New("missing access token"), loginMessages.Failure, nil)
	}
	out := feedback.AfterMutation(ctx, vm.log, nil, err, env.Message, loginMessages)
	if !out.OK {
		return out
	}
	// Данные прежней сессии не должны попасть в новую.
	vm.set.Reset(ctx)
	vm.sess.Set(env.Data.AccessToken)
	out.Redirect = HomePath
	return out
}

// Logout закрывает сессию, сбрасывает общие запросы и ведёт на страницу входа.
func (vm *ViewModel) Logout(ctx context.Context) feedback.Outcome {
	vm.sess.Clear()
	vm.set.Reset(ctx)
	return feedback.Outcome{OK: true, Redirect: feedback.LoginPath}
}

// ForgotPassword запрашивает код и ведёт на страницу ввода кода.
func (vm *ViewModel) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) feedback.Outcome {
	if err := validate.Struct(req); err != nil {
		return feedback.Rejected("auth.forgot_password", err.Error())
	}
	env, err := vm.forgot.Run(ctx, req)
	out := feedback.AfterMutation(ctx, vm.log, nil, err, env.Message, forgotMessages)
	if out.OK {
		out.Redirect = withToken(VerifyEmailPath, env.Data.Token)
	}
	return out
}

// VerifyOTP проверяет, что код состоит ровно из шести цифр, и только затем обращается к серверу.
// Успех ведёт на страницу нового пароля с токеном сброса.
func (vm *ViewModel) VerifyOTP(ctx context.Context, req models.OTPMatchRequest) feedback.Outcome {
	if !CompleteOTP(req.OTP) {
		return feedback.Rejected("auth.verify_otp", IncompleteOTP)
	}
	env, err := vm.verify.Run(ctx, req)
	out := feedback.AfterMutation(ctx, vm.log, nil, err, env.Message, verifyMessages)
	if out.OK {
		out.Redirect = withToken(ResetPasswordPath, env.Data.ForgetOtpMatchToken)
	}
	return out
}

// ResetPassword проверяет пароли локально и устанавливает новый пароль по токену сброса.
func (vm *ViewModel) ResetPassword(ctx context.Context, req models.PasswordReset) feedback.Outcome {
	if err := validate.Passwords(req.NewPassword, req.ConfirmPassword); err != nil {
		return feedback.Rejected("auth.reset_password", err.Error())
	}
	if req.Token == "" {
		return feedback.Rejected("auth.reset_password", "Reset link is invalid or has expired")
	}
	env, err := vm.reset.Run(ctx, req)
	out := feedback.AfterMutation(ctx, vm.log, nil, err, env.Message, resetMessages)
	if out.OK {
		out.Redirect = feedback.LoginPath
	}
	return out
}

// CompleteOTP сообщает, что код состоит ровно из шести цифр.
func CompleteOTP(otp string) bool {
	if len(otp) != OTPLength {
		return false
	}
	for _, r := range otp {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func withToken(path, token string) string {
	return path + "?" + url.Values{"token": {token}}.Encode()
}
