package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/resources/apitest"
	"github.com/magabrotheeeer/subscription-admin/internal/session"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

func newAPI(t *testing.T) (*API, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	// Публичные вызовы не требуют сессии.
	return New(srv.Client(session.New())), srv
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		creds    models.Credentials
		wantErr  bool
		wantMsg  string
		wantKind transport.Kind
	}{
		{
			name:  "valid credentials",
			creds: models.Credentials{Email: apitest.AdminEmail, Password: apitest.AdminPassword},
		},
		{
			name:     "wrong password",
			creds:    models.Credentials{Email: apitest.AdminEmail, Password: "nope"},
			wantErr:  true,
			wantMsg:  "Invalid email or password",
			wantKind: transport.KindStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, srv := newAPI(t)
			env, err := api.Login(context.Background(), tt.creds)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, transport.KindOf(err))
				assert.Equal(t, tt.wantMsg, transport.MessageOf(err, ""))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, srv.Token(), env.Data.AccessToken)
			assert.Equal(t, "User logged in successfully", env.Message)
		})
	}
}

func TestPasswordRecoveryFlow(t *testing.T) {
	api, srv := newAPI(t)
	ctx := context.Background()

	forgot, err := api.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: apitest.AdminEmail})
	require.NoError(t, err)
	assert.Equal(t, apitest.ForgotToken, forgot.Data.Token)

	_, err = api.VerifyOTP(ctx, models.OTPMatchRequest{OTP: "000000", Token: forgot.Data.Token})
	require.Error(t, err)
	assert.Equal(t, "Invalid OTP", transport.MessageOf(err, ""))

	match, err := api.VerifyOTP(ctx, models.OTPMatchRequest{OTP: apitest.OTP, Token: forgot.Data.Token})
	require.NoError(t, err)
	assert.Equal(t, apitest.ResetToken, match.Data.ForgetOtpMatchToken)

	_, err = api.ResetPassword(ctx, models.PasswordReset{
		Token:           match.Data.ForgetOtpMatchToken,
		NewPassword:     "brand-new",
		ConfirmPassword: "brand-new",
	})
	require.NoError(t, err)
	assert.Equal(t, "brand-new", srv.Password())
	assert.Equal(t, 1, srv.Hits(http.MethodPost, "/auth/dashboard/reset-password"))
}

func TestResetPassword_WrongToken(t *testing.T) {
	api, srv := newAPI(t)

	_, err := api.ResetPassword(context.Background(), models.PasswordReset{
		Token:           "bogus",
		NewPassword:     "brand-new",
		ConfirmPassword: "brand-new",
	})
	require.Error(t, err)
	assert.Equal(t, "Invalid reset token", transport.MessageOf(err, ""))
	assert.Equal(t, apitest.AdminPassword, srv.Password())
}
