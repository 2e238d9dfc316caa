package models

// Credentials — данные для входа.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult — данные успешного входа.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
}

// ForgotPasswordRequest — запрос кода восстановления.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordResult — токен, сопровождающий проверку кода.
type ForgotPasswordResult struct {
	Token string `json:"token"`
}

// OTPMatchRequest — проверка шестизначного кода.
type OTPMatchRequest struct {
	OTP   string `json:"otp"`
	Token string `json:"token,omitempty"`
}

// OTPMatchResult — короткоживущий токен для сброса пароля.
type OTPMatchResult struct {
	ForgetOtpMatchToken string `json:"forgetOtpMatchToken"`
}

// PasswordReset — установка нового пароля по токену сброса.
type PasswordReset struct {
	Token           string `json:"-"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// PasswordChange — смена пароля авторизованным администратором.
type PasswordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
