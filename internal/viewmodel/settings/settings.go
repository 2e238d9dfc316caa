// Package settings строит страницу профиля администратора: просмотр, редактирование
// с изображением и смену пароля.
package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/validate"
	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/query"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

var (
	profileMessages  = feedback.Messages{Success: "Profile updated successfully", Failure: "Failed to update profile"}
	passwordMessages = feedback.Messages{Success: "Password changed successfully", Failure: "Failed to change password"}
)

// ProfileView — карточка профиля.
type ProfileView struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Avatar   string `json:"avatar,omitempty"`
	Initial  string `json:"initial"`
}

// PasswordForm — форма смены пароля.
type PasswordForm struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ViewModel — логика страницы профиля.
type ViewModel struct {
	set      *resources.Set
	sess     feedback.SessionClearer
	log      *slog.Logger
	edit     *query.Mutation[models.ProfileUpdate, models.Envelope[models.Profile]]
	password *query.Mutation[models.PasswordChange, models.Envelope[struct{}]]
}

// New создаёт модель страницы профиля.
func New(set *resources.Set, sess feedback.SessionClearer, log *slog.Logger) *ViewModel {
	return &ViewModel{
		set:      set,
		sess:     sess,
		log:      log,
		edit:     query.NewMutation("settings.update_profile", set.API.Settings.UpdateProfile, log),
		password: query.NewMutation("settings.change_password", set.API.Settings.ChangePassword, log),
	}
}

// Profile возвращает карточку профиля.
func (vm *ViewModel) Profile(ctx context.Context) (ProfileView, error) {
	const op = "viewmodel.settings.Profile"

	st := vm.set.Profile.Load(ctx)
	if st.Status == query.Error {
		feedback.Lost(vm.sess, st.Err)
		return ProfileView{}, fmt.Errorf("%s: %w", op, st.Err)
	}
	return NewProfileView(st.Data, vm.set.AssetURL), nil
}

// EditProfile отправляет форму профиля одной multipart-формой и перечитывает профиль.
func (vm *ViewModel) EditProfile(ctx context.Context, in models.ProfileUpdate) feedback.Outcome {
	if err := validate.Struct(in); err != nil {
		return feedback.Rejected("settings.update_profile", err.Error())
	}
	env, err := vm.edit.Run(ctx, in)
	return feedback.AfterMutation(ctx, vm.log, vm.sess, err, env.Message, profileMessages, vm.set.Profile)
}

// ChangePassword проверяет пароли локально и только затем обращается к серверу.
func (vm *ViewModel) ChangePassword(ctx context.Context, form PasswordForm) feedback.Outcome {
	if err := validate.Passwords(form.NewPassword, form.ConfirmPassword); err != nil {
		return feedback.Rejected("settings.change_password", err.Error())
	}
	if form.OldPassword == "" {
		return feedback.Rejected("settings.change_password", "field OldPassword is a required field")
	}
	env, err := vm.password.Run(ctx, models.PasswordChange{
		OldPassword: form.OldPassword,
		NewPassword: form.NewPassword,
	})
	return feedback.AfterMutation(ctx, vm.log, vm.sess, err, env.Message, passwordMessages)
}

// NewProfileView строит карточку профиля; asset разрешает путь к аватару.
func NewProfileView(p models.Profile, asset func(string) string) ProfileView {
	initial := "A"
	for _, r := range p.FullName {
		initial = string(r)
		break
	}
	return ProfileView{
		FullName: p.FullName,
		Email:    p.Email,
		Role:     p.Role,
		Phone:    p.Phone,
		Avatar:   asset(p.Profile),
		Initial:  initial,
	}
}
