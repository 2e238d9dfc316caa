// Package settings описывает вызовы профиля администратора и смены пароля.
package settings

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

// ProfileFileField — имя multipart-части с изображением профиля.
const ProfileFileField = "profile"

// API — эндпоинты профиля.
type API struct {
	client *transport.Client
}

// New создаёт API поверх транспорта.
func New(client *transport.Client) *API {
	return &API{client: client}
}

// Profile возвращает профиль текущего администратора.
func (a *API) Profile(ctx context.Context) (models.Envelope[models.Profile], error) {
	return transport.Call[models.Profile](ctx, a.client, transport.Request{
		Name:   "settings.profile",
		Method: http.MethodGet,
		Path:   "/users/my-profile",
	})
}

// UpdateProfile отправляет поля профиля и необязательное изображение одной multipart-формой.
func (a *API) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (models.Envelope[models.Profile], error) {
	form := &transport.Form{
		Fields: []transport.Field{
			{Name: "fullName", Value: in.FullName},
			{Name: "email", Value: in.Email},
			{Name: "role", Value: in.Role},
			{Name: "phone", Value: in.Phone},
		},
		FileField: ProfileFileField,
		File:      in.Image,
	}
	return transport.Call[models.Profile](ctx, a.client, transport.Request{
		Name:   "settings.update_profile",
		Method: http.MethodPatch,
		Path:   "/users/update-my-profile",
		Form:   form,
	})
}

// ChangePassword меняет пароль авторизованного администратора.
func (a *API) ChangePassword(ctx context.Context, in models.PasswordChange) (models.Envelope[struct{}], error) {
	return transport.Call[struct{}](ctx, a.client, transport.Request{
		Name:   "settings.change_password",
		Method: http.MethodPatch,
		Path:   "/auth/change-password",
		Body:   in,
	})
}
