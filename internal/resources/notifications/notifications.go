// Package notifications описывает вызовы уведомлений администратора.
package notifications

import (
	"context"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

// API — эндпоинты /notification.
type API struct {
	client *transport.Client
}

// New создаёт API поверх транспорта.
func New(client *transport.Client) *API {
	return &API{client: client}
}

// List возвращает уведомления вместе с meta.
func (a *API) List(ctx context.Context) (models.Envelope[[]models.Notification], error) {
	return transport.Call[[]models.Notification](ctx, a.client, transport.Request{
		Name:   "notifications.list",
		Method: http.MethodGet,
		Path:   "/notification/admin-all",
	})
}

// ReadAll помечает все уведомления прочитанными.
func (a *API) ReadAll(ctx context.Context) (models.Envelope[struct{}], error) {
	return transport.Call[struct{}](ctx, a.client, transport.Request{
		Name:   "notifications.read_all",
		Method: http.MethodPost,
		Path:   "/notification/all-read",
	})
}

// Delete удаляет одно уведомление.
func (a *API) Delete(ctx context.Context, id string) (models.Envelope[struct{}], error) {
	return transport.Call[struct{}](ctx, a.client, transport.Request{
		Name:   "notifications.delete",
		Method: http.MethodDelete,
		Path:   "/notification/admin/" + url.PathEscape(id),
	})
}
