// Package packages описывает вызовы тарифов подписки.
package packages

import (
	"context"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

// API — эндпоинты /package.
type API struct {
	client *transport.Client
}

// New создаёт API поверх транспорта.
func New(client *transport.Client) *API {
	return &API{client: client}
}

// List возвращает все тарифы.
func (a *API) List(ctx context.Context) (models.Envelope[[]models.Plan], error) {
	return transport.Call[[]models.Plan](ctx, a.client, transport.Request{
		Name:   "packages.list",
		Method: http.MethodGet,
		Path:   "/package/packages",
	})
}

// Create создаёт тариф.
func (a *API) Create(ctx context.Context, in models.PlanInput) (models.Envelope[models.Plan], error) {
	return transport.Call[models.Plan](ctx, a.client, transport.Request{
		Name:   "packages.create",
		Method: http.MethodPost,
		Path:   "/package/create-package",
		Body:   in,
	})
}

// Update изменяет тариф.
func (a *API) Update(ctx context.Context, id string, in models.PlanInput) (models.Envelope[models.Plan], error) {
	return transport.Call[models.Plan](ctx, a.client, transport.Request{
		Name:   "packages.update",
		Method: http.MethodPatch,
		Path:   "/package/" + url.PathEscape(id),
		Body:   in,
	})
}

// Delete удаляет тариф.
func (a *API) Delete(ctx context.Context, id string) (models.Envelope[struct{}], error) {
	return transport.Call[struct{}](ctx, a.client, transport.Request{
		Name:   "packages.delete",
		Method: http.MethodDelete,
		Path:   "/package/" + url.PathEscape(id),
	})
}
