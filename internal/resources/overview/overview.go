// Package overview описывает вызовы главной страницы: агрегаты, доход по месяцам
// и список пользователей с блокировкой.
package overview

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

// API — эндпоинты /payment и /users.
type API struct {
	client *transport.Client
}

// New создаёт API поверх транспорта.
func New(client *transport.Client) *API {
	return &API{client: client}
}

// Stats возвращает агрегаты для карточек статистики.
func (a *API) Stats(ctx context.Context) (models.Envelope[models.Overview], error) {
	return transport.Call[models.Overview](ctx, a.client, transport.Request{
		Name:   "overview.stats",
		Method: http.MethodGet,
		Path:   "/payment/overview",
	})
}

// Earnings возвращает доход по месяцам за год. Нулевой год не передаётся,
// тогда сервер выбирает текущий.
func (a *API) Earnings(ctx context.Context, year int) (models.Envelope[[]models.EarningPoint], error) {
	var q url.Values
	if year > 0 {
		q = url.Values{"year": {strconv.Itoa(year)}}
	}
	return transport.Call[[]models.EarningPoint](ctx, a.client, transport.Request{
		Name:   "overview.earnings",
		Method: http.MethodGet,
		Path:   "/payment/all-earning-rasio",
		Query:  q,
	})
}

// Users возвращает одну страницу пользователей; нулевые page и limit не передаются.
func (a *API) Users(ctx context.Context, page, limit int) (models.Envelope[[]models.User], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return transport.Call[[]models.User](ctx, a.client, transport.Request{
		Name:   "users.list",
		Method: http.MethodGet,
		Path:   "/users/all-users",
		Query:  q,
	})
}

// ToggleBlock переключает блокировку пользователя. Новое состояние вычисляет сервер.
func (a *API) ToggleBlock(ctx context.Context, id string) (models.Envelope[models.User], error) {
	return transport.Call[models.User](ctx, a.client, transport.Request{
		Name:   "users.toggle_block",
		Method: http.MethodPatch,
		Path:   "/users/blocked/" + url.PathEscape(id),
	})
}
