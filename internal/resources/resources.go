// Package resources собирает эндпоинты всех ресурсов и общие запросы чтения,
// которые разделяют страницы консоли: шапка и страница уведомлений читают один и тот же список.
package resources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/query"
	"github.com/magabrotheeeer/subscription-admin/internal/resources/auth"
	"github.com/magabrotheeeer/subscription-admin/internal/resources/notifications"
	"github.com/magabrotheeeer/subscription-admin/internal/resources/overview"
	"github.com/magabrotheeeer/subscription-admin/internal/resources/packages"
	"github.com/magabrotheeeer/subscription-admin/internal/resources/settings"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

// Имена общих запросов; они же ключи в общем кеше.
const (
	QueryUsers         = "users"
	QueryPlans         = "plans"
	QueryNotifications = "notifications"
	QueryProfile       = "profile"
	QueryStats         = "stats"
	QueryEarnings      = "earnings"
)

// maxUserPages ограничивает обход страниц пользователей, если сервер вернёт некорректную meta.
const maxUserPages = 1000

// APIs — эндпоинты всех ресурсов.
type APIs struct {
	Auth          *auth.API
	Overview      *overview.API
	Packages      *packages.API
	Notifications *notifications.API
	Settings      *settings.API
}

// Options настраивает общие запросы.
type Options struct {
	// FetchLimit — размер страницы при обходе списка пользователей, 0 оставляет значение сервера
	FetchLimit int
	// StaleTime — окно свежести ответов, 0 даёт query.DefaultStaleTime, отрицательное отключает устаревание
	StaleTime time.Duration
	// Memo подключается только вместе с Owner: записи кеша принадлежат администратору сессии
	Memo    query.Memo
	MemoTTL time.Duration
	Owner   func() string
	Clock   func() time.Time
}

// Set — эндпоинты и общие запросы консоли.
type Set struct {
	API APIs

	Users         *query.Query[[]models.User]
	Plans         *query.Query[[]models.Plan]
	Notifications *query.Query[models.Envelope[[]models.Notification]]
	Profile       *query.Query[models.Profile]
	Stats         *query.Query[models.Overview]
	Earnings      *query.Family[int, []models.EarningPoint]

	client *transport.Client
}

// New создаёт набор поверх транспорта.
func New(client *transport.Client, log *slog.Logger, opts Options) *Set {
	s := &Set{
		API: APIs{
			Auth:          auth.New(client),
			Overview:      overview.New(client),
			Packages:      packages.New(client),
			Notifications: notifications.New(client),
			Settings:      settings.New(client),
		},
		client: client,
	}

	stale := opts.StaleTime
	if stale == 0 {
		stale = query.DefaultStaleTime
	}
	qopts := []query.Option{query.WithLogger(log), query.WithStaleTime(stale)}
	if opts.Clock != nil {
		qopts = append(qopts, query.WithClock(opts.Clock))
	}
	switch {
	case opts.Memo != nil && opts.Owner != nil:
		ttl := opts.MemoTTL
		if stale > 0 && (ttl <= 0 || ttl > stale) {
			ttl = stale
		}
		qopts = append(qopts,
			query.WithMemo(opts.Memo, ttl),
			query.WithScope(memoScope(client.BaseURL(), opts.Owner)),
		)
	case opts.Memo != nil:
		log.Warn("query memo disabled: no session owner")
	}

	s.Users = query.New(QueryUsers, func(ctx context.Context) ([]models.User, error) {
		return s.allUsers(ctx, opts.FetchLimit)
	}, qopts...)
	s.Plans = query.New(QueryPlans, func(ctx context.Context) ([]models.Plan, error) {
		env, err := s.API.Packages.List(ctx)
		return env.Data, err
	}, qopts...)
	s.Notifications = query.New(QueryNotifications, func(ctx context.Context) (models.Envelope[[]models.Notification], error) {
		return s.API.Notifications.List(ctx)
	}, qopts...)
	s.Profile = query.New(QueryProfile, func(ctx context.Context) (models.Profile, error) {
		env, err := s.API.Settings.Profile(ctx)
		return env.Data, err
	}, qopts...)
	s.Stats = query.New(QueryStats, func(ctx context.Context) (models.Overview, error) {
		env, err := s.API.Overview.Stats(ctx)
		return env.Data, err
	}, qopts...)
	s.Earnings = query.NewFamily(QueryEarnings, func(ctx context.Context, year int) ([]models.EarningPoint, error) {
		env, err := s.API.Overview.Earnings(ctx, year)
		return env.Data, err
	}, qopts...)

	return s
}

// AssetURL превращает относительный путь изображения в абсолютный адрес.
func (s *Set) AssetURL(path string) string {
	return s.client.AssetURL(path)
}

// Reset сбрасывает все общие запросы, например после выхода.
func (s *Set) Reset(ctx context.Context) {
	s.Users.Reset(ctx)
	s.Plans.Reset(ctx)
	s.Notifications.Reset(ctx)
	s.Profile.Reset(ctx)
	s.Stats.Reset(ctx)
	s.Earnings.Reset(ctx)
}

// memoScope связывает записи кеша с API и администратором: консоли разных
// администраторов или разных API не читают данные друг друга.
func memoScope(baseURL string, owner func() string) func() string {
	return func() string {
		subject := owner()
		if subject == "" {
			return ""
		}
		sum := sha256.Sum256([]byte(baseURL + "\n" + subject))
		return hex.EncodeToString(sum[:8])
	}
}

// allUsers обходит страницы 1..totalPage и склеивает их: фильтрация и нарезка
// на страницы выполняются на стороне консоли по полному списку.
func (s *Set) allUsers(ctx context.Context, limit int) ([]models.User, error) {
	const op = "resources.allUsers"

	var users []models.User
	for page := 1; page <= maxUserPages; page++ {
		env, err := s.API.Overview.Users(ctx, page, limit)
		if err != nil {
			return nil, fmt.Errorf("%s: page %d: %w", op, page, err)
		}
		users = append(users, env.Data...)
		if env.Meta == nil || page >= env.Meta.TotalPage || len(env.Data) == 0 {
			break
		}
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
