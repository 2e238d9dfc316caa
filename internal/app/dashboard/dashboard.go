// Package dashboard собирает консоль администратора: сессию, транспорт, общие запросы,
// модели представления и HTTP-сервер.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/subscription-admin/internal/cache"
	"github.com/magabrotheeeer/subscription-admin/internal/config"
	authhandler "github.com/magabrotheeeer/subscription-admin/internal/http/handlers/auth"
	layouthandler "github.com/magabrotheeeer/subscription-admin/internal/http/handlers/layout"
	notificationshandler "github.com/magabrotheeeer/subscription-admin/internal/http/handlers/notifications"
	overviewhandler "github.com/magabrotheeeer/subscription-admin/internal/http/handlers/overview"
	planshandler "github.com/magabrotheeeer/subscription-admin/internal/http/handlers/plans"
	settingshandler "github.com/magabrotheeeer/subscription-admin/internal/http/handlers/settings"
	usershandler "github.com/magabrotheeeer/subscription-admin/internal/http/handlers/users"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/query"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/session"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/layout"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/login"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/notifications"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/overview"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/plans"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/settings"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/users"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP-сервер консоли.
type App struct {
	server *http.Server
	logger *slog.Logger
	cache  *cache.Cache
}

// New создаёт приложение. Redis подключается только при включённом общем кеше.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	var (
		memo       query.Memo
		cacheRedis *cache.Cache
	)
	if cfg.Cache.Enabled {
		var err error
		cacheRedis, err = cache.InitServer(ctx, cfg.RedisConnection, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		memo = cacheRedis
		logger.Info("query cache enabled", slog.String("redis", cfg.AddressRedis), slog.Duration("ttl", cfg.TTL))
	}

	handler := NewHandler(cfg, logger, session.New(), memo)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      handler,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		cache:  cacheRedis,
	}, nil
}

// NewHandler собирает роутер консоли поверх сессии sess; memo может быть nil.
func NewHandler(cfg *config.Config, logger *slog.Logger, sess *session.Session, memo query.Memo) http.Handler {
	client := transport.New(cfg.API, sess, logger)
	set := resources.New(client, logger, resources.Options{
		FetchLimit: cfg.PageSize,
		StaleTime:  cfg.StaleTime,
		Memo:       memo,
		MemoTTL:    cfg.TTL,
		Owner:      sess.Subject,
	})

	h := Handlers{
		Auth:          authhandler.New(logger, login.New(set, sess, logger)),
		Overview:      overviewhandler.New(logger, overview.New(set, sess, logger)),
		Users:         usershandler.New(logger, users.New(set, sess, logger, cfg.PageSize)),
		Plans:         planshandler.New(logger, plans.New(set, sess, logger)),
		Notifications: notificationshandler.New(logger, notifications.New(set, sess, logger, time.Local)),
		Settings:      settingshandler.New(logger, settings.New(set, sess, logger)),
		Layout:        layouthandler.New(logger, layout.New(set, sess, logger)),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, sess, h, cfg.RequestsPerSecond, cfg.RateBurst)
	return router
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.cache == nil {
		return
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis", sl.Err(err))
	}
}
