package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-admin/internal/http/handlers/auth"
	"github.com/magabrotheeeer/subscription-admin/internal/http/handlers/layout"
	"github.com/magabrotheeeer/subscription-admin/internal/http/handlers/notifications"
	"github.com/magabrotheeeer/subscription-admin/internal/http/handlers/overview"
	"github.com/magabrotheeeer/subscription-admin/internal/http/handlers/plans"
	"github.com/magabrotheeeer/subscription-admin/internal/http/handlers/settings"
	"github.com/magabrotheeeer/subscription-admin/internal/http/handlers/users"
	"github.com/magabrotheeeer/subscription-admin/internal/http/middlewarectx"
)

// Handlers — обработчики всех страниц консоли.
type Handlers struct {
	Auth          *auth.Handler
	Overview      *overview.Handler
	Users         *users.Handler
	Plans         *plans.Handler
	Notifications *notifications.Handler
	Settings      *settings.Handler
	Layout        *layout.Handler
}

// RegisterRoutes регистрирует все маршруты консоли.
func RegisterRoutes(r chi.Router, logger *slog.Logger, sess middlewarectx.Session, h Handlers, rps float64, burst int) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.RateLimitMiddleware(logger, rps, burst),
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)
		r.Post("/auth/forgot-password", h.Auth.ForgotPassword)
		r.Post("/auth/verify-otp", h.Auth.VerifyOTP)
		r.Post("/auth/reset-password", h.Auth.ResetPassword)

		// Группа с проверкой сессии
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireSession(sess, logger))

			r.Get("/overview", h.Overview.Page)
			r.Get("/overview/earnings", h.Overview.Earnings)

			r.Get("/users", h.Users.List)
			r.Get("/users/{id}/confirm", h.Users.Prompt)
			r.Patch("/users/{id}/block", h.Users.ToggleBlock)

			r.Get("/plans", h.Plans.List)
			r.Post("/plans", h.Plans.Create)
			r.Patch("/plans/{id}", h.Plans.Update)
			r.Delete("/plans/{id}", h.Plans.Delete)

			r.Get("/notifications", h.Notifications.List)
			r.Post("/notifications/read-all", h.Notifications.ReadAll)
			r.Delete("/notifications/{id}", h.Notifications.Delete)

			r.Get("/settings/profile", h.Settings.Profile)
			r.Patch("/settings/profile", h.Settings.EditProfile)
			r.Patch("/settings/password", h.Settings.ChangePassword)

			r.Get("/layout/header", h.Layout.ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
