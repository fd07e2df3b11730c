package replyflow

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/replyflow/replyflow/internal/config"
	"github.com/replyflow/replyflow/internal/http/handlers/auth/login"
	"github.com/replyflow/replyflow/internal/http/handlers/auth/register"
	"github.com/replyflow/replyflow/internal/http/handlers/billingwebhook"
	"github.com/replyflow/replyflow/internal/http/handlers/health"
	igconnect "github.com/replyflow/replyflow/internal/http/handlers/igaccount/connect"
	iglist "github.com/replyflow/replyflow/internal/http/handlers/igaccount/list"
	"github.com/replyflow/replyflow/internal/http/handlers/igwebhook"
	"github.com/replyflow/replyflow/internal/http/handlers/membership/get"
	"github.com/replyflow/replyflow/internal/http/handlers/membership/read"
	"github.com/replyflow/replyflow/internal/http/handlers/reply/create"
	"github.com/replyflow/replyflow/internal/http/handlers/reply/list"
	"github.com/replyflow/replyflow/internal/http/handlers/reply/recent"
	"github.com/replyflow/replyflow/internal/http/handlers/reply/remove"
	"github.com/replyflow/replyflow/internal/http/handlers/reply/update"
	"github.com/replyflow/replyflow/internal/http/handlers/subscription/cancel"
	"github.com/replyflow/replyflow/internal/http/handlers/subscription/cancelnow"
	"github.com/replyflow/replyflow/internal/http/handlers/subscription/upgrade"
	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	authservice "github.com/replyflow/replyflow/internal/services/auth"
	igaccountsservice "github.com/replyflow/replyflow/internal/services/igaccounts"
	lifecycleservice "github.com/replyflow/replyflow/internal/services/lifecycle"
	membershipservice "github.com/replyflow/replyflow/internal/services/membership"
	repliesservice "github.com/replyflow/replyflow/internal/services/replies"
	"github.com/replyflow/replyflow/internal/services/replyengine"
)

// RegisterRoutes registers every route of the API server.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authService *authservice.Service,
	membershipService *membershipservice.Service,
	lifecycleService *lifecycleservice.Service,
	repliesService *repliesservice.Service,
	igService *igaccountsservice.Service,
	engine *replyengine.Engine,
	parser middlewarectx.TokenParser,
) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(parser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/membership", get.New(logger, membershipService).ServeHTTP)
			r.Get("/membership/{userID}", read.New(logger, membershipService).ServeHTTP)
			r.Post("/upgrade", upgrade.New(logger, lifecycleService).ServeHTTP)
			r.Post("/subscription/cancel", cancel.New(logger, lifecycleService).ServeHTTP)
			r.Post("/subscription/cancel-now", cancelnow.New(logger, lifecycleService).ServeHTTP)
			r.Post("/replies", create.New(logger, repliesService).ServeHTTP)
			r.Get("/replies", list.New(logger, repliesService).ServeHTTP)
			r.Get("/replies/recent", recent.New(logger, repliesService).ServeHTTP)
			r.Put("/replies/{id}", update.New(logger, repliesService).ServeHTTP)
			r.Delete("/replies/{id}", remove.New(logger, repliesService).ServeHTTP)
			r.Post("/instagram/connect", igconnect.New(logger, igService).ServeHTTP)
			r.Get("/instagram/accounts", iglist.New(logger, igService).ServeHTTP)
		})

		// Webhook endpoints, authenticated by signature instead of JWT.
		r.Post("/webhooks/billing", billingwebhook.New(logger, lifecycleService, cfg.BillingWebhookSecret).ServeHTTP)
		igHook := igwebhook.New(logger, engine, cfg.IGAppSecret, cfg.IGVerifyToken)
		r.Get("/webhooks/instagram", igHook.Verify)
		r.Post("/webhooks/instagram", igHook.Receive)
	})

	r.Get("/health", health.New())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
