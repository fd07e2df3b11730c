// Package replyflow wires the API server: storage, cache, message
// broker, provider clients and every HTTP handler.
package replyflow

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/replyflow/replyflow/internal/billing"
	"github.com/replyflow/replyflow/internal/cache"
	"github.com/replyflow/replyflow/internal/config"
	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/instagram"
	"github.com/replyflow/replyflow/internal/lib/jwt"
	"github.com/replyflow/replyflow/internal/lib/rabbitmq"
	"github.com/replyflow/replyflow/internal/migrations"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/replystore"
	"github.com/replyflow/replyflow/internal/services/auth"
	"github.com/replyflow/replyflow/internal/services/igaccounts"
	"github.com/replyflow/replyflow/internal/services/lifecycle"
	"github.com/replyflow/replyflow/internal/services/membership"
	"github.com/replyflow/replyflow/internal/services/replies"
	"github.com/replyflow/replyflow/internal/services/replyengine"
	"github.com/replyflow/replyflow/internal/session"
	"github.com/replyflow/replyflow/internal/storage/repository"
)

// replyMirrorTTL bounds how long a mirrored rule set may outlive its
// database row.
const replyMirrorTTL = 24 * time.Hour

// App is the assembled API server.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New builds the App: connects to postgres, redis and rabbitmq, runs
// migrations, assembles services and registers the routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch, "notifications")

	billingClient := billing.NewClient(cfg.BillingSecretKey, cfg.BillingAPIURL, cfg.BillingTimeout)
	graphClient := instagram.NewClient(cfg.GraphAPIURL, cfg.IGAppID, cfg.IGAppSecret, cfg.IGRequestTimeout)

	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	store := replystore.New(replystore.NewRedisAdapter(cacheRedis, replyMirrorTTL))

	authService := auth.New(db, maker, logger)
	membershipService := membership.New(db, publisher, cfg.TrialDays, logger)
	lifecycleService := lifecycle.New(db, billingClient, publisher, cfg.BillingPriceID, logger)
	repliesService := replies.New(db, store, logger)
	igService := igaccounts.New(db, graphClient, logger)
	engine := replyengine.New(db, membershipService, graphClient, logger)

	var parser middlewarectx.TokenParser = session.NewResolver(maker)
	if cfg.Env == "test" {
		parser = &session.StubResolver{Session: models.Session{
			UserUID: "00000000-0000-0000-0000-000000000001",
			Email:   "test@example.com",
		}}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg,
		authService, membershipService, lifecycleService,
		repliesService, igService, engine, parser)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.amqp.Close()
		_ = a.db.DB.Close()
		return err
	}
}
