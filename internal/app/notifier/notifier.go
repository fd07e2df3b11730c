// Package notifier wires the notification worker: it consumes
// membership events from the queue and hands them to the notifier
// service for e-mail delivery.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/replyflow/replyflow/internal/config"
	"github.com/replyflow/replyflow/internal/lib/rabbitmq"
	"github.com/replyflow/replyflow/internal/lib/smtp"
	notifierservice "github.com/replyflow/replyflow/internal/services/notifier"
)

// App is the assembled notification worker.
type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	service *notifierservice.Service
	logger  *slog.Logger
}

// New builds the worker: connects to rabbitmq, declares the topology
// and assembles the notifier service over SMTP.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	service := notifierservice.New(transport, logger)

	return &App{
		conn:    conn,
		ch:      ch,
		service: service,
		logger:  logger,
	}, nil
}

// Run starts the consumer and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, "notification.membership", a.service.HandleMessage)
	if err != nil {
		a.logger.Error("failed to start notification.membership consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
