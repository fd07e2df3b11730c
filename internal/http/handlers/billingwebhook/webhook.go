// Package billingwebhook implements the HTTP handler for
// billing-provider webhook events.
//
// The signature is verified against the RAW request body before any
// parsing; decoding and reserializing the payload would break it. A bad
// signature is a 400 and no state changes. Known subscription events are
// applied through the lifecycle service; every other event type is
// acknowledged and ignored.
package billingwebhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/replyflow/replyflow/internal/billing"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/services/lifecycle"
)

// SignatureHeader carries the provider webhook signature.
const SignatureHeader = "Webhook-Signature"

// Service is the lifecycle surface the handler needs.
type Service interface {
	ApplyEvent(ctx context.Context, event lifecycle.Event) error
}

// Handler serves provider webhook deliveries.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New creates a Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billingwebhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		log.Error("missing webhook signature")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := billing.VerifySignature(body, signature, h.webhookSecret,
		billing.DefaultTolerance, time.Now()); err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var providerEvent billing.Event
	if err := json.Unmarshal(body, &providerEvent); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	event, known, err := lifecycle.EventFromProvider(&providerEvent)
	if err != nil {
		log.Error("malformed webhook event", sl.Err(err),
			slog.String("event_type", providerEvent.Type))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !known {
		log.Info("ignored webhook event", slog.String("event_type", providerEvent.Type))
		render.JSON(w, r, map[string]any{"received": true})
		return
	}

	if err := h.service.ApplyEvent(r.Context(), event); err != nil {
		log.Error("failed to apply webhook event", sl.Err(err),
			slog.String("event_type", providerEvent.Type))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed",
		slog.String("event_type", providerEvent.Type),
		slog.String("event_id", providerEvent.ID))
	render.JSON(w, r, map[string]any{"received": true})
}
