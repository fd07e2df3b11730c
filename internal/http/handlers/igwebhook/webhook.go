// Package igwebhook implements the Meta webhook endpoint.
//
// GET is the subscription handshake: Meta sends hub.verify_token and
// expects hub.challenge echoed back verbatim. POST carries messaging
// events; the payload signature is checked against the raw body before
// parsing. Delivery is acknowledged with 200 even when individual
// events fail so Meta does not retry the whole batch.
package igwebhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/replyflow/replyflow/internal/instagram"
	"github.com/replyflow/replyflow/internal/lib/sl"
)

// SignatureHeader carries the Meta payload signature.
const SignatureHeader = "X-Hub-Signature-256"

// Engine processes inbound messaging events.
type Engine interface {
	HandleMessage(ctx context.Context, igUserID string, ev instagram.MessagingEvent) error
}

// Handler serves Meta webhook traffic.
type Handler struct {
	log         *slog.Logger
	engine      Engine
	appSecret   string
	verifyToken string
}

// New creates a Handler.
func New(log *slog.Logger, engine Engine, appSecret, verifyToken string) *Handler {
	return &Handler{
		log:         log,
		engine:      engine,
		appSecret:   appSecret,
		verifyToken: verifyToken,
	}
}

// Verify answers the GET handshake.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.igwebhook.Verify"
	log := h.log.With(slog.String("op", op))

	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		log.Error("webhook verification rejected", slog.String("mode", mode))
		w.WriteHeader(http.StatusForbidden)
		return
	}

	log.Info("webhook verified")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// Receive handles POST deliveries.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.igwebhook.Receive"
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

	if !instagram.VerifyWebhookSignature(body,
		r.Header.Get(SignatureHeader), h.appSecret) {
		log.Error("webhook signature verification failed")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var payload instagram.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	for _, entry := range payload.Entry {
		for _, ev := range entry.Messaging {
			if ev.Message.Text == "" {
				continue
			}
			if err := h.engine.HandleMessage(r.Context(), entry.ID, ev); err != nil {
				log.Error("failed to process messaging event", sl.Err(err),
					slog.String("entry_id", entry.ID))
			}
		}
	}

	w.WriteHeader(http.StatusOK)
}
