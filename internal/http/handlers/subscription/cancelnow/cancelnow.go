// Package cancelnow implements the HTTP handler for an immediate
// cancellation. Unlike the deferred path the subscription terminates at
// once; local status moves straight to CANCELED and an execution-log
// entry is recorded.
package cancelnow

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/http/response"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/services/lifecycle"
)

// Handler serves immediate-cancel requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the lifecycle surface the handler needs.
type Service interface {
	CancelNow(ctx context.Context, userUID string) error
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Cancel immediately
// @Description Cancels the caller's subscription at once.
// @Tags Subscription
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "No subscription"
// @Failure 502 {object} response.ErrorResponse "Billing provider failure"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /subscription/cancel-now [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancelnow"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		log.Error("session not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	err := h.service.CancelNow(r.Context(), sess.UserUID)
	switch {
	case errors.Is(err, lifecycle.ErrNoSubscription):
		log.Error("no subscription to cancel", slog.String("user_uid", sess.UserUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subscription not found"))
		return
	case errors.Is(err, lifecycle.ErrProvider):
		log.Error("provider failure on immediate cancel", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("billing provider unavailable"))
		return
	case err != nil:
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not cancel subscription"))
		return
	}

	log.Info("subscription canceled immediately", slog.String("user_uid", sess.UserUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "CANCELED",
	}))
}
