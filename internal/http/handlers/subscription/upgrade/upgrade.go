// Package upgrade implements the HTTP handler starting a paid
// subscription. The source product answered 200 even on failure; this
// handler returns real status codes but keeps the success flag in the
// body for clients that only read that.
package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/http/response"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/services/lifecycle"
)

// Request carries the billing customer the subscription is opened for.
type Request struct {
	CustomerID string `json:"customer_id" validate:"required"`
}

// Handler serves upgrade requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the lifecycle surface the handler needs.
type Service interface {
	Upgrade(ctx context.Context, userUID, customerID string) error
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Upgrade to a paid plan
// @Description Opens a billing-provider subscription for the caller.
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Param request body Request true "Billing customer"
// @Success 200 {object} map[string]any "success flag"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 502 {object} map[string]any "Billing provider failure"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /upgrade [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.upgrade"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.Upgrade(r.Context(), sess.UserUID, req.CustomerID)
	switch {
	case errors.Is(err, lifecycle.ErrProvider):
		log.Error("provider failure on upgrade", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, map[string]any{
			"success": false,
			"error":   "billing provider unavailable",
		})
		return
	case err != nil:
		log.Error("failed to upgrade", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, map[string]any{
			"success": false,
			"error":   "could not upgrade",
		})
		return
	}

	log.Info("subscription created", slog.String("user_uid", sess.UserUID))
	render.JSON(w, r, map[string]any{"success": true})
}
