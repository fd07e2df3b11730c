// Package get implements the HTTP handler returning the caller's own
// effective membership. The stored tier may be stale; the response
// always reflects the trial-expiry rule.
package get

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
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/storage/repository"
)

// Handler serves the current user's membership.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the membership surface the handler needs.
type Service interface {
	View(ctx context.Context, userUID string) (*models.MembershipView, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Get own membership
// @Description Returns the caller's effective membership tier and subscription fields.
// @Tags Membership
// @Produce  json
// @Success 200 {object} models.MembershipView
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /membership [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.get"
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

	view, err := h.service.View(r.Context(), sess.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("user not found", slog.String("user_uid", sess.UserUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to evaluate membership", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read membership"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(view))
}
