// Package list implements the HTTP handler returning all reply rules
// of the caller's connected account.
package list

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
	"github.com/replyflow/replyflow/internal/services/replies"
)

// Handler serves rule listings.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business-logic surface of rule listing.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.Reply, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List reply rules
// @Description Returns every reply rule of the caller's connected account.
// @Tags Replies
// @Produce  json
// @Success 200 {object} response.Response{data=[]models.Reply}
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /replies [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reply.list"
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

	rules, err := h.service.List(r.Context(), sess.UserUID)
	if err != nil {
		if errors.Is(err, replies.ErrNoAccount) {
			// No connected account means no rules, not a failure.
			render.JSON(w, r, response.StatusOKWithData([]*models.Reply{}))
			return
		}
		log.Error("failed to list reply rules", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list reply rules"))
		return
	}

	log.Info("reply rules listed", slog.Int("count", len(rules)))
	render.JSON(w, r, response.StatusOKWithData(rules))
}
