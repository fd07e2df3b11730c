// Package recent implements the HTTP handler returning the latest reply
// rules, newest first. The limit comes from the query string and
// defaults to ten.
package recent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/http/response"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/services/replies"
)

// Handler serves recent-rule listings.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business-logic surface of the recent listing.
type Service interface {
	Recent(ctx context.Context, userUID string, limit int) ([]*models.Reply, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List recent reply rules
// @Description Returns the most recently created reply rules, newest first.
// @Tags Replies
// @Produce  json
// @Param limit query int false "Maximum number of rules" default(10)
// @Success 200 {object} response.Response{data=[]models.Reply}
// @Failure 400 {object} response.ErrorResponse "Bad limit"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /replies/recent [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reply.recent"
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

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			log.Error("invalid limit parameter", slog.String("limit", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid limit"))
			return
		}
		limit = parsed
	}

	rules, err := h.service.Recent(r.Context(), sess.UserUID, limit)
	if err != nil {
		if errors.Is(err, replies.ErrNoAccount) {
			render.JSON(w, r, response.StatusOKWithData([]*models.Reply{}))
			return
		}
		log.Error("failed to list recent reply rules", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list reply rules"))
		return
	}

	log.Info("recent reply rules listed", slog.Int("count", len(rules)))
	render.JSON(w, r, response.StatusOKWithData(rules))
}
