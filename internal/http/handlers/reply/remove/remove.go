// Package remove implements the HTTP handler deleting a reply rule.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/http/response"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/services/replies"
)

// Handler serves rule removal.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business-logic surface of rule removal.
type Service interface {
	Remove(ctx context.Context, userUID string, id int) error
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Delete a reply rule
// @Description Deletes the rule with the given id.
// @Tags Replies
// @Produce  json
// @Param id path int true "Rule id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Bad rule id"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "Rule not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /replies/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reply.remove"
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

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid rule id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid rule id"))
		return
	}

	err = h.service.Remove(r.Context(), sess.UserUID, id)
	switch {
	case errors.Is(err, replies.ErrRuleNotFound), errors.Is(err, replies.ErrNoAccount):
		log.Error("rule not found", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("reply rule not found"))
		return
	case err != nil:
		log.Error("failed to remove reply rule", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove reply rule"))
		return
	}

	log.Info("reply rule removed", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
