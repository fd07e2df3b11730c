// Package update implements the HTTP handler rewriting an existing
// reply rule in place.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/http/response"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/services/replies"
)

// Handler serves rule updates.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the business-logic surface of rule updates.
type Service interface {
	Update(ctx context.Context, userUID string, id int, req models.DummyReply) error
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
// @Summary Update a reply rule
// @Description Rewrites the rule with the given id.
// @Tags Replies
// @Accept  json
// @Produce  json
// @Param id path int true "Rule id"
// @Param request body models.DummyReply true "Rule data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Malformed request"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "Rule not found"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /replies/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reply.update"
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

	var req models.DummyReply
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

	err = h.service.Update(r.Context(), sess.UserUID, id, req)
	switch {
	case errors.Is(err, replies.ErrRuleNotFound), errors.Is(err, replies.ErrNoAccount):
		log.Error("rule not found", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("reply rule not found"))
		return
	case err != nil:
		log.Error("failed to update reply rule", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update reply rule"))
		return
	}

	log.Info("reply rule updated", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
