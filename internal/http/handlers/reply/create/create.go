// Package create implements the HTTP handler for adding a reply rule.
//
// Handler decodes the JSON rule, validates it, resolves the caller from
// the memoized session and delegates to the replies service. The new
// rule id comes back in the response.
package create

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
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/services/replies"
)

// Handler serves rule creation.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the business-logic surface of rule creation.
type Service interface {
	Create(ctx context.Context, userUID string, req models.DummyReply) (int, error)
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
// @Summary Create a reply rule
// @Description Adds a keyword-triggered auto-reply rule for the caller's connected account.
// @Tags Replies
// @Accept  json
// @Produce  json
// @Param request body models.DummyReply true "Rule data"
// @Success 201 {object} map[string]any "Created rule id"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /replies [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reply.create"
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

	id, err := h.service.Create(r.Context(), sess.UserUID, req)
	if err != nil {
		if errors.Is(err, replies.ErrNoAccount) {
			log.Error("no connected account")
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("no connected instagram account"))
			return
		}
		log.Error("failed to create reply rule", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create reply rule"))
		return
	}

	log.Info("reply rule created", slog.Int("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}
