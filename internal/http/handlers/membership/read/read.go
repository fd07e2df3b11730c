// Package read implements the HTTP handler returning the membership
// view of a specific user by uid.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/http/response"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
	"github.com/replyflow/replyflow/internal/storage/repository"
)

// Handler serves membership lookups by user uid.
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

// ServeHTTP handles GET /membership/{userID}. Callers may only read
// their own record; asking for someone else's is a 404 rather than a
// hint the uid exists.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.read"
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

	userUID := chi.URLParam(r, "userID")
	if userUID == "" || userUID != sess.UserUID {
		log.Error("membership lookup denied", slog.String("requested_uid", userUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}

	view, err := h.service.View(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
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
