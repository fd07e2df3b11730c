// Package list implements the HTTP handler returning the caller's
// connected Instagram accounts.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/http/response"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
)

// Handler serves account listings.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business-logic surface of account listing.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.IGAccount, error)
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary List connected Instagram accounts
// @Tags Instagram
// @Produce  json
// @Success 200 {object} response.Response{data=[]models.IGAccount}
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /instagram/accounts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.igaccount.list"
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

	accounts, err := h.service.List(r.Context(), sess.UserUID)
	if err != nil {
		log.Error("failed to list accounts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list instagram accounts"))
		return
	}

	log.Info("instagram accounts listed", slog.Int("count", len(accounts)))
	render.JSON(w, r, response.StatusOKWithData(accounts))
}
