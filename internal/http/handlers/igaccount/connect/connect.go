// Package connect implements the HTTP handler finishing the Instagram
// OAuth flow: the client posts the code it received from the consent
// screen and gets the connected account back.
package connect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/replyflow/replyflow/internal/http/middlewarectx"
	"github.com/replyflow/replyflow/internal/http/response"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
)

// Request carries the OAuth code and the redirect URI it was issued for.
type Request struct {
	Code        string `json:"code" validate:"required"`
	RedirectURI string `json:"redirect_uri" validate:"required,url"`
}

// Handler serves account connection.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the business-logic surface of account connection.
type Service interface {
	Connect(ctx context.Context, userUID, code, redirectURI string) (*models.IGAccount, error)
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
// @Summary Connect an Instagram account
// @Description Exchanges the OAuth code and stores the connection for the caller.
// @Tags Instagram
// @Accept  json
// @Produce  json
// @Param request body Request true "OAuth code"
// @Success 200 {object} response.Response{data=models.IGAccount}
// @Failure 400 {object} response.ErrorResponse "Malformed request"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 502 {object} response.ErrorResponse "Graph API failure"
// @Security BearerAuth
// @Router /instagram/connect [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.igaccount.connect"
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

	account, err := h.service.Connect(r.Context(), sess.UserUID, req.Code, req.RedirectURI)
	if err != nil {
		log.Error("failed to connect account", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not connect instagram account"))
		return
	}

	log.Info("instagram account connected",
		slog.String("user_uid", sess.UserUID),
		slog.String("username", account.Username))
	render.JSON(w, r, response.StatusOKWithData(account))
}
