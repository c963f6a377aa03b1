package handler

import (
	"log/slog"

	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// SessionHandler switches the process between anonymous and signed-in storage
type SessionHandler struct {
	sessionService service.SessionService
	logger         *slog.Logger
}

func NewSessionHandler(logger *slog.Logger, sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

func (h *SessionHandler) Current(c *gin.Context) {
	id, err := h.sessionService.Current(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, sessionResponse(id))
}

func (h *SessionHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	id, err := h.sessionService.SignIn(c.Request.Context(), req.Token)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, sessionResponse(id))
}

func (h *SessionHandler) SignOut(c *gin.Context) {
	if err := h.sessionService.SignOut(c.Request.Context()); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, sessionResponse(identity.Anonymous))
}

func sessionResponse(id identity.Identity) SessionResponse {
	backend := "remote"
	if id.IsAnonymous() {
		backend = "local"
	}
	return SessionResponse{UserID: id.UserID, Anonymous: id.IsAnonymous(), Backend: backend}
}
