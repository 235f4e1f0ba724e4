package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/ccpubsub/internal/api/pubsub"
	"github.com/mcoot/ccpubsub/internal/api/response"
	"github.com/mcoot/ccpubsub/internal/services/auth"
)

const defaultLoginName = "Mock Streamer"

// AuthHandler completes device logins started by whoami
type AuthHandler struct {
	authService *auth.Service
	hub         *pubsub.Hub
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, hub *pubsub.Hub, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		hub:         hub,
		logger:      logger,
	}
}

// Login handles GET /auth?connectionID=...&name=...&ccUID=...
// It stands in for the interactive login page: the connection is logged
// in immediately as the named user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	connectionID := query.Get("connectionID")
	if connectionID == "" {
		WriteError(w, NewInvalidRequestError("connectionID is required"))
		return
	}
	name := query.Get("name")
	if name == "" {
		name = defaultLoginName
	}

	token, claims, err := h.authService.Issue(query.Get("ccUID"), name)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.hub.Login(connectionID, token); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info("login completed",
		slog.String("connection_id", connectionID),
		slog.String("subject_id", claims.SubjectID))

	response.JSON(w, http.StatusOK, response.LoginResponse{
		ConnectionID: connectionID,
		SubjectID:    claims.SubjectID,
		Name:         claims.Name,
		Token:        token,
	})
}
