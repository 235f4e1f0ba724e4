package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/ccpubsub/internal/api/middleware"
	"github.com/mcoot/ccpubsub/internal/api/pubsub"
	"github.com/mcoot/ccpubsub/internal/api/request"
	"github.com/mcoot/ccpubsub/internal/api/response"
	"github.com/mcoot/ccpubsub/internal/model"
	"github.com/mcoot/ccpubsub/internal/services/registry"
)

// SessionHandler handles game session endpoints
type SessionHandler struct {
	registry *registry.Registry
	hub      *pubsub.Hub
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *registry.Registry, hub *pubsub.Hub, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		hub:      hub,
		logger:   logger,
	}
}

// Start handles POST /game-session/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims := middleware.MustGetClaims(r.Context())

	var req request.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.GamePackID == "" {
		WriteError(w, NewInvalidRequestError("gamePackID is required"))
		return
	}

	session := h.registry.Start(claims.SubjectID, req.GamePackID)
	// retained so a client whose subscription lands after this call still
	// learns its session handle
	h.announce(claims.SubjectID, model.GameSessionStartEvent{GameSessionID: session.ID}, true)

	response.JSON(w, http.StatusOK, response.StartSessionResponse{GameSessionID: session.ID})
}

// Stop handles POST /game-session/stop
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	claims := middleware.MustGetClaims(r.Context())

	var req request.StopSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.GameSessionID == "" {
		WriteError(w, NewInvalidRequestError("gameSessionID is required"))
		return
	}

	if _, err := h.registry.Stop(claims.SubjectID, req.GameSessionID); err != nil {
		WriteError(w, err)
		return
	}
	h.announce(claims.SubjectID, model.GameSessionStopEvent{GameSessionID: req.GameSessionID}, false)

	response.NoContent(w)
}

func (h *SessionHandler) announce(subjectID string, event model.Event, retain bool) {
	topic := model.UserTopic(subjectID)

	var err error
	if retain {
		_, err = h.hub.PublishRetained(topic, event)
	} else {
		h.hub.Forget(topic)
		_, err = h.hub.Publish(topic, event)
	}
	if err != nil {
		h.logger.Error("failed to publish session event",
			slog.String("event", event.Key().String()),
			slog.String("error", err.Error()))
	}
}
