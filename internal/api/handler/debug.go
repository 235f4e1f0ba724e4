package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mcoot/ccpubsub/internal/api/apierr"
	"github.com/mcoot/ccpubsub/internal/api/pubsub"
	"github.com/mcoot/ccpubsub/internal/api/request"
	"github.com/mcoot/ccpubsub/internal/api/response"
	"github.com/mcoot/ccpubsub/internal/model"
	"github.com/mcoot/ccpubsub/internal/services/registry"
	"github.com/mcoot/ccpubsub/internal/wire"
)

// DebugHandler exposes the mock service's internals to tests and developers
type DebugHandler struct {
	hub      *pubsub.Hub
	registry *registry.Registry
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(hub *pubsub.Hub, registry *registry.Registry) *DebugHandler {
	return &DebugHandler{
		hub:      hub,
		registry: registry,
	}
}

// Publish handles POST /debug/publish
func (h *DebugHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req request.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.Topic == "" || req.Type == "" {
		WriteError(w, NewInvalidRequestError("topic and type are required"))
		return
	}

	envelope, err := json.Marshal(map[string]any{
		"domain":  model.DomainPub,
		"type":    req.Type,
		"payload": req.Payload,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	event, ok := wire.Decode(envelope)
	if !ok {
		WriteError(w, apierr.NewUnknownEventError(fmt.Sprintf("cannot publish %q", req.Type)))
		return
	}

	delivered, err := h.hub.Publish(req.Topic, event)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PublishResponse{Delivered: delivered})
}

// Calls handles GET /debug/calls
func (h *DebugHandler) Calls(w http.ResponseWriter, r *http.Request) {
	records := h.hub.Calls()
	calls := make([]response.Call, 0, len(records))
	for _, rec := range records {
		calls = append(calls, response.CallFromRecord(rec))
	}
	response.JSON(w, http.StatusOK, response.CallsResponse{Calls: calls})
}

// Sessions handles GET /debug/sessions
func (h *DebugHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	list := h.registry.List()
	sessions := make([]response.Session, 0, len(list))
	for _, s := range list {
		sessions = append(sessions, response.SessionFromModel(s))
	}
	response.JSON(w, http.StatusOK, response.SessionsResponse{Sessions: sessions})
}
