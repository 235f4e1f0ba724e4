package response

import (
	"encoding/json"
	"time"

	"github.com/mcoot/ccpubsub/internal/api/pubsub"
	"github.com/mcoot/ccpubsub/internal/services/registry"
)

// LoginResponse is the response for a completed login
type LoginResponse struct {
	ConnectionID string `json:"connectionID"`
	SubjectID    string `json:"ccUID"`
	Name         string `json:"name"`
	Token        string `json:"token"`
}

// StartSessionResponse is the response for a started game session
type StartSessionResponse struct {
	GameSessionID string `json:"gameSessionID"`
}

// PublishResponse reports how many connections received an event
type PublishResponse struct {
	Delivered int `json:"delivered"`
}

// Call represents a recorded rpc call in API responses
type Call struct {
	ConnectionID string          `json:"connectionID"`
	SubjectID    string          `json:"ccUID"`
	Method       string          `json:"method"`
	CallID       string          `json:"callID"`
	ReceivedAt   time.Time       `json:"receivedAt"`
	Request      json.RawMessage `json:"request"`
}

// CallFromRecord converts a recorded call to a response Call
func CallFromRecord(c pubsub.RecordedCall) Call {
	return Call{
		ConnectionID: c.ConnectionID,
		SubjectID:    c.SubjectID,
		Method:       string(c.Call.Method()),
		CallID:       c.Call.CallID(),
		ReceivedAt:   c.ReceivedAt,
		Request:      json.RawMessage(c.Frame),
	}
}

// CallsResponse lists recorded rpc calls
type CallsResponse struct {
	Calls []Call `json:"calls"`
}

// Session represents a game session in API responses
type Session struct {
	GameSessionID string     `json:"gameSessionID"`
	SubjectID     string     `json:"ccUID"`
	GamePackID    string     `json:"gamePackID"`
	StartedAt     time.Time  `json:"startedAt"`
	StoppedAt     *time.Time `json:"stoppedAt,omitempty"`
}

// SessionFromModel converts a registry session to a response Session
func SessionFromModel(s registry.GameSession) Session {
	out := Session{
		GameSessionID: s.ID,
		SubjectID:     s.SubjectID,
		GamePackID:    s.GamePackID,
		StartedAt:     s.StartedAt,
	}
	if !s.Active() {
		stopped := s.StoppedAt
		out.StoppedAt = &stopped
	}
	return out
}

// SessionsResponse lists game sessions
type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}
