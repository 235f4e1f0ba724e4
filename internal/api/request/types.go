package request

import "encoding/json"

// StartSessionRequest is the request body for starting a game session
type StartSessionRequest struct {
	GamePackID string `json:"gamePackID"`
}

// StopSessionRequest is the request body for stopping a game session
type StopSessionRequest struct {
	GameSessionID string `json:"gameSessionID"`
}

// PublishRequest is the request body for publishing a pub event
type PublishRequest struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
