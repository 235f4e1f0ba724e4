package wire

import (
	"encoding/json"

	"github.com/mcoot/ccpubsub/internal/model"
)

// Inbound event envelope
type eventEnvelope struct {
	Domain  model.Domain    `json:"domain"`
	Type    model.EventType `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound request envelope
type requestEnvelope struct {
	Action model.Action    `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type subscribeData struct {
	Topics []string `json:"topics"`
}

type rpcData struct {
	Token string   `json:"token"`
	Call  callData `json:"call"`
}

type callData struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Method model.Method    `json:"method"`
	Args   json.RawMessage `json:"args"`
}

const callType = "call"

type effectResponseArg struct {
	ID            string             `json:"id"`
	Request       string             `json:"request"`
	Status        model.EffectStatus `json:"status"`
	Message       string             `json:"message"`
	Stamp         float64            `json:"stamp"`
	TimeRemaining *int64             `json:"timeRemaining,omitempty"`
}

type effectReportArg struct {
	ID             string               `json:"id"`
	Stamp          float64              `json:"stamp"`
	IdentifierType model.IdentifierType `json:"identifierType,omitempty"`
	IDs            []string             `json:"ids"`
	Status         model.ReportStatus   `json:"status"`
}
