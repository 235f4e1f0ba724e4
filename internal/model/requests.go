package model

import (
	"fmt"
	"time"
)

// Action discriminates outbound requests
type Action string

const (
	ActionWhoAmI    Action = "whoami"
	ActionSubscribe Action = "subscribe"
	ActionRPC       Action = "rpc"
)

// Request is an outbound request. The set of implementations is closed.
type Request interface {
	Action() Action
	isRequest()
}

// WhoAmIRequest asks the service to identify the connection
type WhoAmIRequest struct{}

// SubscribeRequest subscribes the connection to topics
type SubscribeRequest struct {
	Topics []string
}

// RPCRequest invokes a remote procedure on behalf of the token's owner
type RPCRequest struct {
	Token string
	Call  RPCCall
}

func (WhoAmIRequest) Action() Action    { return ActionWhoAmI }
func (SubscribeRequest) Action() Action { return ActionSubscribe }
func (RPCRequest) Action() Action       { return ActionRPC }

func (WhoAmIRequest) isRequest()    {}
func (SubscribeRequest) isRequest() {}
func (RPCRequest) isRequest()       {}

// UserTopic returns the private topic for a subject
func UserTopic(subjectID string) string {
	return "pub/" + subjectID
}

// Method discriminates RPC calls
type Method string

const (
	MethodEffectResponse Method = "effectResponse"
	MethodEffectReport   Method = "effectReport"
)

// RPCCall is a remote procedure call. The set of implementations is closed.
type RPCCall interface {
	Method() Method
	CallID() string
	isRPCCall()
}

// EffectResponseCall reports the outcome of a single effect request
type EffectResponseCall struct {
	ID  string
	Arg EffectResponseArg
}

// EffectReportCall reports menu availability for a set of effects
type EffectReportCall struct {
	ID   string
	Args []EffectReportArg
}

func (EffectResponseCall) Method() Method { return MethodEffectResponse }
func (EffectReportCall) Method() Method   { return MethodEffectReport }

func (c EffectResponseCall) CallID() string { return c.ID }
func (c EffectReportCall) CallID() string   { return c.ID }

func (EffectResponseCall) isRPCCall() {}
func (EffectReportCall) isRPCCall()   {}

// EffectStatus is the outcome reported for an effect request
type EffectStatus string

const (
	// Instant outcomes
	StatusSuccess       EffectStatus = "success"
	StatusFailTemporary EffectStatus = "failTemporary"
	StatusFailPermanent EffectStatus = "failPermanent"
	StatusTimedEnd      EffectStatus = "timedEnd"

	// Timed outcomes, which carry the remaining duration
	StatusTimedBegin  EffectStatus = "timedBegin"
	StatusTimedPause  EffectStatus = "timedPause"
	StatusTimedResume EffectStatus = "timedResume"
)

// IsTimed reports whether the status requires a remaining duration
func (s EffectStatus) IsTimed() bool {
	switch s {
	case StatusTimedBegin, StatusTimedPause, StatusTimedResume:
		return true
	}
	return false
}

// Valid reports whether the status is one of the known values
func (s EffectStatus) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailTemporary, StatusFailPermanent, StatusTimedEnd:
		return true
	}
	return s.IsTimed()
}

// EffectResponseArg is the single argument of an effectResponse call
type EffectResponseArg struct {
	ID      string
	Request string
	Status  EffectStatus
	Message string
	Stamp   float64
	// TimeRemaining is only meaningful for timed statuses
	TimeRemaining time.Duration
}

// Validate reports an error when a timed status has negative time remaining
// or an instant status carries any. Zero is valid for a timed status, e.g.
// pausing an effect whose timer has just run out.
func (a EffectResponseArg) Validate() error {
	if !a.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, a.Status)
	}
	if a.Status.IsTimed() && a.TimeRemaining < 0 {
		return fmt.Errorf("%w: %s time remaining is negative", ErrInvalidStatus, a.Status)
	}
	if !a.Status.IsTimed() && a.TimeRemaining != 0 {
		return fmt.Errorf("%w: %s does not take time remaining", ErrInvalidStatus, a.Status)
	}
	return nil
}

// ReportStatus is the menu state reported for effects
type ReportStatus string

const (
	ReportMenuVisible     ReportStatus = "menuVisible"
	ReportMenuHidden      ReportStatus = "menuHidden"
	ReportMenuUnavailable ReportStatus = "menuUnavailable"
	ReportMenuAvailable   ReportStatus = "menuAvailable"
)

// IdentifierType says what the IDs of a report refer to
type IdentifierType string

const (
	IdentifierEffect   IdentifierType = "effect"
	IdentifierCategory IdentifierType = "category"
	IdentifierGroup    IdentifierType = "group"
)

// EffectReportArg is one entry of an effectReport call
type EffectReportArg struct {
	ID             string
	Stamp          float64
	IdentifierType IdentifierType // optional
	IDs            []string
	Status         ReportStatus
}

// Stamp converts a time to fractional seconds since the epoch
func Stamp(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}
