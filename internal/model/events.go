package model

// Domain is the first half of an event's discriminator
type Domain string

const (
	// DomainDirect events are scoped to a single connection
	DomainDirect Domain = "direct"
	// DomainPub events are delivered through a subscribed topic
	DomainPub Domain = "pub"
)

// EventType is the second half of an event's discriminator
type EventType string

const (
	// Direct events
	EventWhoAmI             EventType = "whoami"
	EventLoginSuccess       EventType = "login-success"
	EventSubscriptionResult EventType = "subscription-result"

	// Pub events
	EventGameSessionStart EventType = "game-session-start"
	EventGameSessionStop  EventType = "game-session-stop"
	EventEffectRequest    EventType = "effect-request"
)

// EventKey identifies an event variant by its (domain, type) pair
type EventKey struct {
	Domain Domain
	Type   EventType
}

func (k EventKey) String() string {
	return string(k.Domain) + "/" + string(k.Type)
}

// Keys for every known event variant
var (
	KeyWhoAmI             = EventKey{DomainDirect, EventWhoAmI}
	KeyLoginSuccess       = EventKey{DomainDirect, EventLoginSuccess}
	KeySubscriptionResult = EventKey{DomainDirect, EventSubscriptionResult}
	KeyGameSessionStart   = EventKey{DomainPub, EventGameSessionStart}
	KeyGameSessionStop    = EventKey{DomainPub, EventGameSessionStop}
	KeyEffectRequest      = EventKey{DomainPub, EventEffectRequest}
)

// Event is an inbound notification. The set of implementations is closed;
// each one corresponds to exactly one EventKey.
type Event interface {
	Key() EventKey
	isEvent()
}

// WhoAmIEvent answers a whoami request with the connection's identifier
type WhoAmIEvent struct {
	ConnectionID string `json:"connectionID"`
}

// LoginSuccessEvent carries a freshly issued bearer token
type LoginSuccessEvent struct {
	Token string `json:"token"`
}

// SubscriptionResultEvent reports which topics were subscribed
type SubscriptionResultEvent struct {
	Success []string `json:"success"`
	Failure []string `json:"failure"`
}

// GameSessionStartEvent announces a newly started game session
type GameSessionStartEvent struct {
	GameSessionID string `json:"gameSessionID"`
}

// GameSessionStopEvent announces that a game session ended
type GameSessionStopEvent struct {
	GameSessionID string `json:"gameSessionID"`
}

// EffectRequestEvent asks the client to perform an effect
type EffectRequestEvent struct {
	Effect         Effect                     `json:"effect"`
	Target         User                       `json:"target"`
	Origin         *User                      `json:"origin,omitempty"`
	Requester      *User                      `json:"requester,omitempty"`
	SourceDetails  *SourceDetails             `json:"sourceDetails,omitempty"`
	Anonymous      bool                       `json:"anonymous,omitempty"`
	Game           GameRecord                 `json:"game"`
	GamePack       GameRecord                 `json:"gamePack"`
	Parameters     map[string]EffectParameter `json:"parameters,omitempty"`
	Pooled         bool                       `json:"pooled,omitempty"`
	Quantity       int                        `json:"quantity,omitempty"`
	RequestID      string                     `json:"requestID"`
	Timestamp      float64                    `json:"timestamp"`
	Example        bool                       `json:"example,omitempty"`
	LocalTimestamp float64                    `json:"localTimestamp,omitempty"`
}

func (WhoAmIEvent) Key() EventKey             { return KeyWhoAmI }
func (LoginSuccessEvent) Key() EventKey       { return KeyLoginSuccess }
func (SubscriptionResultEvent) Key() EventKey { return KeySubscriptionResult }
func (GameSessionStartEvent) Key() EventKey   { return KeyGameSessionStart }
func (GameSessionStopEvent) Key() EventKey    { return KeyGameSessionStop }
func (EffectRequestEvent) Key() EventKey      { return KeyEffectRequest }

func (WhoAmIEvent) isEvent()             {}
func (LoginSuccessEvent) isEvent()       {}
func (SubscriptionResultEvent) isEvent() {}
func (GameSessionStartEvent) isEvent()   {}
func (GameSessionStopEvent) isEvent()    {}
func (EffectRequestEvent) isEvent()      {}

// RequesterName returns the requester's display name, or a placeholder
// when the request was anonymous or carried no requester
func (e EffectRequestEvent) RequesterName() string {
	if e.Requester == nil || e.Requester.Name == "" {
		return "[unknown user]"
	}
	return e.Requester.Name
}
