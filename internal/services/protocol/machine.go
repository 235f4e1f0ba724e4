package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/mcoot/ccpubsub/internal/dependencies/clock"
	"github.com/mcoot/ccpubsub/internal/dependencies/random"
	"github.com/mcoot/ccpubsub/internal/model"
	"github.com/mcoot/ccpubsub/internal/wire"
)

// Sender delivers encoded frames to the service
type Sender interface {
	Send(ctx context.Context, data []byte) error
}

// Notifier surfaces protocol milestones to the operator
type Notifier interface {
	// AuthenticationRequired prompts the operator to log in at url
	AuthenticationRequired(url string)
	// Subscribed reports the outcome of the topic subscription
	Subscribed(name string, result model.SubscriptionResultEvent)
	// EffectRequested reports an incoming effect request
	EffectRequested(effectName, requester string)
}

// CredentialStore holds the credentials the machine authenticates with
type CredentialStore interface {
	Current() (model.Credentials, bool)
	Set(ctx context.Context, token string) error
}

// SessionController manages the remote game session. It is optional; a
// machine without one never starts sessions.
type SessionController interface {
	Begin(ctx context.Context, token string)
	Record(gameSessionID string)
}

// Config holds protocol settings
type Config struct {
	// AuthURL is the page operators visit to complete a login
	AuthURL string
	// HiddenEffects are reported as hidden from the menu once subscribed
	HiddenEffects []string
}

// DefaultConfig returns sensible defaults for the protocol
func DefaultConfig() Config {
	return Config{
		AuthURL: "https://auth.crowdcontrol.live/",
	}
}

type eventHandler func(ctx context.Context, event model.Event)

// Machine reacts to connection lifecycle and inbound events. Its callbacks
// are driven by a single goroutine.
type Machine struct {
	cfg      Config
	creds    CredentialStore
	sessions SessionController
	sender   Sender
	notifier Notifier
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	// preAuth handlers run for every event; postAuth handlers only once
	// credentials are present
	preAuth  map[model.EventKey]eventHandler
	postAuth map[model.EventKey]eventHandler
}

// New creates a Machine. sessions may be nil.
func New(
	cfg Config,
	creds CredentialStore,
	sessions SessionController,
	sender Sender,
	notifier Notifier,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Machine {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultConfig().AuthURL
	}
	m := &Machine{
		cfg:      cfg,
		creds:    creds,
		sessions: sessions,
		sender:   sender,
		notifier: notifier,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "protocol")),
	}

	m.preAuth = map[model.EventKey]eventHandler{
		model.KeyWhoAmI:           m.handleWhoAmI,
		model.KeyLoginSuccess:     m.handleLoginSuccess,
		model.KeyGameSessionStart: m.handleGameSessionStart,
	}
	m.postAuth = map[model.EventKey]eventHandler{
		model.KeySubscriptionResult: m.handleSubscriptionResult,
		model.KeyGameSessionStop:    m.handleGameSessionStop,
		model.KeyEffectRequest:      m.handleEffectRequest,
	}
	return m
}

// OnOpen starts the handshake once the connection is open
func (m *Machine) OnOpen(ctx context.Context) {
	if _, ok := m.creds.Current(); ok {
		m.authenticatedEntry(ctx)
		return
	}
	m.send(ctx, model.WhoAmIRequest{})
}

// OnMessage decodes and dispatches one inbound frame. Frames that do not
// decode are dropped.
func (m *Machine) OnMessage(ctx context.Context, data []byte) {
	event, ok := wire.Decode(data)
	if !ok {
		m.logger.Debug("dropping undecodable frame", slog.Int("size", len(data)))
		return
	}
	key := event.Key()
	m.logger.Debug("received event", slog.String("event", key.String()))

	if handle, ok := m.preAuth[key]; ok {
		handle(ctx, event)
	}

	if _, ok := m.creds.Current(); !ok {
		return
	}

	if handle, ok := m.postAuth[key]; ok {
		handle(ctx, event)
	}
}

// authenticatedEntry subscribes to the user's topic and, when a session
// controller is configured, starts a game session. Running it again with
// the same credentials repeats the same requests.
func (m *Machine) authenticatedEntry(ctx context.Context) {
	creds, ok := m.creds.Current()
	if !ok {
		return
	}

	m.send(ctx, model.SubscribeRequest{Topics: []string{creds.Topic()}})

	if m.sessions != nil {
		m.sessions.Begin(ctx, creds.Token)
	}
}

func (m *Machine) handleWhoAmI(ctx context.Context, event model.Event) {
	ev := event.(model.WhoAmIEvent)
	if ev.ConnectionID == "" {
		m.logger.Debug("whoami without connection id, not prompting login")
		return
	}

	loginURL, err := m.loginURL(ev.ConnectionID)
	if err != nil {
		m.logger.Error("invalid auth url", slog.String("error", err.Error()))
		return
	}
	m.notifier.AuthenticationRequired(loginURL)
}

func (m *Machine) handleLoginSuccess(ctx context.Context, event model.Event) {
	ev := event.(model.LoginSuccessEvent)

	if err := m.creds.Set(ctx, ev.Token); err != nil {
		if !errors.Is(err, model.ErrPersist) {
			m.logger.Error("login failed", slog.String("error", err.Error()))
			return
		}
		// the credentials are in effect for this run even though saving failed
		m.logger.Warn("login token not saved", slog.String("error", err.Error()))
	}
	m.authenticatedEntry(ctx)
}

func (m *Machine) handleGameSessionStart(ctx context.Context, event model.Event) {
	ev := event.(model.GameSessionStartEvent)
	if m.sessions == nil {
		m.logger.Debug("ignoring game session start", slog.String("game_session_id", ev.GameSessionID))
		return
	}
	m.sessions.Record(ev.GameSessionID)
}

func (m *Machine) handleSubscriptionResult(ctx context.Context, event model.Event) {
	ev := event.(model.SubscriptionResultEvent)

	creds, _ := m.creds.Current()
	m.notifier.Subscribed(creds.Claims.Name, ev)

	if len(m.cfg.HiddenEffects) > 0 {
		if err := m.ReportEffects(ctx, model.ReportMenuHidden, model.IdentifierEffect, m.cfg.HiddenEffects); err != nil {
			m.logger.Warn("failed to report hidden effects", slog.String("error", err.Error()))
		}
	}
}

func (m *Machine) handleGameSessionStop(ctx context.Context, event model.Event) {
	ev := event.(model.GameSessionStopEvent)
	m.logger.Info("game session stopped", slog.String("game_session_id", ev.GameSessionID))
}

func (m *Machine) handleEffectRequest(ctx context.Context, event model.Event) {
	ev := event.(model.EffectRequestEvent)

	effectName := wire.PublicEffectName(ev.Effect.Name)
	m.notifier.EffectRequested(effectName, ev.RequesterName())

	if err := m.RespondEffect(ctx, ev.RequestID, model.StatusSuccess, "", 0); err != nil {
		m.logger.Warn("failed to respond to effect request",
			slog.String("request_id", ev.RequestID),
			slog.String("error", err.Error()))
	}
}

// RespondEffect sends an effectResponse for a request. timeRemaining is
// sent for timed statuses and must be zero otherwise.
func (m *Machine) RespondEffect(ctx context.Context, requestID string, status model.EffectStatus, message string, timeRemaining time.Duration) error {
	creds, ok := m.creds.Current()
	if !ok {
		return model.ErrNotAuthenticated
	}

	arg := model.EffectResponseArg{
		ID:            m.random.NewID(),
		Request:       requestID,
		Status:        status,
		Message:       message,
		Stamp:         model.Stamp(m.clock.Now()),
		TimeRemaining: timeRemaining,
	}
	if err := arg.Validate(); err != nil {
		return err
	}

	return m.sendRPC(ctx, model.RPCRequest{
		Token: creds.Token,
		Call:  model.EffectResponseCall{ID: m.random.NewID(), Arg: arg},
	})
}

// ReportEffects sends an effectReport setting the menu status of ids
func (m *Machine) ReportEffects(ctx context.Context, status model.ReportStatus, identifierType model.IdentifierType, ids []string) error {
	creds, ok := m.creds.Current()
	if !ok {
		return model.ErrNotAuthenticated
	}

	arg := model.EffectReportArg{
		ID:             m.random.NewID(),
		Stamp:          model.Stamp(m.clock.Now()),
		IdentifierType: identifierType,
		IDs:            ids,
		Status:         status,
	}

	return m.sendRPC(ctx, model.RPCRequest{
		Token: creds.Token,
		Call:  model.EffectReportCall{ID: m.random.NewID(), Args: []model.EffectReportArg{arg}},
	})
}

func (m *Machine) sendRPC(ctx context.Context, req model.RPCRequest) error {
	data, err := wire.Encode(req)
	if err != nil {
		return fmt.Errorf("failed to encode %s call: %w", req.Call.Method(), err)
	}
	if err := m.sender.Send(ctx, data); err != nil {
		return fmt.Errorf("failed to send %s call: %w", req.Call.Method(), err)
	}
	return nil
}

// send encodes and sends a request, logging and dropping failures
func (m *Machine) send(ctx context.Context, req model.Request) {
	data, err := wire.Encode(req)
	if err != nil {
		m.logger.Error("failed to encode request",
			slog.String("action", string(req.Action())),
			slog.String("error", err.Error()))
		return
	}
	if err := m.sender.Send(ctx, data); err != nil {
		m.logger.Warn("failed to send request",
			slog.String("action", string(req.Action())),
			slog.String("error", err.Error()))
		return
	}
	m.logger.Debug("sent request", slog.String("action", string(req.Action())))
}

func (m *Machine) loginURL(connectionID string) (string, error) {
	u, err := url.Parse(m.cfg.AuthURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("connectionID", connectionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
