package pubsub

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/ccpubsub/internal/dependencies/clock"
	"github.com/mcoot/ccpubsub/internal/dependencies/random"
	"github.com/mcoot/ccpubsub/internal/model"
	"github.com/mcoot/ccpubsub/internal/wire"
)

// TokenVerifier checks bearer tokens carried by rpc requests
type TokenVerifier interface {
	Verify(token string) (model.Claims, error)
}

// RecordedCall is an rpc call received from a connection
type RecordedCall struct {
	ConnectionID string
	SubjectID    string
	Call         model.RPCCall
	Frame        []byte
	ReceivedAt   time.Time
}

// Hub tracks websocket connections, their topic subscriptions and the rpc
// calls they make
type Hub struct {
	verifier TokenVerifier
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	mu       sync.RWMutex
	conns    map[string]*Conn
	calls    []RecordedCall
	retained map[string][]byte
}

// NewHub creates a new Hub
func NewHub(verifier TokenVerifier, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Hub {
	return &Hub{
		verifier: verifier,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "pubsub")),
		conns:    make(map[string]*Conn),
		retained: make(map[string][]byte),
	}
}

// NewConn creates a connection with a fresh id. It receives nothing until
// registered.
func (h *Hub) NewConn() *Conn {
	return &Conn{
		id:          h.random.NewID(),
		send:        make(chan []byte, sendBufferSize),
		topics:      make(map[string]bool),
		connectedAt: h.clock.Now(),
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(conn *Conn) {
	h.mu.Lock()
	h.conns[conn.id] = conn
	count := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("connection registered",
		slog.String("connection_id", conn.id),
		slog.Int("total_connections", count))
}

// Unregister removes a connection and closes its send channel
func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	current, ok := h.conns[conn.id]
	if !ok || current != conn {
		h.mu.Unlock()
		return
	}
	delete(h.conns, conn.id)
	close(conn.send)
	count := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("connection unregistered",
		slog.String("connection_id", conn.id),
		slog.Duration("connection_duration", h.clock.Now().Sub(conn.connectedAt)),
		slog.Int("total_connections", count))
}

// Close disconnects every connection
func (h *Hub) Close() {
	h.mu.Lock()
	count := len(h.conns)
	for id, conn := range h.conns {
		close(conn.send)
		delete(h.conns, id)
	}
	h.mu.Unlock()

	h.logger.Info("hub stopped", slog.Int("disconnected_connections", count))
}

// ConnectionCount returns the number of registered connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Login completes a pending login by pushing login-success with token to
// the connection
func (h *Hub) Login(connectionID, token string) error {
	data, err := wire.EncodeEvent(model.LoginSuccessEvent{Token: token})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.conns[connectionID]
	if !ok {
		return model.ErrConnectionNotFound
	}
	h.enqueue(conn, data)
	return nil
}

// Publish delivers an event to every connection subscribed to topic and
// returns how many received it
func (h *Hub) Publish(topic string, event model.Event) (int, error) {
	return h.publish(topic, event, false)
}

// PublishRetained publishes an event and keeps it for the topic: later
// subscribers receive it right after their subscription result. It
// replaces any event retained earlier.
func (h *Hub) PublishRetained(topic string, event model.Event) (int, error) {
	return h.publish(topic, event, true)
}

// Forget drops the event retained for a topic
func (h *Hub) Forget(topic string) {
	h.mu.Lock()
	delete(h.retained, topic)
	h.mu.Unlock()
}

func (h *Hub) publish(topic string, event model.Event, retain bool) (int, error) {
	data, err := wire.EncodeEvent(event)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if retain {
		h.retained[topic] = data
	}

	delivered := 0
	for _, conn := range h.conns {
		if !conn.topics[topic] {
			continue
		}
		if h.enqueue(conn, data) {
			delivered++
		}
	}

	h.logger.Info("event published",
		slog.String("topic", topic),
		slog.String("event", event.Key().String()),
		slog.Int("delivered", delivered))
	return delivered, nil
}

// Calls returns every rpc call received so far, oldest first
func (h *Hub) Calls() []RecordedCall {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]RecordedCall(nil), h.calls...)
}

// Handle reacts to one frame from a connection. Malformed requests are
// logged and ignored.
func (h *Hub) Handle(ctx context.Context, conn *Conn, data []byte) {
	req, err := wire.DecodeRequest(data)
	if err != nil {
		h.logger.Warn("ignoring malformed request",
			slog.String("connection_id", conn.id),
			slog.String("error", err.Error()))
		return
	}

	switch r := req.(type) {
	case model.WhoAmIRequest:
		h.reply(conn, model.WhoAmIEvent{ConnectionID: conn.id})
	case model.SubscribeRequest:
		h.subscribe(conn, r.Topics)
	case model.RPCRequest:
		h.record(conn, r, data)
	}
}

// subscribe accepts every topic on the pub domain, replies with the
// result and then replays retained events for the accepted topics
func (h *Hub) subscribe(conn *Conn, topics []string) {
	result := model.SubscriptionResultEvent{Success: []string{}, Failure: []string{}}
	for _, topic := range topics {
		if strings.HasPrefix(topic, "pub/") && len(topic) > len("pub/") {
			result.Success = append(result.Success, topic)
		} else {
			result.Failure = append(result.Failure, topic)
		}
	}
	data, err := wire.EncodeEvent(result)
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	if current, ok := h.conns[conn.id]; ok && current == conn {
		for _, topic := range result.Success {
			conn.topics[topic] = true
		}
		h.enqueue(conn, data)
		for _, topic := range result.Success {
			if retained, ok := h.retained[topic]; ok {
				h.enqueue(conn, retained)
			}
		}
	}
	h.mu.Unlock()

	h.logger.Info("subscription",
		slog.String("connection_id", conn.id),
		slog.Int("success", len(result.Success)),
		slog.Int("failure", len(result.Failure)))
}

func (h *Hub) record(conn *Conn, req model.RPCRequest, frame []byte) {
	claims, err := h.verifier.Verify(req.Token)
	if err != nil {
		h.logger.Warn("rejecting rpc call",
			slog.String("connection_id", conn.id),
			slog.String("method", string(req.Call.Method())),
			slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	h.calls = append(h.calls, RecordedCall{
		ConnectionID: conn.id,
		SubjectID:    claims.SubjectID,
		Call:         req.Call,
		Frame:        append([]byte(nil), frame...),
		ReceivedAt:   h.clock.Now(),
	})
	h.mu.Unlock()

	h.logger.Info("rpc call received",
		slog.String("connection_id", conn.id),
		slog.String("subject_id", claims.SubjectID),
		slog.String("method", string(req.Call.Method())),
		slog.String("call_id", req.Call.CallID()))
}

func (h *Hub) reply(conn *Conn, event model.Event) {
	data, err := wire.EncodeEvent(event)
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if current, ok := h.conns[conn.id]; ok && current == conn {
		h.enqueue(conn, data)
	}
}

// enqueue must be called with h.mu held
func (h *Hub) enqueue(conn *Conn, data []byte) bool {
	select {
	case conn.send <- data:
		return true
	default:
		h.logger.Warn("message dropped - connection buffer full",
			slog.String("connection_id", conn.id))
		return false
	}
}
