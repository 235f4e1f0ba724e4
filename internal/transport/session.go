package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/mcoot/ccpubsub/internal/model"
)

// State is the lifecycle state of a Session
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Handler receives lifecycle and message callbacks. All callbacks run on
// the goroutine that called Run, one at a time.
type Handler interface {
	OnOpen(ctx context.Context)
	OnMessage(ctx context.Context, data []byte)
}

// Config holds settings for a Session
type Config struct {
	// URL is the websocket endpoint (ws:// or wss://)
	URL string
	// UserAgent identifies the client application to the service
	UserAgent string
	// ReadLimit caps the size of a single inbound frame
	ReadLimit int64
	// WriteTimeout bounds a single Send
	WriteTimeout time.Duration
	// HTTPClient is used for the handshake. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

// DefaultConfig returns sensible defaults for a Session
func DefaultConfig() Config {
	return Config{
		URL:          "wss://pubsub.crowdcontrol.live/",
		UserAgent:    "Super Example Game 65",
		ReadLimit:    1 << 20,
		WriteTimeout: 10 * time.Second,
	}
}

// Session owns one persistent websocket connection. It never reconnects:
// once Closed or Errored it stays that way.
type Session struct {
	cfg    Config
	logger *slog.Logger

	state atomic.Int32

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a Session; nothing is dialed until Run
func New(cfg Config, logger *slog.Logger) *Session {
	defaults := DefaultConfig()
	if cfg.ReadLimit == 0 {
		cfg.ReadLimit = defaults.ReadLimit
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	return &Session{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "transport")),
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return State(s.state.Load())
}

// Run dials the endpoint, then delivers OnOpen and every inbound frame to
// the handler until the connection ends. It returns nil when the connection
// closed normally or ctx was cancelled, and the transport error otherwise.
func (s *Session) Run(ctx context.Context, handler Handler) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateConnecting)) {
		return fmt.Errorf("session already used (state %s)", s.State())
	}

	s.logger.Info("connecting", slog.String("url", s.cfg.URL))

	header := http.Header{}
	if s.cfg.UserAgent != "" {
		header.Set("User-Agent", s.cfg.UserAgent)
	}

	conn, resp, err := websocket.Dial(ctx, s.cfg.URL, &websocket.DialOptions{
		HTTPClient: s.cfg.HTTPClient,
		HTTPHeader: header,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return s.fail(fmt.Errorf("dial failed: %w", err))
	}
	conn.SetReadLimit(s.cfg.ReadLimit)

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.state.Store(int32(StateOpen))

	s.logger.Info("connected")
	handler.OnOpen(ctx)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return s.finish(ctx, err)
		}
		handler.OnMessage(ctx, data)
	}
}

// Send writes one text frame. It returns ErrNotOpen when the connection is
// not open.
func (s *Session) Send(ctx context.Context, data []byte) error {
	if s.State() != StateOpen {
		return model.ErrNotOpen
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	writeCtx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// Close performs a graceful close handshake. Closing a session that never
// opened is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	if !s.state.CompareAndSwap(int32(StateOpen), int32(StateClosed)) {
		return nil
	}

	s.logger.Info("closing connection")
	err := conn.Close(websocket.StatusNormalClosure, "client shutting down")
	if err != nil && !isNormalClose(err) {
		return err
	}
	return nil
}

func (s *Session) finish(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		s.state.Store(int32(StateClosed))
		s.logger.Info("connection cancelled")
		return nil
	case isNormalClose(err), s.State() == StateClosed:
		s.state.Store(int32(StateClosed))
		s.logger.Info("connection closed", slog.Int("status", int(websocket.CloseStatus(err))))
		return nil
	default:
		return s.fail(err)
	}
}

func (s *Session) fail(err error) error {
	s.state.Store(int32(StateErrored))
	s.logger.Error("connection error", slog.String("error", err.Error()))
	return err
}

func isNormalClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}
