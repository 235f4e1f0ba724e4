package gamesession

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/ccpubsub/internal/model"
)

// API is the remote session-management surface the controller drives
type API interface {
	Start(ctx context.Context, token, gamePackID string) (string, error)
	Stop(ctx context.Context, token, gameSessionID string) error
}

// CredentialSource supplies the credentials in effect at shutdown
type CredentialSource interface {
	Current() (model.Credentials, bool)
}

// Controller ties a remote game session to the lifetime of the connection.
// The handle is written by the reaction goroutine and read by the shutdown
// path, so it is guarded.
type Controller struct {
	api        API
	creds      CredentialSource
	gamePackID string
	logger     *slog.Logger

	mu     sync.Mutex
	handle string
}

// NewController creates a new session lifecycle controller
func NewController(api API, creds CredentialSource, gamePackID string, logger *slog.Logger) *Controller {
	return &Controller{
		api:        api,
		creds:      creds,
		gamePackID: gamePackID,
		logger:     logger.With(slog.String("component", "gamesession")),
	}
}

// Begin issues the start call. Failures are logged, not returned: the
// session handle only ever arrives through a game-session-start event.
func (c *Controller) Begin(ctx context.Context, token string) {
	id, err := c.api.Start(ctx, token, c.gamePackID)
	if err != nil {
		c.logger.Error("failed to start game session",
			slog.String("game_pack_id", c.gamePackID),
			slog.String("error", err.Error()))
		return
	}
	c.logger.Info("game session start requested",
		slog.String("game_pack_id", c.gamePackID),
		slog.String("game_session_id", id))
}

// Record stores the session handle announced by the service
func (c *Controller) Record(gameSessionID string) {
	c.mu.Lock()
	c.handle = gameSessionID
	c.mu.Unlock()
	c.logger.Info("game session started", slog.String("game_session_id", gameSessionID))
}

// Handle returns the recorded session handle, if any
func (c *Controller) Handle() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle, c.handle != ""
}

// Shutdown issues exactly one stop call when both credentials and a session
// handle are present, and none otherwise. The outcome of the call is logged
// but not acted on. It reports whether a stop call was issued.
func (c *Controller) Shutdown(ctx context.Context) bool {
	creds, ok := c.creds.Current()
	if !ok {
		c.logger.Debug("no credentials, skipping game session stop")
		return false
	}
	handle, ok := c.Handle()
	if !ok {
		c.logger.Debug("no game session, skipping stop")
		return false
	}

	c.logger.Info("stopping game session", slog.String("game_session_id", handle))
	if err := c.api.Stop(ctx, creds.Token, handle); err != nil {
		c.logger.Error("failed to stop game session",
			slog.String("game_session_id", handle),
			slog.String("error", err.Error()))
	}
	return true
}
