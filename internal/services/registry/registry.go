package registry

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/ccpubsub/internal/dependencies/clock"
	"github.com/mcoot/ccpubsub/internal/dependencies/random"
	"github.com/mcoot/ccpubsub/internal/model"
)

// GameSession is a session tracked by the mock service
type GameSession struct {
	ID         string
	SubjectID  string
	GamePackID string
	StartedAt  time.Time
	StoppedAt  time.Time
}

// Active reports whether the session has not been stopped
func (g GameSession) Active() bool {
	return g.StoppedAt.IsZero()
}

// Registry tracks game sessions per subject
type Registry struct {
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*GameSession
}

// New creates an empty Registry
func New(clk clock.Clock, rnd random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "registry")),
		sessions: make(map[string]*GameSession),
	}
}

// Start opens a new session for a subject
func (r *Registry) Start(subjectID, gamePackID string) GameSession {
	session := &GameSession{
		ID:         r.random.NewID(),
		SubjectID:  subjectID,
		GamePackID: gamePackID,
		StartedAt:  r.clock.Now(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	r.logger.Info("game session started",
		slog.String("game_session_id", session.ID),
		slog.String("subject_id", subjectID),
		slog.String("game_pack_id", gamePackID))
	return *session
}

// Stop closes a session owned by subjectID. Stopping a stopped session is
// a no-op; a session that does not exist or belongs to someone else is
// ErrSessionNotFound.
func (r *Registry) Stop(subjectID, gameSessionID string) (GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[gameSessionID]
	if !ok || session.SubjectID != subjectID {
		return GameSession{}, model.ErrSessionNotFound
	}
	if session.Active() {
		session.StoppedAt = r.clock.Now()
		r.logger.Info("game session stopped",
			slog.String("game_session_id", gameSessionID),
			slog.String("subject_id", subjectID))
	}
	return *session, nil
}

// Get returns a session by id
func (r *Registry) Get(gameSessionID string) (GameSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[gameSessionID]
	if !ok {
		return GameSession{}, model.ErrSessionNotFound
	}
	return *session, nil
}

// List returns every session, oldest first
func (r *Registry) List() []GameSession {
	r.mu.RLock()
	out := make([]GameSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, *session)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}
