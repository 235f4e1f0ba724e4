package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/ccpubsub/internal/api"
	"github.com/mcoot/ccpubsub/internal/api/pubsub"
	"github.com/mcoot/ccpubsub/internal/dependencies/clock"
	"github.com/mcoot/ccpubsub/internal/dependencies/random"
	"github.com/mcoot/ccpubsub/internal/services/auth"
	"github.com/mcoot/ccpubsub/internal/services/credentials"
	"github.com/mcoot/ccpubsub/internal/services/gamesession"
	"github.com/mcoot/ccpubsub/internal/services/protocol"
	"github.com/mcoot/ccpubsub/internal/services/registry"
	"github.com/mcoot/ccpubsub/internal/storage"
	"github.com/mcoot/ccpubsub/internal/storage/file"
	"github.com/mcoot/ccpubsub/internal/storage/memory"
	redisstorage "github.com/mcoot/ccpubsub/internal/storage/redis"
	"github.com/mcoot/ccpubsub/internal/transport"
)

// Storage type constants
const (
	StorageTypeFile   = "file"
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired client components
type App struct {
	// Storage
	Tokens storage.TokenStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Credentials   *credentials.Store
	Transport     *transport.Session
	SessionClient *gamesession.Client
	// Sessions is nil unless a game pack is configured
	Sessions *gamesession.Controller
	Protocol *protocol.Machine

	logger  *slog.Logger
	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the token storage backend ("file", "memory" or "redis")
	// If empty, defaults to "file"
	StorageType string
	// TokenFile is the token path for file storage (optional)
	TokenFile string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Transport configures the websocket connection
	// If the URL is empty, transport.DefaultConfig() is used
	Transport transport.Config
	// Protocol configures the protocol machine
	Protocol protocol.Config
	// GameSession configures the session-management HTTP client
	// If the base URL is empty, gamesession.DefaultClientConfig() is used
	GameSession gamesession.ClientConfig
	// GamePackID enables game session management when set
	GamePackID string
	// Notifier receives protocol milestones (optional)
	// If nil, they are logged
	Notifier protocol.Notifier
}

// NewTokenStore creates the token store selected by cfg. The returned
// closer releases any connection it holds and may be nil.
func NewTokenStore(cfg Config) (storage.TokenStore, io.Closer, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeFile
	}

	switch storageType {
	case StorageTypeFile:
		return file.New(cfg.TokenFile), nil, nil
	case StorageTypeMemory:
		return memory.New(), nil, nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		return redisStore, redisStore, nil
	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be 'file', 'memory' or 'redis'", storageType)
	}
}

// New creates a new client application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = logger

	tokens, closer, err := NewTokenStore(cfg)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(tokens, clock.New(), random.New(), cfg)
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(tokens storage.TokenStore, clk clock.Clock, rnd random.Random, cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	transportCfg := cfg.Transport
	if transportCfg.URL == "" {
		transportCfg = transport.DefaultConfig()
	}
	sessionCfg := cfg.GameSession
	if sessionCfg.BaseURL == "" {
		sessionCfg = gamesession.DefaultClientConfig()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = protocol.NewLogNotifier(logger)
	}

	creds := credentials.New(tokens, logger)
	session := transport.New(transportCfg, logger)
	sessionClient := gamesession.NewClient(sessionCfg)

	var controller *gamesession.Controller
	// a nil *Controller must not become a non-nil SessionController
	var sessions protocol.SessionController
	if cfg.GamePackID != "" {
		controller = gamesession.NewController(sessionClient, creds, cfg.GamePackID, logger)
		sessions = controller
	}

	machine := protocol.New(cfg.Protocol, creds, sessions, session, notifier, clk, rnd, logger)

	return &App{
		Tokens:        tokens,
		Clock:         clk,
		Random:        rnd,
		Credentials:   creds,
		Transport:     session,
		SessionClient: sessionClient,
		Sessions:      controller,
		Protocol:      machine,
		logger:        logger,
	}
}

// Run loads stored credentials and serves the connection until it ends or
// ctx is cancelled. A stored token that cannot be decoded is logged and
// the client continues unauthenticated.
func (a *App) Run(ctx context.Context) error {
	if err := a.Credentials.Load(ctx); err != nil {
		a.logger.Warn("ignoring stored credentials", slog.String("error", err.Error()))
	}
	return a.Transport.Run(ctx, a.Protocol)
}

// Shutdown stops the game session if one is running and closes the
// connection. It reports whether a stop call was issued.
func (a *App) Shutdown(ctx context.Context) bool {
	stopped := false
	if a.Sessions != nil {
		stopped = a.Sessions.Shutdown(ctx)
	}
	if err := a.Transport.Close(); err != nil {
		a.logger.Warn("error closing connection", slog.String("error", err.Error()))
	}
	return stopped
}

// Close releases resources held by the token store
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Mock contains the wired components of the local mock service
type Mock struct {
	Clock    clock.Clock
	Random   random.Random
	Auth     *auth.Service
	Hub      *pubsub.Hub
	Registry *registry.Registry
	Router   http.Handler
}

// MockConfig holds configuration for the mock service
type MockConfig struct {
	// Logger is the service logger (optional)
	Logger *slog.Logger
	// Auth configures token signing
	Auth auth.Config
	// EnableDebug mounts the /debug endpoints
	EnableDebug bool
}

// NewMock creates the mock service with all dependencies wired
func NewMock(cfg MockConfig) *Mock {
	return newMockWithDependencies(clock.New(), random.New(), cfg)
}

func newMockWithDependencies(clk clock.Clock, rnd random.Random, cfg MockConfig) *Mock {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	authService := auth.New(clk, rnd, cfg.Auth)
	hub := pubsub.NewHub(authService, clk, rnd, logger)
	reg := registry.New(clk, rnd, logger)

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: authService,
		Hub:         hub,
		Registry:    reg,
		EnableDebug: cfg.EnableDebug,
	})

	return &Mock{
		Clock:    clk,
		Random:   rnd,
		Auth:     authService,
		Hub:      hub,
		Registry: reg,
		Router:   router,
	}
}
