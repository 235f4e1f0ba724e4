package factory

import (
	"net/http/httptest"
	"strings"
	"time"

	"github.com/mcoot/ccpubsub/internal/dependencies/mocks"
	"github.com/mcoot/ccpubsub/internal/services/gamesession"
	"github.com/mcoot/ccpubsub/internal/storage/memory"
	"github.com/mcoot/ccpubsub/internal/transport"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	Memory     *memory.Storage
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with in-memory token
// storage and mocked dependencies. cfg.StorageType is ignored.
func NewTestApp(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, cfg)

	return &TestApp{
		App:        app,
		Memory:     store,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// TestMock extends Mock with a running HTTP server
type TestMock struct {
	*Mock
	Server *httptest.Server
}

// NewTestMock starts the mock service, with debug endpoints, on a local
// test server. Callers must Close it.
func NewTestMock(cfg MockConfig) *TestMock {
	cfg.EnableDebug = true
	mock := NewMock(cfg)
	return &TestMock{
		Mock:   mock,
		Server: httptest.NewServer(mock.Router),
	}
}

// Close disconnects every client and stops the server
func (m *TestMock) Close() {
	m.Hub.Close()
	m.Server.Close()
}

// URL returns the websocket URL of the pub/sub endpoint
func (m *TestMock) URL() string {
	return "ws" + strings.TrimPrefix(m.Server.URL, "http") + "/"
}

// ClientConfig returns a client Config pointed at this mock
func (m *TestMock) ClientConfig() Config {
	transportCfg := transport.DefaultConfig()
	transportCfg.URL = m.URL()

	sessionCfg := gamesession.DefaultClientConfig()
	sessionCfg.BaseURL = m.Server.URL

	return Config{
		Transport:   transportCfg,
		GameSession: sessionCfg,
	}
}
