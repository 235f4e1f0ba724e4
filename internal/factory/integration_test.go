package factory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/ccpubsub/internal/api/response"
	"github.com/mcoot/ccpubsub/internal/model"
	storageredis "github.com/mcoot/ccpubsub/internal/storage/redis"
	"github.com/mcoot/ccpubsub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
)

const waitFor = 5 * time.Second

// channelNotifier forwards notifications so tests can wait on them
type channelNotifier struct {
	authURLs   chan string
	subscribed chan model.SubscriptionResultEvent
	effects    chan string
}

func newChannelNotifier() *channelNotifier {
	return &channelNotifier{
		authURLs:   make(chan string, 8),
		subscribed: make(chan model.SubscriptionResultEvent, 8),
		effects:    make(chan string, 8),
	}
}

func (n *channelNotifier) AuthenticationRequired(url string) { n.authURLs <- url }

func (n *channelNotifier) Subscribed(name string, result model.SubscriptionResultEvent) {
	n.subscribed <- result
}

func (n *channelNotifier) EffectRequested(effectName, requester string) {
	n.effects <- effectName + " by " + requester
}

type IntegrationSuite struct {
	suite.Suite
	mock     *TestMock
	notifier *channelNotifier
	app      *TestApp
	ctx      context.Context
	cancel   context.CancelFunc
	runErr   chan error
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.mock = NewTestMock(MockConfig{Logger: testutil.NopLogger()})
	s.notifier = newChannelNotifier()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.runErr = make(chan error, 1)
}

func (s *IntegrationSuite) TearDownTest() {
	s.cancel()
	s.mock.Close()
}

func (s *IntegrationSuite) startClient(gamePackID string) {
	cfg := s.mock.ClientConfig()
	cfg.Notifier = s.notifier
	cfg.GamePackID = gamePackID
	cfg.Protocol.AuthURL = s.mock.Server.URL + "/auth"
	cfg.Logger = testutil.NopLogger()

	s.app = NewTestApp(cfg)
	go func() { s.runErr <- s.app.Run(s.ctx) }()
}

func receive[T any](s *IntegrationSuite, ch chan T) T {
	s.T().Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		s.FailNow("timed out waiting for notification")
		var zero T
		return zero
	}
}

// login completes the login prompted by whoami and returns the subject
func (s *IntegrationSuite) login(name string) response.LoginResponse {
	authURL := receive(s, s.notifier.authURLs)
	s.Require().True(strings.HasPrefix(authURL, s.mock.Server.URL+"/auth?connectionID="), authURL)

	resp, err := http.Get(authURL + "&name=" + name)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var login response.LoginResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&login))
	return login
}

func (s *IntegrationSuite) publishEffect(topic, requestID string) {
	body := `{"topic":"` + topic + `","type":"effect-request","payload":{` +
		`"effect":{"effectID":"kill","type":"game","name":{"public":"Kill Player","sort":"kill"}},` +
		`"requester":{"ccUID":"viewer","name":"Viewer","profile":"twitch"},` +
		`"requestID":"` + requestID + `"}}`

	req := httptest.NewRequest(http.MethodPost, "/debug/publish", strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.mock.Router.ServeHTTP(rr, req)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
}

func (s *IntegrationSuite) effectResponses() []model.EffectResponseCall {
	var out []model.EffectResponseCall
	for _, call := range s.mock.Hub.Calls() {
		if c, ok := call.Call.(model.EffectResponseCall); ok {
			out = append(out, c)
		}
	}
	return out
}

// Test: first run logs in, subscribes and acknowledges an effect request
func (s *IntegrationSuite) TestLoginSubscribeAndAcknowledge() {
	s.startClient("")

	login := s.login("Streamer")

	result := receive(s, s.notifier.subscribed)
	s.Equal([]string{"pub/" + login.SubjectID}, result.Success)

	saved, err := s.app.Memory.LoadToken(s.ctx)
	s.Require().NoError(err)
	s.Equal(login.Token, saved)

	s.publishEffect("pub/"+login.SubjectID, "R1")
	s.Equal("Kill Player by Viewer", receive(s, s.notifier.effects))

	s.Eventually(func() bool { return len(s.effectResponses()) == 1 }, waitFor, 10*time.Millisecond)
	call := s.effectResponses()[0]
	s.Equal("R1", call.Arg.Request)
	s.Equal(model.StatusSuccess, call.Arg.Status)
	s.Empty(call.Arg.Message)
	s.NotEqual("R1", call.Arg.ID)

	s.False(s.app.Shutdown(context.Background()), "no game pack, no stop call")
	s.NoError(receive(s, s.runErr))
}

// Test: a stored token skips whoami and subscribes straight away
func (s *IntegrationSuite) TestStoredTokenSkipsLogin() {
	token, claims, err := s.mock.Auth.Issue("cc-stored", "Returning")
	s.Require().NoError(err)

	cfg := s.mock.ClientConfig()
	cfg.Notifier = s.notifier
	cfg.Logger = testutil.NopLogger()
	s.app = NewTestApp(cfg)
	s.Require().NoError(s.app.Memory.SaveToken(s.ctx, token))
	go func() { s.runErr <- s.app.Run(s.ctx) }()

	result := receive(s, s.notifier.subscribed)
	s.Equal([]string{"pub/" + claims.SubjectID}, result.Success)
	s.Empty(s.notifier.authURLs)

	s.cancel()
	s.NoError(receive(s, s.runErr))
}

// Test: a game pack starts a session on login and stops it on shutdown
func (s *IntegrationSuite) TestGameSessionLifecycle() {
	s.startClient("GamePack1")

	login := s.login("Streamer")
	receive(s, s.notifier.subscribed)

	s.Eventually(func() bool {
		_, ok := s.app.Sessions.Handle()
		return ok
	}, waitFor, 10*time.Millisecond)

	sessions := s.mock.Registry.List()
	s.Require().Len(sessions, 1)
	s.Equal(login.SubjectID, sessions[0].SubjectID)
	s.Equal("GamePack1", sessions[0].GamePackID)

	handle, _ := s.app.Sessions.Handle()
	s.Equal(sessions[0].ID, handle)

	s.True(s.app.Shutdown(context.Background()))

	stopped, err := s.mock.Registry.Get(handle)
	s.Require().NoError(err)
	s.False(stopped.Active())
	s.NoError(receive(s, s.runErr))
}

// Test: shutdown before login issues no stop call
func (s *IntegrationSuite) TestShutdownBeforeLogin() {
	s.startClient("GamePack1")
	receive(s, s.notifier.authURLs)

	s.False(s.app.Shutdown(context.Background()))
	s.Empty(s.mock.Registry.List())
	s.NoError(receive(s, s.runErr))
}

// Test: the redis token store is selected and reachable through the factory
func TestNewWithRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)

	redisCfg := storageredis.DefaultConfig()
	redisCfg.URL = "redis://" + mr.Addr()
	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &redisCfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	token := testutil.Token(t, testutil.TokenOptions{SubjectID: "cc-redis"})
	if err := app.Tokens.SaveToken(context.Background(), token); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	if err := app.Credentials.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	creds, ok := app.Credentials.Current()
	if !ok || creds.Claims.SubjectID != "cc-redis" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	if _, err := New(Config{StorageType: "floppy"}); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
	if _, err := New(Config{StorageType: StorageTypeRedis}); err == nil {
		t.Fatal("expected error for redis without config")
	}
}
