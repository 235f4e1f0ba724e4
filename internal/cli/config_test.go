package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/ccpubsub/internal/factory"
	"github.com/mcoot/ccpubsub/internal/testutil"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "wss://pubsub.crowdcontrol.live/", c.URL)
	assert.Equal(t, "https://auth.crowdcontrol.live/", c.AuthURL)
	assert.Equal(t, "https://openapi.crowdcontrol.live", c.APIURL)
	assert.Equal(t, "Super Example Game 65", c.UserAgent)
	assert.Equal(t, factory.StorageTypeFile, c.Storage)
	assert.Equal(t, "creds.jwt", c.TokenFile)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "text", c.Output)
	assert.Empty(t, c.GamePackID)
	assert.NoError(t, c.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CCPUBSUB_GAME_PACK", "GamePack1")
	t.Setenv("CCPUBSUB_HIDE_EFFECTS", "kill,heal")
	t.Setenv("CCPUBSUB_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("CCPUBSUB_VERBOSE", "true")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "GamePack1", c.GamePackID)
	assert.Equal(t, []string{"kill", "heal"}, c.HiddenEffects)
	assert.Equal(t, 3*time.Second, c.ShutdownTimeout)
	assert.True(t, c.Verbose)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("CCPUBSUB_SHUTDOWN_TIMEOUT", "soon")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "parse env")
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CCPUBSUB_GAME_PACK", "FromEnv")

	cmd := NewRootCmd()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--game-pack", "FromFlag"}))
	assert.Equal(t, "FromFlag", cfg.GamePackID)
}

func TestFactoryConfig(t *testing.T) {
	c, err := LoadConfig()
	require.NoError(t, err)
	c.URL = "ws://localhost:9000/"
	c.APIURL = "http://localhost:9000"
	c.AuthURL = "http://localhost:9000/auth"
	c.UserAgent = "Test Game"
	c.HiddenEffects = []string{"kill"}
	c.GamePackID = "GamePack1"

	fc := c.FactoryConfig(testutil.NopLogger(), nil)
	assert.Equal(t, "ws://localhost:9000/", fc.Transport.URL)
	assert.Equal(t, "Test Game", fc.Transport.UserAgent)
	assert.Equal(t, "http://localhost:9000", fc.GameSession.BaseURL)
	assert.Equal(t, "Test Game", fc.GameSession.UserAgent)
	assert.Equal(t, "http://localhost:9000/auth", fc.Protocol.AuthURL)
	assert.Equal(t, []string{"kill"}, fc.Protocol.HiddenEffects)
	assert.Equal(t, "GamePack1", fc.GamePackID)
	assert.Nil(t, fc.RedisConfig)
}

func TestFactoryConfigRedis(t *testing.T) {
	c, err := LoadConfig()
	require.NoError(t, err)
	c.Storage = factory.StorageTypeRedis
	c.RedisURL = "redis://cache:6379"
	c.RedisProfile = "streamer-2"

	fc := c.FactoryConfig(testutil.NopLogger(), nil)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://cache:6379", fc.RedisConfig.URL)
	assert.Equal(t, "streamer-2", fc.RedisConfig.Profile)
}

func TestValidate(t *testing.T) {
	c, err := LoadConfig()
	require.NoError(t, err)

	c.ShutdownTimeout = 0
	assert.ErrorContains(t, c.Validate(), "shutdown timeout")
}
