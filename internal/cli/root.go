package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	envErr error
	out    *Output
	logger *slog.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg, envErr = LoadConfig()
	if envErr != nil {
		cfg = &Config{}
	}

	rootCmd := &cobra.Command{
		Use:   "ccpubsub",
		Short: "Reference client for the Crowd Control pub/sub service",
		Long: `ccpubsub connects to the Crowd Control pub/sub service, logs in, subscribes
to the streamer's topic and acknowledges every effect request it receives.

It can also start and stop game sessions and manage the stored login token.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			logger = cfg.Logger(cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.URL, "url", cfg.URL, "Pub/sub websocket URL (env: CCPUBSUB_URL)")
	flags.StringVar(&cfg.AuthURL, "auth-url", cfg.AuthURL, "Login page URL (env: CCPUBSUB_AUTH_URL)")
	flags.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Session API base URL (env: CCPUBSUB_API_URL)")
	flags.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent sent to the service (env: CCPUBSUB_USER_AGENT)")
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "Token storage: file, memory, redis (env: CCPUBSUB_STORAGE)")
	flags.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: CCPUBSUB_TOKEN_FILE)")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for redis storage (env: CCPUBSUB_REDIS_URL)")
	flags.StringVar(&cfg.RedisProfile, "redis-profile", cfg.RedisProfile, "Redis key namespace (env: CCPUBSUB_REDIS_PROFILE)")
	flags.StringVar(&cfg.GamePackID, "game-pack", cfg.GamePackID, "Game pack ID; enables game sessions (env: CCPUBSUB_GAME_PACK)")
	flags.StringSliceVar(&cfg.HiddenEffects, "hide-effect", cfg.HiddenEffects, "Effect ID to hide from the menu, repeatable (env: CCPUBSUB_HIDE_EFFECTS)")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Bound on the shutdown stop call (env: CCPUBSUB_SHUTDOWN_TIMEOUT)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newCredsCmd())
	rootCmd.AddCommand(newSessionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
