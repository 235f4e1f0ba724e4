package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/ccpubsub/internal/services/gamesession"
)

var errNotLoggedIn = errors.New("not logged in: run 'ccpubsub run' to log in first")

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start and stop game sessions",
	}

	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionStopCmd())

	return cmd
}

func newSessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [game-pack-id]",
		Short: "Start a game session",
		Long:  "Start a game session for the given game pack, or the one set by --game-pack.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gamePackID := cfg.GamePackID
			if len(args) > 0 {
				gamePackID = args[0]
			}
			if gamePackID == "" {
				return errors.New("a game pack ID is required")
			}

			token, err := storedToken(cmd)
			if err != nil {
				return err
			}

			id, err := sessionClient().Start(cmd.Context(), token, gamePackID)
			if err != nil {
				return err
			}

			out.Print(SessionResult{GameSessionID: id, GamePackID: gamePackID})
			return nil
		},
	}
}

func newSessionStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <game-session-id>",
		Short: "Stop a game session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := storedToken(cmd)
			if err != nil {
				return err
			}

			if err := sessionClient().Stop(cmd.Context(), token, args[0]); err != nil {
				return err
			}

			out.PrintMessage("Game session stopped: " + args[0])
			return nil
		},
	}
}

func storedToken(cmd *cobra.Command) (string, error) {
	store, closer, err := openCredentials(cmd.Context())
	if err != nil {
		return "", err
	}
	defer closeQuietly(closer)

	creds, ok := store.Current()
	if !ok {
		return "", errNotLoggedIn
	}
	return creds.Token, nil
}

func sessionClient() *gamesession.Client {
	return gamesession.NewClient(cfg.FactoryConfig(logger, nil).GameSession)
}
