package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/ccpubsub/internal/factory"
	"github.com/mcoot/ccpubsub/internal/services/credentials"
	"github.com/mcoot/ccpubsub/internal/storage"
)

func newCredsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage the stored login token",
	}

	cmd.AddCommand(newCredsShowCmd())
	cmd.AddCommand(newCredsClearCmd())

	return cmd
}

func newCredsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the claims of the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := openCredentials(cmd.Context())
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			creds, ok := store.Current()
			if !ok {
				out.PrintMessage("No stored credentials")
				return nil
			}

			claims := creds.Claims
			out.Print(CredentialsView{
				SubjectID:   claims.SubjectID,
				Name:        claims.Name,
				ProfileType: string(claims.ProfileType),
				OriginID:    claims.OriginID,
				Roles:       claims.Roles,
				ExpiresAt:   claims.ExpiresAt,
				Expired:     claims.Expired(time.Now()),
				Topic:       creds.Topic(),
			})
			return nil
		},
	}
}

func newCredsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, closer, err := openTokens()
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			if err := credentials.New(tokens, logger).Clear(cmd.Context()); err != nil {
				return err
			}
			out.PrintMessage("Stored credentials cleared")
			return nil
		},
	}
}

func openTokens() (storage.TokenStore, io.Closer, error) {
	return factory.NewTokenStore(cfg.FactoryConfig(logger, nil))
}

// openCredentials loads the stored token. A token that cannot be decoded
// is an error here, unlike in run.
func openCredentials(ctx context.Context) (*credentials.Store, io.Closer, error) {
	tokens, closer, err := openTokens()
	if err != nil {
		return nil, nil, err
	}
	store := credentials.New(tokens, logger)
	if err := store.Load(ctx); err != nil {
		closeQuietly(closer)
		return nil, nil, err
	}
	return store, closer, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
