package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/ccpubsub/internal/factory"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect and respond to effect requests until interrupted",
		Long: `Connect to the pub/sub service and log in, reusing the stored token when
there is one. Every effect request is acknowledged as a success.

On SIGINT or SIGTERM the running game session, if any, is stopped before
the connection closes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runClient(ctx)
		},
	}
}

// runClient serves the connection until it ends or shutdown is done
func runClient(shutdown context.Context) error {
	app, err := factory.New(cfg.FactoryConfig(logger, NewConsoleNotifier(out)))
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	// the connection outlives the shutdown signal until the stop call is sent
	runCtx, cancel := context.WithCancel(context.WithoutCancel(shutdown))
	defer cancel()

	out.PrintMessage("Connecting...")

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run(runCtx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("connection failed", slog.String("error", err.Error()))
		}
		return err
	case <-shutdown.Done():
	}

	logger.Info("shutdown signal received")

	stopCtx, cancelStop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelStop()
	if app.Shutdown(stopCtx) {
		logger.Info("game session stop requested")
	}
	// a connection still dialling is not closed by Shutdown
	cancel()

	if err := <-errCh; err != nil {
		logger.Warn("connection ended with error", slog.String("error", err.Error()))
	}
	return nil
}
