package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tradecoach/internal/api"
	"tradecoach/internal/scheduler"
)

// addServeCommand adds the HTTP server command.
func addServeCommand(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the HTTP API server and the background scheduler.

The scheduler periodically recomputes daily scores and refreshes
challenge progress. The API exposes mentor analysis, score history,
badges, reports, and challenges.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			if app.Challenges == nil {
				return errors.New("challenge engine unavailable")
			}

			server := api.NewServer(api.Config{
				Addr:         app.Config.Server.Addr,
				ReadTimeout:  app.Config.Server.ReadTimeout,
				WriteTimeout: app.Config.Server.WriteTimeout,
			}, app.Mentor, app.Scoring, app.Challenges, app.Reports, app.Store, app.Logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if app.Config.Scheduler.Enabled {
				sched := scheduler.New(app.Scoring, app.Challenges, app.Config.Scheduler.Interval, app.Logger)
				sched.Start(ctx)
				defer sched.Stop()
			}

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				app.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	rootCmd.AddCommand(cmd)
}
