package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrijr/socialflow/internal/server"
	sflog "github.com/petrijr/socialflow/pkg/log"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the command workers",
		Long: `Run the HTTP API on server.host:server.port and start queue.workers
goroutines that execute commands queued with ?async=true.

Example:
  SOCIALFLOW_STORE_BACKEND=sqlite SOCIALFLOW_STORE_DSN=file:social.db socialflow serve`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *RootOptions) error {
	cfg := opts.Config
	logger := sflog.NewWithLevel("socialflow", "production", "dev", sflog.ParseLevel(cfg.Log.Level))
	slog.SetDefault(logger)

	rt, err := openRuntime(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer func() { _ = rt.Close() }()

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Queue.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rt.Worker.Run(workerCtx)
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewServer(rt.Engine, rt.Worker, logger).SetupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			slog.String("addr", srv.Addr),
			slog.String("store", cfg.Store.Backend),
			slog.String("queue", cfg.Queue.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			cancelWorkers()
			wg.Wait()
			return WrapExitError(ExitCommandError, "http server", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)

	cancelWorkers()
	wg.Wait()

	snap := rt.Metrics.Snapshot()
	logger.Info("shutdown complete",
		slog.Int64("tasks_created", snap.TasksCreated),
		slog.Int64("tasks_finished", snap.TasksFinished),
		slog.Int64("tasks_cancelled", snap.TasksCancelled),
		slog.Int64("notifications_sent", snap.NotificationsSent))
	return err
}
