package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/petrijr/socialflow/pkg/api"
	sflog "github.com/petrijr/socialflow/pkg/log"
)

// withRuntime opens the configured store for a single command invocation.
func withRuntime(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, rt *runtime) error) error {
	logger := sflog.NewWithWriter(cmd.ErrOrStderr(), "socialflow", "cli", "dev", sflog.ParseLevel(opts.Config.Log.Level))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := openRuntime(ctx, opts.Config, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.Warn("closing store failed", slog.Any("error", cerr))
		}
	}()

	if err := fn(ctx, rt); err != nil {
		return WrapExitError(ExitFailure, cmd.CommandPath(), err)
	}
	return nil
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// printResults prints handler results; tasks print as their id.
func printResults(cmd *cobra.Command, opts *RootOptions, results []any) error {
	if results == nil {
		results = []any{}
	}
	return formatter(cmd, opts).Print(map[string]any{"results": results}, func(w io.Writer) {
		if len(results) == 0 {
			fmt.Fprintln(w, "no tasks created")
			return
		}
		for _, r := range results {
			if t, ok := r.(*api.Task); ok {
				fmt.Fprintf(w, "task %s: %s -> %s (%s)\n", t.ID, t.From, t.To, t.EventType)
				continue
			}
			fmt.Fprintf(w, "%v\n", r)
		}
	})
}

func printID(cmd *cobra.Command, opts *RootOptions, what, id string) error {
	return formatter(cmd, opts).Print(map[string]string{"id": id}, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s\n", what, id)
	})
}
