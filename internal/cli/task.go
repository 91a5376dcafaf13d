package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/petrijr/socialflow/pkg/api"
)

// TaskCreateOptions holds flags for the task create command.
type TaskCreateOptions struct {
	*RootOptions
	From      string
	To        []string
	EventType string
	Creator   string
	Content   string
}

// NewTaskCommand creates the task command group.
func NewTaskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, finish or cancel tasks",
	}
	cmd.AddCommand(newTaskCreateCommand(rootOpts))
	cmd.AddCommand(newTaskFinishCommand(rootOpts))
	cmd.AddCommand(newTaskCancelCommand(rootOpts))
	return cmd
}

func newTaskCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TaskCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one task per recipient",
		Long: `Create one task per recipient, skipping recipients that already have an
open task of the same type from the same sender.

Example:
  socialflow task create --from u1 --to u2 --to u3 --event groupInvitation --creator owner`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, func(ctx context.Context, rt *runtime) error {
				results, err := rt.Engine.CreateTask(ctx, api.TaskRequest{
					From:      opts.From,
					To:        opts.To,
					EventType: api.EventType(opts.EventType),
					Creator:   opts.Creator,
					Content:   opts.Content,
				})
				if err != nil {
					return err
				}
				return printResults(cmd, rootOpts, results)
			})
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "initiator id")
	cmd.Flags().StringSliceVar(&opts.To, "to", nil, "recipient id (repeatable)")
	cmd.Flags().StringVar(&opts.EventType, "event", "", "event type")
	cmd.Flags().StringVar(&opts.Creator, "creator", "", "tracking owner (defaults to --from)")
	cmd.Flags().StringVar(&opts.Content, "content", "", "task content")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}

func newTaskFinishCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "finish <task-id>",
		Short:         "Run a task's finish handler and close it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, func(ctx context.Context, rt *runtime) error {
				result, err := rt.Engine.FinishTask(ctx, args[0])
				if err != nil {
					return err
				}
				return formatter(cmd, rootOpts).Print(map[string]any{"result": result}, func(w io.Writer) {
					fmt.Fprintf(w, "task %s finished", args[0])
					if result != nil {
						fmt.Fprintf(w, ": %v", result)
					}
					fmt.Fprintln(w)
				})
			})
		},
	}
}

func newTaskCancelCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "cancel <task-id>",
		Short:         "Close a task without running any handler",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, func(ctx context.Context, rt *runtime) error {
				if err := rt.Engine.CancelTask(ctx, args[0]); err != nil {
					return err
				}
				return formatter(cmd, rootOpts).Print(map[string]string{"cancelled": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "task %s cancelled\n", args[0])
				})
			})
		},
	}
}
