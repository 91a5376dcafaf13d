package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// GroupCreateOptions holds flags for the group create command.
type GroupCreateOptions struct {
	Name    string
	Creator string
	Avatar  string
	Invited []string
}

// NewGroupCommand creates the group command group.
func NewGroupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}
	cmd.AddCommand(newGroupCreateCommand(rootOpts))
	return cmd
}

func newGroupCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GroupCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group and invite members",
		Long: `Create a group owned by --creator and send a group invitation to every
--invite user.

Example:
  socialflow group create --name climbers --creator u1 --invite u2 --invite u3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, func(ctx context.Context, rt *runtime) error {
				id, err := rt.Engine.CreateGroup(ctx, opts.Name, opts.Creator, opts.Avatar, opts.Invited)
				if err != nil {
					return err
				}
				return printID(cmd, rootOpts, "group", id)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "group name")
	cmd.Flags().StringVar(&opts.Creator, "creator", "", "owner user id")
	cmd.Flags().StringVar(&opts.Avatar, "avatar", "", "avatar reference")
	cmd.Flags().StringSliceVar(&opts.Invited, "invite", nil, "user id to invite (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("creator")

	return cmd
}
