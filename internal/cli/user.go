package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/petrijr/socialflow/pkg/api"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCommand(rootOpts))
	return cmd
}

func newUserCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var nu api.NewUser

	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create a user with a unique email",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, func(ctx context.Context, rt *runtime) error {
				id, err := rt.Engine.CreateUser(ctx, nu)
				if err != nil {
					return err
				}
				return printID(cmd, rootOpts, "user", id)
			})
		},
	}

	cmd.Flags().StringVar(&nu.Name, "name", "", "display name")
	cmd.Flags().StringVar(&nu.Email, "email", "", "email address")
	cmd.Flags().StringVar(&nu.Avatar, "avatar", "", "avatar reference")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
