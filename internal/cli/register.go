package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"task-tracker/internal/validation"
)

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	var in validation.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.ConfirmPassword == "" {
				in.ConfirmPassword = in.Password
			}
			user, err := opts.app.Auth.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "username, 5 to 50 characters")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm", "", "password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
