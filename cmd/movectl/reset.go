package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newResetPasswordCommand())
}

func newResetPasswordCommand() *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request or confirm a password reset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	resetCmd.AddCommand(&cobra.Command{
		Use:   "request <email>",
		Short: "Ask the identity provider to send a reset code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Credentials().Close()

			if err := client.RequestPasswordReset(cmd.Context(), args[0]); err != nil {
				return describeAuthError(err)
			}

			// The provider answers the same way whether or not the
			// account exists, so the message stays noncommittal.
			cmd.Println("If the account exists, a reset code has been sent.")
			return nil
		},
	})

	confirmCmd := &cobra.Command{
		Use:   "confirm <email> <code>",
		Short: "Exchange a reset code for a new password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Credentials().Close()

			password, err := readPassword(cmd, "")
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("new password must not be empty")
			}

			if err := client.ConfirmPasswordReset(cmd.Context(), args[0], args[1], password); err != nil {
				return describeAuthError(err)
			}

			cmd.Println("Password updated. Log in with the new password.")
			return nil
		},
	}
	resetCmd.AddCommand(confirmCmd)

	return resetCmd
}
