package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/movevote/movevote/pkg/authsdk"
)

func init() {
	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newRegisterCommand())
	rootCmd.AddCommand(newLogoutCommand())
	rootCmd.AddCommand(newWhoamiCommand())
}

// readPassword prompts on stderr so the prompt never pollutes piped
// stdout, and falls back to a flag value when one was given.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	cmd.PrintErr("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	cmd.PrintErrln()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func newLoginCommand() *cobra.Command {
	var password string

	loginCmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Authenticate and store session credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Credentials().Close()

			pass, err := readPassword(cmd, password)
			if err != nil {
				return err
			}

			payload, err := client.Login(cmd.Context(), args[0], pass)
			if err != nil {
				return describeAuthError(err)
			}

			cmd.Printf("Logged in as %s (%s)\n", payload.Username, payload.Email)
			if !client.Credentials().Persistent() {
				cmd.Println("Credentials were not persisted (--no-store).")
			}
			return nil
		},
	}

	loginCmd.Flags().StringVar(&password, "password", "", "Password. Prompted for interactively when omitted.")
	return loginCmd
}

func newRegisterCommand() *cobra.Command {
	var (
		password string
		username string
	)

	registerCmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and store session credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Credentials().Close()

			pass, err := readPassword(cmd, password)
			if err != nil {
				return err
			}

			payload, err := client.Register(cmd.Context(), args[0], pass, username)
			if err != nil {
				return describeAuthError(err)
			}

			cmd.Printf("Registered and logged in as %s (%s)\n", payload.Username, payload.Email)
			return nil
		},
	}

	registerCmd.Flags().StringVar(&password, "password", "", "Password. Prompted for interactively when omitted.")
	registerCmd.Flags().StringVar(&username, "username", "", "Display name. Defaults to the local part of the email.")
	return registerCmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard stored session credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Credentials().Close()

			client.Logout(cmd.Context())
			cmd.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	var remote bool

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session identity",
		Long:  "Shows the locally stored user record, or with --remote asks the gateway to verify the stored access token.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Credentials().Close()

			if remote {
				return whoamiRemote(cmd, client)
			}

			user, err := client.Credentials().User(cmd.Context())
			if err != nil {
				return fmt.Errorf("read stored user: %w", err)
			}
			if user == nil {
				return fmt.Errorf("not logged in")
			}

			cmd.Printf("%s (%s), user id %s\n", user.Username, user.Email, user.UserID)
			return nil
		},
	}

	whoamiCmd.Flags().BoolVar(&remote, "remote", false, "Verify the session against the gateway instead of reading the local record.")
	return whoamiCmd
}

func whoamiRemote(cmd *cobra.Command, client *authsdk.Client) error {
	resp, err := client.AuthenticatedDo(cmd.Context(), http.MethodGet, "/v1/session", nil, nil)
	if err != nil {
		return describeAuthError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body)
	}

	var session struct {
		UserID   string `json:"userId"`
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("decode session response: %w", err)
	}

	cmd.Printf("%s (%s), user id %s\n", session.Username, session.Email, session.UserID)
	return nil
}

// describeAuthError turns the client error taxonomy into messages a
// terminal user can act on. Unrecognized errors pass through unchanged.
func describeAuthError(err error) error {
	switch authsdk.KindOf(err) {
	case authsdk.KindInvalidCredentials:
		return fmt.Errorf("invalid email or password")
	case authsdk.KindRateLimited:
		return fmt.Errorf("too many attempts, try again later")
	case authsdk.KindServerUnavailable:
		return fmt.Errorf("the identity provider is unavailable, try again later")
	case authsdk.KindNetworkUnreachable:
		return fmt.Errorf("could not reach the server: %w", err)
	case authsdk.KindEmailAlreadyRegistered:
		return fmt.Errorf("an account with that email already exists")
	case authsdk.KindInvalidOrExpiredCode:
		return fmt.Errorf("the confirmation code is invalid or has expired")
	case authsdk.KindNoAccessToken, authsdk.KindNoRefreshToken:
		return fmt.Errorf("not logged in")
	case authsdk.KindTokenRefreshFailed, authsdk.KindAuthFailedAfterRefresh:
		return fmt.Errorf("session expired, log in again")
	default:
		return err
	}
}
