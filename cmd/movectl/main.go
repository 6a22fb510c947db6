// movectl is the command line client for a movevote deployment. It drives
// the same session lifecycle a browser client does: credentials obtained
// from the identity provider are persisted in a local SQLite store and
// attached, refreshed and discarded by the session client.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/movevote/movevote/pkg/authsdk"
	"github.com/movevote/movevote/pkg/credstore"
)

var BuildVersion = "dev"

var (
	flagServer    string
	flagCredsFile string
	flagNoStore   bool
)

var rootCmd = &cobra.Command{
	Use:   "movectl",
	Short: "movevote session CLI",
	Long:  "CLI for managing an authenticated movevote session.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Identity provider base URL. Can also be set via MOVEVOTE_SERVER.")
	rootCmd.PersistentFlags().StringVar(&flagCredsFile, "credentials-file", "", "Path to the credentials database. Defaults to ~/.movevote/credentials.db.")
	rootCmd.PersistentFlags().BoolVar(&flagNoStore, "no-store", false, "Do not persist credentials; the session lives for this invocation only.")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the movectl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s\n", BuildVersion)
		},
	})
}

func resolveServer() (string, error) {
	server := strings.TrimSpace(flagServer)
	if server == "" {
		server = strings.TrimSpace(os.Getenv("MOVEVOTE_SERVER"))
	}
	if server == "" {
		return "", fmt.Errorf("missing server URL: set --server or MOVEVOTE_SERVER")
	}
	return strings.TrimRight(server, "/"), nil
}

// openStore opens the credential store the flags select. With --no-store
// the client runs detached and nothing touches disk.
func openStore() (*credstore.Store, error) {
	if flagNoStore {
		return credstore.Detached(), nil
	}

	path := strings.TrimSpace(flagCredsFile)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".movevote", "credentials.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create credentials directory: %w", err)
	}

	backend, err := credstore.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open credentials database: %w", err)
	}
	return credstore.New(backend), nil
}

func newClient() (*authsdk.Client, error) {
	server, err := resolveServer()
	if err != nil {
		return nil, err
	}
	creds, err := openStore()
	if err != nil {
		return nil, err
	}
	return authsdk.NewClient(server, creds), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
