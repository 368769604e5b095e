package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calproxy application
var rootCmd = &cobra.Command{
	Use:   "calproxy",
	Short: "Google Calendar proxy with token-based authentication",
	Long: `calproxy is a backend service that authenticates users with Google OAuth
access tokens and proxies Google Calendar queries on their behalf.

Clients obtain an access token through their own Google sign-in flow, post it
to /api/auth/google, and receive a session cookie. Subsequent requests to
/api/calendar/events fetch, window and filter the user's calendar events.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calproxy version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
