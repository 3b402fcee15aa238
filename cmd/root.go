package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/chatlog-viewer/internal"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	configPath   string
	serverURL    string
	stateBackend string
	stateDir     string
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatlog-viewer",
	Short: "Browse chat logs exported by a chatlog service",
	Long: `A terminal viewer for chat-log data served by a chatlog service.

It lists the service's sources, sessions and contacts, shows chat messages
page by page and exports them in several formats. Plaintext exports (CSV,
session listings, transcripts) can also be parsed offline.

Quick Start:
  chatlog-viewer sources                  # List configured sources
  chatlog-viewer sources use <source-id>  # Select the active source
  chatlog-viewer sessions                 # List sessions of the source
  chatlog-viewer chatlog --talker <id>    # Show messages
  chatlog-viewer export --format md       # Export messages as Markdown

Configuration is read from ~/.config/chatlog-viewer/config.toml, a .env file
and CHATLOG_* environment variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/chatlog-viewer/config.toml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Chatlog service address (overrides config)")
	rootCmd.PersistentFlags().StringVar(&stateBackend, "state-backend", "", "Where the selected source is kept: yaml, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory for persisted viewer state")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
