package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "newsdesk",
		Short: "Newsdesk drafts, previews, and dispatches AI-assisted news posts.",
		Long: `Newsdesk is an editorial tool for a small news operation: it turns an
article URL or a discovered topic into a draft with an AI headline,
summary, and image candidates, and dispatches the finished post to the
Queue or Post-Now automation webhook.

Run 'newsdesk serve' for the browser editor, or drive the same workflow
from the command line with generate, discover, images, and publish.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.newsdesk.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewDiscoverCmd())
	rootCmd.AddCommand(NewSelectCmd())
	rootCmd.AddCommand(NewImagesCmd())
	rootCmd.AddCommand(NewPublishCmd())
	rootCmd.AddCommand(NewSettingsCmd())
	rootCmd.AddCommand(NewReviewCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
