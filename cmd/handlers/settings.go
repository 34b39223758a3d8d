package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"newsdesk/internal/store"
)

// NewSettingsCmd creates the settings command group.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored webhook and API key settings",
	}

	cmd.AddCommand(newSettingsGetCmd())
	cmd.AddCommand(newSettingsSetCmd())

	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer application.Close()

			settings, err := application.flow.Settings()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(settings))
			for name := range settings {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				value := settings[name]
				if name == store.SettingAuthToken || name == store.SettingGeminiAPIKey {
					value = maskSecret(value)
				}
				fmt.Fprintf(out, "%-20s %s\n", name, value)
			}
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a setting value",
		Long: fmt.Sprintf(`Store a setting value. Known names:

  %s
  %s
  %s
  %s

Stored values override the built-in defaults.`,
			store.SettingQueueWebhookURL, store.SettingPostNowWebhookURL,
			store.SettingAuthToken, store.SettingGeminiAPIKey),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.flow.UpdateSettings(map[string]string{args[0]: args[1]}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s.\n", args[0])
			return nil
		},
	}
}

// maskSecret hides all but the edges of a secret value.
func maskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
