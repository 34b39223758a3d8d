package handlers

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewSelectCmd creates the select command.
func NewSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <number>",
		Short: "Load a discovered topic into the draft",
		Long: `Load a topic from the last 'newsdesk discover' run into the draft and
search for matching images. When no image can be found a placeholder is
set so the draft stays previewable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil || number < 1 {
				return fmt.Errorf("expected a topic number from the discover list, got %q", args[0])
			}

			application, err := buildApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer application.Close()

			draft, advisory, err := application.flow.SelectTopic(cmd.Context(), number-1)
			if err != nil {
				return err
			}

			printDraft(cmd, draft)
			if advisory != "" {
				fmt.Fprintln(cmd.OutOrStdout(), advisory)
			}
			return nil
		},
	}

	return cmd
}
