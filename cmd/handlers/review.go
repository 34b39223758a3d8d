package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsdesk/internal/tui"
)

// NewReviewCmd creates the review command.
func NewReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review the draft and pick an image interactively",
		Long: `Open a terminal review of the current draft: the rendered headline,
the summary, and the image candidates. Choosing a candidate makes it
the draft image.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer application.Close()

			draft, err := application.flow.Draft()
			if err != nil {
				return err
			}

			chosen, err := tui.Run(draft)
			if err != nil {
				return err
			}
			if chosen == "" {
				return nil
			}

			if _, err := application.flow.ChooseImage(chosen); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft image set to %s\n", truncateForDisplay(chosen))
			return nil
		},
	}
}
