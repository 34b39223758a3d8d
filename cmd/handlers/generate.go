package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsdesk/internal/core"
	"newsdesk/internal/headline"
	"newsdesk/internal/workflow"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var (
		setHeadline string
		setImage    string
	)

	cmd := &cobra.Command{
		Use:   "generate <article-url>",
		Short: "Fill the draft from a news article URL",
		Long: `Generate a draft from an article URL.

With --headline and --image set, only the summary is generated and your
choices are kept. Otherwise the article is fully processed: headline,
summary, and image candidates, supplemented with images from the page
itself.

Examples:
  newsdesk generate https://www.thedailystar.net/some-story
  newsdesk generate --headline "Port Reopens" --image https://... https://...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer application.Close()

			if setHeadline != "" || setImage != "" {
				edits := workflow.DraftEdits{}
				if setHeadline != "" {
					edits.Headline = &setHeadline
				}
				if setImage != "" {
					edits.ImageURL = &setImage
				}
				if _, err := application.flow.EditDraft(edits); err != nil {
					return err
				}
			}

			draft, err := application.flow.Generate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printDraft(cmd, draft)
			return nil
		},
	}

	cmd.Flags().StringVar(&setHeadline, "headline", "", "Keep this headline instead of generating one")
	cmd.Flags().StringVar(&setImage, "image", "", "Keep this image URL instead of searching for candidates")

	return cmd
}

// printDraft renders the draft to the command output.
func printDraft(cmd *cobra.Command, draft core.Draft) {
	out := cmd.OutOrStdout()
	plan := headline.Format(draft.Headline)

	fmt.Fprintln(out)
	fmt.Fprintln(out, plan.String())
	fmt.Fprintln(out)
	if draft.Summary != "" {
		fmt.Fprintln(out, draft.Summary)
		fmt.Fprintln(out)
	}
	if draft.NewsURL != "" {
		fmt.Fprintf(out, "Source: %s\n", draft.NewsURL)
	}
	if draft.ImageURL != "" {
		fmt.Fprintf(out, "Image:  %s\n", truncateForDisplay(draft.ImageURL))
	}
	if len(draft.ImageOptions) > 1 {
		fmt.Fprintf(out, "Candidates:\n")
		for i, url := range draft.ImageOptions {
			fmt.Fprintf(out, "  %d. %s\n", i+1, truncateForDisplay(url))
		}
	}
}

func truncateForDisplay(s string) string {
	if len(s) <= 100 {
		return s
	}
	return s[:97] + "..."
}
