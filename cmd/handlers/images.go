package handlers

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"newsdesk/internal/headline"
)

// NewImagesCmd creates the images command group.
func NewImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Search, generate, and choose draft images",
	}

	cmd.AddCommand(newImagesFindCmd())
	cmd.AddCommand(newImagesGenerateCmd())
	cmd.AddCommand(newImagesChooseCmd())

	return cmd
}

func newImagesFindCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search the web for image candidates",
		Long: `Search for image candidates. Without --query the search uses keywords
derived from the draft headline.

Examples:
  newsdesk images find
  newsdesk images find --query "dhaka traffic monsoon"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer application.Close()

			if query == "" {
				draft, err := application.flow.Draft()
				if err != nil {
					return err
				}
				query = headline.Keywords(draft.Headline)
			}

			draft, advisory, err := application.flow.FindImages(cmd.Context(), query)
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

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search query (default: keywords from the headline)")

	return cmd
}

func newImagesGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a photorealistic image from the draft headline",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer application.Close()

			draft, err := application.flow.GenerateImage(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Generated a new image and made it the draft image.")
			printDraft(cmd, draft)
			return nil
		},
	}
}

func newImagesChooseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "choose <number-or-url>",
		Short: "Make a candidate the draft image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer application.Close()

			target := args[0]
			if number, err := strconv.Atoi(target); err == nil {
				draft, err := application.flow.Draft()
				if err != nil {
					return err
				}
				if number < 1 || number > len(draft.ImageOptions) {
					return fmt.Errorf("candidate number %d is out of range (1-%d)", number, len(draft.ImageOptions))
				}
				target = draft.ImageOptions[number-1]
			}

			draft, err := application.flow.ChooseImage(target)
			if err != nil {
				return err
			}

			printDraft(cmd, draft)
			return nil
		},
	}
}
