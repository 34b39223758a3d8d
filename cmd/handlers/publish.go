package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsdesk/internal/core"
	"newsdesk/internal/workflow"
)

// NewPublishCmd creates the publish command.
func NewPublishCmd() *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the draft image and dispatch the post",
		Long: `Publish the draft: the image is uploaded to the public image host and
the post record is dispatched to the automation webhook.

By default the post is queued for scheduled publication; --now sends it
to the post-now endpoint instead. The draft is kept after publishing so
it can be edited and dispatched again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer application.Close()

			status := core.StatusQueue
			if now {
				status = core.StatusPost
			}

			payload, err := application.flow.Publish(cmd.Context(), workflow.PublishRequest{Status: status})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if payload.Status == core.StatusPost {
				fmt.Fprintln(out, "Posted!")
			} else {
				fmt.Fprintln(out, "Queued for scheduled posting.")
			}
			fmt.Fprintf(out, "Image: %s\n", payload.ImageURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "Post immediately instead of queueing")

	return cmd
}
