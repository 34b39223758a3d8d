package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsdesk/internal/core"
	"newsdesk/internal/store"
)

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	var (
		query      string
		region     string
		timeFilter string
		loadMore   bool
		fromFeeds  bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find recent news topics to write about",
		Long: `Discover recent news topics with a search-grounded AI call, or from
the configured RSS feeds with --feeds.

A plain run replaces the stored topic list; --more keeps the list and
asks for topics not already on it. Pick a topic afterwards with
'newsdesk select <number>'.

Examples:
  newsdesk discover
  newsdesk discover --region International --time 1d
  newsdesk discover --query "garment industry" --more
  newsdesk discover --feeds`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context(), !fromFeeds)
			if err != nil {
				return err
			}
			defer application.Close()

			var snapshot store.DiscoverySnapshot
			if fromFeeds {
				snapshot, err = application.flow.DiscoverFromFeeds(cmd.Context(), loadMore)
			} else {
				snapshot, err = application.flow.Discover(cmd.Context(), core.DiscoverParams{
					Query:      query,
					Region:     core.Region(region),
					TimeFilter: timeFilter,
				}, loadMore)
			}
			if err != nil {
				return err
			}

			printDiscovery(cmd, snapshot)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Optional topic filter")
	cmd.Flags().StringVar(&region, "region", string(core.RegionBangladesh), "Region: Bangladesh or International")
	cmd.Flags().StringVar(&timeFilter, "time", "10d", "Recency window, e.g. 1d, 7d, 10d")
	cmd.Flags().BoolVar(&loadMore, "more", false, "Keep stored topics and ask for more")
	cmd.Flags().BoolVar(&fromFeeds, "feeds", false, "Read topics from the configured RSS feeds instead of the model")

	return cmd
}

func printDiscovery(cmd *cobra.Command, snapshot store.DiscoverySnapshot) {
	out := cmd.OutOrStdout()

	if len(snapshot.Articles) == 0 {
		fmt.Fprintln(out, "No topics found.")
		return
	}

	for i, article := range snapshot.Articles {
		fmt.Fprintf(out, "%2d. %s", i+1, article.Title)
		if article.PublicationDate != "" {
			fmt.Fprintf(out, " (%s)", article.PublicationDate)
		}
		fmt.Fprintln(out)
		if article.Summary != "" {
			fmt.Fprintf(out, "    %s\n", article.Summary)
		}
	}

	if len(snapshot.Sources) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, source := range snapshot.Sources {
			fmt.Fprintf(out, "  - %s (%s)\n", source.Title, source.URI)
		}
	}

	fmt.Fprintln(out, "\nPick one with 'newsdesk select <number>'.")
}
