package feeds

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdesk/internal/core"
	"newsdesk/internal/logger"
)

// Reader pulls headlines from configured RSS feeds as an offline
// alternative to AI-grounded discovery.
type Reader struct {
	sources   []string
	userAgent string
	timeout   time.Duration
	maxItems  int
}

// NewReader creates a feed reader over the configured source URLs.
func NewReader(sources []string, userAgent string, timeout time.Duration, maxItems int) *Reader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxItems <= 0 {
		maxItems = 20
	}
	return &Reader{
		sources:   sources,
		userAgent: userAgent,
		timeout:   timeout,
		maxItems:  maxItems,
	}
}

// FetchLatest reads all configured feeds concurrently and returns the
// freshest items as discovery candidates, newest first. Individual feed
// failures are logged and skipped so one dead feed never blanks the
// whole list.
func (r *Reader) FetchLatest(ctx context.Context, maxAgeDays int) ([]core.FoundArticle, error) {
	if len(r.sources) == 0 {
		return nil, fmt.Errorf("no feed sources configured")
	}

	log := logger.Get()
	cutoff := time.Time{}
	if maxAgeDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -maxAgeDays)
	}

	var wg sync.WaitGroup
	results := make(chan []timedArticle, len(r.sources))

	for _, source := range r.sources {
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			parser := gofeed.NewParser()
			parser.UserAgent = r.userAgent

			feed, err := parser.ParseURLWithContext(feedURL, fetchCtx)
			if err != nil {
				log.Warn("failed to fetch feed", "url", feedURL, "error", err)
				return
			}

			var articles []timedArticle
			for _, item := range feed.Items {
				article, ok := itemToArticle(item, cutoff)
				if !ok {
					continue
				}
				articles = append(articles, article)
			}
			results <- articles
		}(source)
	}

	wg.Wait()
	close(results)

	var all []timedArticle
	for articles := range results {
		all = append(all, articles...)
	}

	// Sort on the full parsed timestamp. The display date only carries
	// day granularity, so ordering (and which duplicate the title dedup
	// keeps) must not depend on it.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].published.After(all[j].published)
	})

	deduped := dedupeByTitle(all)
	if len(deduped) > r.maxItems {
		deduped = deduped[:r.maxItems]
	}
	return deduped, nil
}

// timedArticle pairs a candidate with its parsed publication time, which
// the candidate itself only keeps as a day-granularity string.
type timedArticle struct {
	article   core.FoundArticle
	published time.Time
}

// itemToArticle converts a feed item to a discovery candidate. Items
// without a title or link, or older than the cutoff, are skipped.
func itemToArticle(item *gofeed.Item, cutoff time.Time) (timedArticle, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" || item.Link == "" {
		return timedArticle{}, false
	}

	published := ""
	var publishedAt time.Time
	if item.PublishedParsed != nil {
		if !cutoff.IsZero() && item.PublishedParsed.Before(cutoff) {
			return timedArticle{}, false
		}
		publishedAt = *item.PublishedParsed
		published = publishedAt.Format("2006-01-02")
	}

	summary := strings.TrimSpace(item.Description)
	if summary == "" {
		summary = strings.TrimSpace(item.Content)
	}

	return timedArticle{
		article: core.FoundArticle{
			Title:           title,
			Summary:         summary,
			ImageQuery:      title,
			PublicationDate: published,
			SourceURL:       item.Link,
		},
		published: publishedAt,
	}, true
}

// dedupeByTitle drops later items whose title matches an earlier one,
// comparing case-insensitively. With the list sorted newest first, the
// freshest duplicate is the one kept.
func dedupeByTitle(articles []timedArticle) []core.FoundArticle {
	seen := make(map[string]struct{}, len(articles))
	out := make([]core.FoundArticle, 0, len(articles))
	for _, a := range articles {
		key := strings.ToLower(strings.TrimSpace(a.article.Title))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a.article)
	}
	return out
}
