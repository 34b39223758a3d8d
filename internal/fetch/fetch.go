package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ArticleMeta is the metadata extracted directly from an article page,
// used to enrich the AI-processed result with the page's own images.
type ArticleMeta struct {
	Title     string
	ImageURLs []string // og:image first, then in-body candidates
}

// Fetcher retrieves article pages and extracts their display metadata.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

// NewFetcher creates an article metadata fetcher.
func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = "Newsdesk/1.0"
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// FetchArticleMeta downloads an article page and extracts its title and
// image candidates. Failures here are soft from the workflow's point of
// view: the AI-processed result stands on its own.
func (f *Fetcher) FetchArticleMeta(ctx context.Context, articleURL string) (ArticleMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return ArticleMeta{}, fmt.Errorf("failed to create request for %s: %w", articleURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return ArticleMeta{}, fmt.Errorf("failed to fetch %s: %w", articleURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ArticleMeta{}, fmt.Errorf("fetching %s returned status %d", articleURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ArticleMeta{}, fmt.Errorf("failed to parse %s: %w", articleURL, err)
	}

	return extractMeta(doc, articleURL), nil
}

// extractMeta pulls the title and image candidates out of a parsed page.
func extractMeta(doc *goquery.Document, pageURL string) ArticleMeta {
	meta := ArticleMeta{}

	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && title != "" {
		meta.Title = strings.TrimSpace(title)
	} else {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	seen := map[string]struct{}{}
	addImage := func(raw string) {
		resolved := resolveURL(pageURL, strings.TrimSpace(raw))
		if resolved == "" || !isImageURL(resolved) {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		meta.ImageURLs = append(meta.ImageURLs, resolved)
	}

	doc.Find(`meta[property="og:image"], meta[name="twitter:image"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			addImage(content)
		}
	})

	doc.Find("article img, figure img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			addImage(src)
		}
	})

	return meta
}

// resolveURL makes relative image references absolute against the page
// URL and drops anything that is not http(s).
func resolveURL(pageURL, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// isImageURL filters for direct image-file links; og:image values
// without an extension pass through since publishers often serve them
// from CDN paths.
func isImageURL(u string) bool {
	lowered := strings.ToLower(u)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp", ".gif"} {
		if strings.Contains(lowered, ext) {
			return true
		}
	}
	// CDN-served images frequently omit extensions; accept known image
	// path hints rather than rejecting outright.
	return strings.Contains(lowered, "/image") || strings.Contains(lowered, "=image")
}
