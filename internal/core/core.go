package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Draft represents the single in-progress news item being edited before
// publication. It is overwritten by the next generation cycle rather than
// explicitly destroyed.
type Draft struct {
	ID           string    `json:"id"`            // Unique identifier for the draft
	Headline     string    `json:"headline"`      // Display headline
	ImageURL     string    `json:"image_url"`     // Currently chosen image (remote URL or data URL)
	NewsURL      string    `json:"news_url"`      // Source article URL; empty for AI-discovered topics
	Summary      string    `json:"summary"`       // Generated social-media summary
	ImageOptions []string  `json:"image_options"` // Candidate image URLs, first is the preferred one
	UpdatedAt    time.Time `json:"updated_at"`    // Timestamp of the last mutation
}

// NewDraft returns an empty draft with a fresh identifier.
func NewDraft() Draft {
	return Draft{
		ID:        uuid.NewString(),
		UpdatedAt: time.Now().UTC(),
	}
}

// Previewable reports whether the draft has enough content to render the
// composed social-media graphic.
func (d Draft) Previewable() bool {
	return d.Headline != "" && d.ImageURL != ""
}

// Publishable reports whether the draft satisfies the publish gate.
func (d Draft) Publishable() bool {
	return d.Headline != "" && d.Summary != ""
}

// FoundArticle is a topic candidate produced by the discovery call.
type FoundArticle struct {
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	ImageQuery      string `json:"imageQuery"`
	PublicationDate string `json:"publicationDate,omitempty"` // e.g. "2026-08-15"
	SourceURL       string `json:"sourceUrl,omitempty"`       // Set for feed-sourced candidates only
}

// GroundingSource is a citation returned alongside a search-grounded AI
// call, shown for transparency only.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ProcessedArticle is the structured result of analyzing one article URL.
type ProcessedArticle struct {
	Headline  string   `json:"headline"`
	ImageURLs []string `json:"imageUrls"`
	Summary   string   `json:"summary"`
}

// PublishStatus selects the outbound webhook and the status literal the
// payload carries.
type PublishStatus string

const (
	// StatusPost publishes immediately.
	StatusPost PublishStatus = "Post"
	// StatusQueue enqueues the item for scheduled posting.
	StatusQueue PublishStatus = "Queue"
)

// WebhookPayload is the outbound record dispatched to a webhook. The
// imageUrl must be a publicly reachable URL, never a data URL; the upload
// step guarantees that.
type WebhookPayload struct {
	Headline string        `json:"headline"`
	Summary  string        `json:"summary"`
	ImageURL string        `json:"imageUrl"`
	NewsLink string        `json:"newsLink"`
	Status   PublishStatus `json:"status"`
}

// Region scopes topic discovery.
type Region string

const (
	RegionBangladesh    Region = "Bangladesh"
	RegionInternational Region = "International"
)

// DiscoverParams carries the inputs of a discovery call.
type DiscoverParams struct {
	Query          string   // Optional topical filter
	Region         Region   // Defaults to Bangladesh
	TimeFilter     string   // e.g. "1d", "7d", "10d"
	ExistingTitles []string // Titles to exclude, best-effort on the model side
}

// TimeFilterDays extracts the day count from a filter like "7d",
// defaulting to 10 when the filter is absent or malformed.
func (p DiscoverParams) TimeFilterDays() string {
	days := strings.TrimSuffix(p.TimeFilter, "d")
	if days == "" {
		return "10"
	}
	return days
}
