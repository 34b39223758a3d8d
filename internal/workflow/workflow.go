package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"newsdesk/internal/core"
	"newsdesk/internal/fetch"
	"newsdesk/internal/logger"
	"newsdesk/internal/store"
)

// PlaceholderImageURL is shown while a selected topic has no real image
// candidate yet.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1495020689067-958852a7765e?q=80&w=1740&auto=format&fit=crop"

// AdvisoryNoImages is the soft-failure notice when image search finds
// nothing for a selected topic.
const AdvisoryNoImages = "AI couldn't find any images for this topic. A placeholder has been set, but you can search again or generate one with AI."

// ErrNotPublishable is returned when the publish gate fails.
var ErrNotPublishable = errors.New("draft needs both a headline and a summary before publishing")

// ErrPublishCoolDown is returned while the post-publish cool-down is
// still running.
var ErrPublishCoolDown = errors.New("just published; wait a moment before publishing again")

// ErrMissingHeadline is returned when image generation is requested on a
// draft without a headline to derive the prompt from.
var ErrMissingHeadline = errors.New("a headline is required to generate an image")

// AIGateway is the generative-model surface the workflow depends on.
type AIGateway interface {
	Summarize(ctx context.Context, newsURL, headline string) (string, error)
	DiscoverTopics(ctx context.Context, params core.DiscoverParams) ([]core.FoundArticle, []core.GroundingSource, error)
	ProcessArticleURL(ctx context.Context, newsURL string) (core.ProcessedArticle, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ImageSearcher finds candidate image URLs for a query.
type ImageSearcher interface {
	SearchImages(ctx context.Context, query string, maxResults int) ([]string, []core.GroundingSource, error)
}

// ImageUploader pushes an image reference (remote URL or data URL) to
// the public image host and returns the hosted URL.
type ImageUploader interface {
	Upload(ctx context.Context, imageRef string) (string, error)
}

// WebhookSender dispatches the publish payload to an automation endpoint.
type WebhookSender interface {
	Send(ctx context.Context, payload core.WebhookPayload, webhookURL, authToken string) error
}

// MetaFetcher extracts page metadata directly from an article URL.
type MetaFetcher interface {
	FetchArticleMeta(ctx context.Context, articleURL string) (fetch.ArticleMeta, error)
}

// FeedReader pulls discovery candidates from RSS feeds.
type FeedReader interface {
	FetchLatest(ctx context.Context, maxAgeDays int) ([]core.FoundArticle, error)
}

// Storage is the durable state the workflow reads and writes.
type Storage interface {
	GetSetting(name, fallback string) (string, error)
	SetSetting(name, value string) error
	SaveDraft(draft core.Draft) error
	LoadDraft() (core.Draft, error)
	SaveDiscovery(snapshot store.DiscoverySnapshot) error
	LoadDiscovery() (store.DiscoverySnapshot, error)
}

// Defaults carries the configured fallbacks for the editable settings.
type Defaults struct {
	QueueWebhookURL   string
	PostNowWebhookURL string
	AuthToken         string
	SearchMaxResults  int
	FeedMaxAgeDays    int
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	AI       AIGateway
	Search   ImageSearcher
	Uploader ImageUploader
	Webhooks WebhookSender
	Fetcher  MetaFetcher
	Feeds    FeedReader
	Store    Storage
	Defaults Defaults

	// Preload verifies that a candidate image URL actually loads before
	// it replaces the current draft image. Nil accepts everything.
	Preload func(ctx context.Context, imageURL string) error

	// CoolDown overrides the post-publish cool-down.
	CoolDown time.Duration
}

// Orchestrator drives the editorial state machine: generate, discover,
// select, image handling, and publish. All operations are serialized so
// the draft never sees interleaved mutations.
type Orchestrator struct {
	mu        sync.Mutex
	deps      Deps
	published bool
}

// NewOrchestrator creates the workflow orchestrator.
func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.CoolDown <= 0 {
		deps.CoolDown = 10 * time.Second
	}
	if deps.Defaults.SearchMaxResults <= 0 {
		deps.Defaults.SearchMaxResults = 9
	}
	if deps.Defaults.FeedMaxAgeDays <= 0 {
		deps.Defaults.FeedMaxAgeDays = 10
	}
	return &Orchestrator{deps: deps}
}

// Draft returns the current persisted draft.
func (o *Orchestrator) Draft() (core.Draft, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deps.Store.LoadDraft()
}

// Discovery returns the accumulated discovery results.
func (o *Orchestrator) Discovery() (store.DiscoverySnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deps.Store.LoadDiscovery()
}

// DraftEdits carries manual field edits; nil fields are left untouched.
type DraftEdits struct {
	Headline *string
	Summary  *string
	ImageURL *string
	NewsURL  *string
}

// EditDraft applies manual edits to the draft. Setting the image URL by
// hand also promotes it to the front of the candidate list.
func (o *Orchestrator) EditDraft(edits DraftEdits) (core.Draft, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	draft, err := o.deps.Store.LoadDraft()
	if err != nil {
		return core.Draft{}, err
	}

	if edits.Headline != nil {
		draft.Headline = strings.TrimSpace(*edits.Headline)
	}
	if edits.Summary != nil {
		draft.Summary = strings.TrimSpace(*edits.Summary)
	}
	if edits.NewsURL != nil {
		draft.NewsURL = strings.TrimSpace(*edits.NewsURL)
	}
	if edits.ImageURL != nil {
		draft.ImageURL = strings.TrimSpace(*edits.ImageURL)
		if draft.ImageURL != "" {
			draft.ImageOptions = promoteImage(draft.ImageOptions, draft.ImageURL)
		}
	}

	return o.saveDraft(draft)
}

// Generate fills the draft from a news article URL. When the operator
// has already fixed a headline and an image, only the summary is
// generated and the existing choices are kept; otherwise the article is
// fully processed and the page's own images supplement the candidates.
func (o *Orchestrator) Generate(ctx context.Context, newsURL string) (core.Draft, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	newsURL = strings.TrimSpace(newsURL)
	if newsURL == "" {
		return core.Draft{}, fmt.Errorf("a news article URL is required")
	}

	draft, err := o.deps.Store.LoadDraft()
	if err != nil {
		return core.Draft{}, err
	}

	if draft.Headline != "" && draft.ImageURL != "" {
		summary, err := o.deps.AI.Summarize(ctx, newsURL, draft.Headline)
		if err != nil {
			return core.Draft{}, err
		}
		draft.Summary = summary
		draft.NewsURL = newsURL
		draft.ImageOptions = []string{draft.ImageURL}
		return o.saveDraft(draft)
	}

	processed, err := o.deps.AI.ProcessArticleURL(ctx, newsURL)
	if err != nil {
		return core.Draft{}, err
	}

	options := processed.ImageURLs
	if o.deps.Fetcher != nil {
		if meta, err := o.deps.Fetcher.FetchArticleMeta(ctx, newsURL); err != nil {
			logger.Warn("could not read article page for extra images", "url", newsURL, "error", err)
		} else {
			options = mergeImageOptions(options, meta.ImageURLs)
		}
	}

	draft.Headline = processed.Headline
	draft.Summary = processed.Summary
	draft.NewsURL = newsURL
	draft.ImageOptions = options
	if len(options) > 0 {
		draft.ImageURL = options[0]
	}
	return o.saveDraft(draft)
}

// Discover runs AI topic discovery. A fresh run replaces the stored
// results; loadMore passes the accumulated titles to the model as an
// exclusion list and appends only titles not already present.
func (o *Orchestrator) Discover(ctx context.Context, params core.DiscoverParams, loadMore bool) (store.DiscoverySnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := store.DiscoverySnapshot{}
	if loadMore {
		existing, err := o.deps.Store.LoadDiscovery()
		if err != nil {
			return store.DiscoverySnapshot{}, err
		}
		snapshot = existing
		for _, a := range existing.Articles {
			params.ExistingTitles = append(params.ExistingTitles, a.Title)
		}
	}

	articles, sources, err := o.deps.AI.DiscoverTopics(ctx, params)
	if err != nil {
		return store.DiscoverySnapshot{}, err
	}

	return o.mergeDiscovery(snapshot, articles, sources)
}

// DiscoverFromFeeds pulls discovery candidates from the configured RSS
// feeds instead of the model, merging into the stored results the same
// way a load-more does.
func (o *Orchestrator) DiscoverFromFeeds(ctx context.Context, loadMore bool) (store.DiscoverySnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.deps.Feeds == nil {
		return store.DiscoverySnapshot{}, fmt.Errorf("feed discovery is not configured")
	}

	snapshot := store.DiscoverySnapshot{}
	if loadMore {
		existing, err := o.deps.Store.LoadDiscovery()
		if err != nil {
			return store.DiscoverySnapshot{}, err
		}
		snapshot = existing
	}

	articles, err := o.deps.Feeds.FetchLatest(ctx, o.deps.Defaults.FeedMaxAgeDays)
	if err != nil {
		return store.DiscoverySnapshot{}, err
	}

	return o.mergeDiscovery(snapshot, articles, nil)
}

// mergeDiscovery appends articles whose titles are not already present
// (compared case-insensitively) and persists the result.
func (o *Orchestrator) mergeDiscovery(snapshot store.DiscoverySnapshot, articles []core.FoundArticle, sources []core.GroundingSource) (store.DiscoverySnapshot, error) {
	seen := make(map[string]struct{}, len(snapshot.Articles))
	for _, a := range snapshot.Articles {
		seen[titleKey(a.Title)] = struct{}{}
	}
	for _, a := range articles {
		key := titleKey(a.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		snapshot.Articles = append(snapshot.Articles, a)
	}
	snapshot.Sources = append(snapshot.Sources, sources...)

	if err := o.deps.Store.SaveDiscovery(snapshot); err != nil {
		return store.DiscoverySnapshot{}, err
	}
	return snapshot, nil
}

// SelectTopic loads the indexed discovery result into the draft and
// searches for matching images. A failed or empty image search is a soft
// failure: the placeholder stays and the advisory string is returned.
func (o *Orchestrator) SelectTopic(ctx context.Context, index int) (core.Draft, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot, err := o.deps.Store.LoadDiscovery()
	if err != nil {
		return core.Draft{}, "", err
	}
	if index < 0 || index >= len(snapshot.Articles) {
		return core.Draft{}, "", fmt.Errorf("no discovered topic at index %d", index)
	}
	article := snapshot.Articles[index]

	draft, err := o.deps.Store.LoadDraft()
	if err != nil {
		return core.Draft{}, "", err
	}

	draft.Headline = article.Title
	draft.Summary = article.Summary
	draft.NewsURL = article.SourceURL
	draft.ImageURL = PlaceholderImageURL
	draft.ImageOptions = []string{PlaceholderImageURL}
	if draft, err = o.saveDraft(draft); err != nil {
		return core.Draft{}, "", err
	}

	query := article.ImageQuery
	if query == "" {
		query = article.Title
	}

	urls, _, err := o.deps.Search.SearchImages(ctx, query, o.deps.Defaults.SearchMaxResults)
	if err != nil {
		logger.Warn("image search failed after topic selection", "query", query, "error", err)
		return draft, AdvisoryNoImages, nil
	}

	usable := o.preloadFilter(ctx, urls)
	if len(usable) == 0 {
		return draft, AdvisoryNoImages, nil
	}

	draft.ImageURL = usable[0]
	draft.ImageOptions = usable
	if draft, err = o.saveDraft(draft); err != nil {
		return core.Draft{}, "", err
	}
	return draft, "", nil
}

// FindImages searches for new image candidates and merges them into the
// candidate list. A search never changes the draft image; a candidate
// only becomes the image through ChooseImage. An empty result leaves the
// draft untouched and returns the advisory.
func (o *Orchestrator) FindImages(ctx context.Context, query string) (core.Draft, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	draft, err := o.deps.Store.LoadDraft()
	if err != nil {
		return core.Draft{}, "", err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		query = draft.Headline
	}
	if query == "" {
		return core.Draft{}, "", fmt.Errorf("an image search query or a headline is required")
	}

	urls, _, err := o.deps.Search.SearchImages(ctx, query, o.deps.Defaults.SearchMaxResults)
	if err != nil {
		return core.Draft{}, "", err
	}

	usable := o.preloadFilter(ctx, urls)
	if len(usable) == 0 {
		return draft, AdvisoryNoImages, nil
	}

	draft.ImageOptions = mergeImageOptions(draft.ImageOptions, usable)
	draft, err = o.saveDraft(draft)
	return draft, "", err
}

// ChooseImage makes an existing candidate the draft image and moves it
// to the front of the list.
func (o *Orchestrator) ChooseImage(imageURL string) (core.Draft, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return core.Draft{}, fmt.Errorf("an image URL is required")
	}

	draft, err := o.deps.Store.LoadDraft()
	if err != nil {
		return core.Draft{}, err
	}

	draft.ImageURL = imageURL
	draft.ImageOptions = promoteImage(draft.ImageOptions, imageURL)
	return o.saveDraft(draft)
}

// GenerateImage creates an AI image from the draft headline, makes it
// the draft image, and displaces any earlier generated image while
// keeping the remote candidates.
func (o *Orchestrator) GenerateImage(ctx context.Context) (core.Draft, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	draft, err := o.deps.Store.LoadDraft()
	if err != nil {
		return core.Draft{}, err
	}
	if draft.Headline == "" {
		return core.Draft{}, ErrMissingHeadline
	}

	dataURL, err := o.deps.AI.GenerateImage(ctx, draft.Headline)
	if err != nil {
		return core.Draft{}, err
	}

	options := []string{dataURL}
	for _, u := range draft.ImageOptions {
		if strings.HasPrefix(u, "data:") {
			continue
		}
		options = append(options, u)
	}

	draft.ImageURL = dataURL
	draft.ImageOptions = options
	return o.saveDraft(draft)
}

// PublishRequest carries the inputs of a publish call.
type PublishRequest struct {
	Status core.PublishStatus
	// CapturedImage is the rendered graphic as a data URL, when the
	// caller composed one; empty falls back to the draft image.
	CapturedImage string
}

// Publish uploads the final image and dispatches the payload to the
// webhook selected by the status. The draft survives publication
// unchanged so the item can be re-queued or edited further. A successful
// publish starts a cool-down during which further publishes are refused.
func (o *Orchestrator) Publish(ctx context.Context, req PublishRequest) (core.WebhookPayload, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.published {
		return core.WebhookPayload{}, ErrPublishCoolDown
	}

	draft, err := o.deps.Store.LoadDraft()
	if err != nil {
		return core.WebhookPayload{}, err
	}
	if !draft.Publishable() {
		return core.WebhookPayload{}, ErrNotPublishable
	}

	status := req.Status
	if status != core.StatusPost {
		status = core.StatusQueue
	}

	webhookURL, authToken, err := o.resolveWebhook(status)
	if err != nil {
		return core.WebhookPayload{}, err
	}

	imageRef := req.CapturedImage
	if imageRef == "" {
		imageRef = draft.ImageURL
	}
	if imageRef == "" {
		return core.WebhookPayload{}, fmt.Errorf("the draft has no image to publish")
	}

	hostedURL, err := o.deps.Uploader.Upload(ctx, imageRef)
	if err != nil {
		return core.WebhookPayload{}, fmt.Errorf("image upload failed: %w", err)
	}

	payload := core.WebhookPayload{
		Headline: draft.Headline,
		Summary:  draft.Summary,
		ImageURL: hostedURL,
		NewsLink: draft.NewsURL,
		Status:   status,
	}

	if err := o.deps.Webhooks.Send(ctx, payload, webhookURL, authToken); err != nil {
		return core.WebhookPayload{}, err
	}

	o.published = true
	time.AfterFunc(o.deps.CoolDown, func() {
		o.mu.Lock()
		o.published = false
		o.mu.Unlock()
	})

	return payload, nil
}

// Settings returns the four editable settings, falling back to the
// configured defaults where nothing has been stored.
func (o *Orchestrator) Settings() (map[string]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	fallbacks := map[string]string{
		store.SettingQueueWebhookURL:   o.deps.Defaults.QueueWebhookURL,
		store.SettingPostNowWebhookURL: o.deps.Defaults.PostNowWebhookURL,
		store.SettingAuthToken:         o.deps.Defaults.AuthToken,
		store.SettingGeminiAPIKey:      "",
	}

	out := make(map[string]string, len(fallbacks))
	for name, fallback := range fallbacks {
		value, err := o.deps.Store.GetSetting(name, fallback)
		if err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, nil
}

// UpdateSettings persists the provided settings; unknown names are
// rejected so typos never create orphan entries.
func (o *Orchestrator) UpdateSettings(values map[string]string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for name, value := range values {
		switch name {
		case store.SettingQueueWebhookURL, store.SettingPostNowWebhookURL,
			store.SettingAuthToken, store.SettingGeminiAPIKey:
			if err := o.deps.Store.SetSetting(name, value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown setting: %s", name)
		}
	}
	return nil
}

// resolveWebhook picks the endpoint and token for a status, preferring
// stored settings over configured defaults.
func (o *Orchestrator) resolveWebhook(status core.PublishStatus) (string, string, error) {
	settingName := store.SettingQueueWebhookURL
	fallback := o.deps.Defaults.QueueWebhookURL
	if status == core.StatusPost {
		settingName = store.SettingPostNowWebhookURL
		fallback = o.deps.Defaults.PostNowWebhookURL
	}

	webhookURL, err := o.deps.Store.GetSetting(settingName, fallback)
	if err != nil {
		return "", "", err
	}
	if webhookURL == "" {
		return "", "", fmt.Errorf("no webhook URL configured for status %s", status)
	}

	authToken, err := o.deps.Store.GetSetting(store.SettingAuthToken, o.deps.Defaults.AuthToken)
	if err != nil {
		return "", "", err
	}
	return webhookURL, authToken, nil
}

// preloadFilter drops candidates the preload hook rejects. Without a
// hook all candidates pass.
func (o *Orchestrator) preloadFilter(ctx context.Context, urls []string) []string {
	if o.deps.Preload == nil {
		return urls
	}
	var usable []string
	for _, u := range urls {
		if err := o.deps.Preload(ctx, u); err != nil {
			logger.Debug("dropping image candidate that failed to load", "url", u, "error", err)
			continue
		}
		usable = append(usable, u)
	}
	return usable
}

func (o *Orchestrator) saveDraft(draft core.Draft) (core.Draft, error) {
	draft.UpdatedAt = time.Now().UTC()
	if err := o.deps.Store.SaveDraft(draft); err != nil {
		return core.Draft{}, err
	}
	return draft, nil
}

// promoteImage moves url to the front, deduplicating exact matches.
func promoteImage(options []string, url string) []string {
	out := []string{url}
	for _, u := range options {
		if u == url {
			continue
		}
		out = append(out, u)
	}
	return out
}

// mergeImageOptions appends extras not already present.
func mergeImageOptions(options, extras []string) []string {
	seen := make(map[string]struct{}, len(options))
	for _, u := range options {
		seen[u] = struct{}{}
	}
	for _, u := range extras {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		options = append(options, u)
	}
	return options
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
