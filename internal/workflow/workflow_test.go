package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"newsdesk/internal/core"
	"newsdesk/internal/fetch"
	"newsdesk/internal/store"
)

type fakeAI struct {
	summary      string
	summaryErr   error
	processed    core.ProcessedArticle
	processedErr error
	topics       []core.FoundArticle
	topicSources []core.GroundingSource
	topicsErr    error
	imageDataURL string
	imageErr     error

	summarizeCalls int
	processCalls   int
	discoverCalls  int
	lastParams     core.DiscoverParams
}

func (f *fakeAI) Summarize(ctx context.Context, newsURL, headline string) (string, error) {
	f.summarizeCalls++
	return f.summary, f.summaryErr
}

func (f *fakeAI) DiscoverTopics(ctx context.Context, params core.DiscoverParams) ([]core.FoundArticle, []core.GroundingSource, error) {
	f.discoverCalls++
	f.lastParams = params
	return f.topics, f.topicSources, f.topicsErr
}

func (f *fakeAI) ProcessArticleURL(ctx context.Context, newsURL string) (core.ProcessedArticle, error) {
	f.processCalls++
	return f.processed, f.processedErr
}

func (f *fakeAI) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return f.imageDataURL, f.imageErr
}

type fakeSearch struct {
	urls  []string
	err   error
	calls int
	query string
}

func (f *fakeSearch) SearchImages(ctx context.Context, query string, maxResults int) ([]string, []core.GroundingSource, error) {
	f.calls++
	f.query = query
	urls := f.urls
	if maxResults > 0 && len(urls) > maxResults {
		urls = urls[:maxResults]
	}
	return urls, nil, f.err
}

type fakeUploader struct {
	hostedURL string
	err       error
	uploaded  []string
}

func (f *fakeUploader) Upload(ctx context.Context, imageRef string) (string, error) {
	f.uploaded = append(f.uploaded, imageRef)
	return f.hostedURL, f.err
}

type fakeWebhook struct {
	err      error
	payloads []core.WebhookPayload
	urls     []string
	tokens   []string
}

func (f *fakeWebhook) Send(ctx context.Context, payload core.WebhookPayload, webhookURL, authToken string) error {
	f.payloads = append(f.payloads, payload)
	f.urls = append(f.urls, webhookURL)
	f.tokens = append(f.tokens, authToken)
	return f.err
}

type fakeFetcher struct {
	meta fetch.ArticleMeta
	err  error
}

func (f *fakeFetcher) FetchArticleMeta(ctx context.Context, articleURL string) (fetch.ArticleMeta, error) {
	return f.meta, f.err
}

type fakeFeeds struct {
	articles []core.FoundArticle
	err      error
}

func (f *fakeFeeds) FetchLatest(ctx context.Context, maxAgeDays int) ([]core.FoundArticle, error) {
	return f.articles, f.err
}

// memStore is an in-memory Storage for orchestrator tests.
type memStore struct {
	settings  map[string]string
	draft     *core.Draft
	discovery store.DiscoverySnapshot
}

func newMemStore() *memStore {
	return &memStore{settings: map[string]string{}}
}

func (m *memStore) GetSetting(name, fallback string) (string, error) {
	if v, ok := m.settings[name]; ok {
		return v, nil
	}
	return fallback, nil
}

func (m *memStore) SetSetting(name, value string) error {
	m.settings[name] = value
	return nil
}

func (m *memStore) SaveDraft(draft core.Draft) error {
	m.draft = &draft
	return nil
}

func (m *memStore) LoadDraft() (core.Draft, error) {
	if m.draft == nil {
		return core.NewDraft(), nil
	}
	return *m.draft, nil
}

func (m *memStore) SaveDiscovery(snapshot store.DiscoverySnapshot) error {
	m.discovery = snapshot
	return nil
}

func (m *memStore) LoadDiscovery() (store.DiscoverySnapshot, error) {
	return m.discovery, nil
}

func newTestDeps() (Deps, *fakeAI, *fakeSearch, *fakeUploader, *fakeWebhook, *memStore) {
	ai := &fakeAI{}
	search := &fakeSearch{}
	uploader := &fakeUploader{hostedURL: "https://cdn.example.com/hosted.png"}
	webhooks := &fakeWebhook{}
	st := newMemStore()
	deps := Deps{
		AI:       ai,
		Search:   search,
		Uploader: uploader,
		Webhooks: webhooks,
		Store:    st,
		Defaults: Defaults{
			QueueWebhookURL:   "https://hooks.example.com/queue",
			PostNowWebhookURL: "https://hooks.example.com/post",
			AuthToken:         "secret-token",
		},
		CoolDown: 20 * time.Millisecond,
	}
	return deps, ai, search, uploader, webhooks, st
}

func TestGenerateFullProcess(t *testing.T) {
	deps, ai, _, _, _, _ := newTestDeps()
	ai.processed = core.ProcessedArticle{
		Headline:  "Floods Displace Thousands",
		Summary:   "Heavy rain has displaced thousands.",
		ImageURLs: []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"},
	}
	deps.Fetcher = &fakeFetcher{meta: fetch.ArticleMeta{
		ImageURLs: []string{"https://img.example.com/b.jpg", "https://img.example.com/og.jpg"},
	}}
	o := NewOrchestrator(deps)

	draft, err := o.Generate(context.Background(), "https://news.example.com/floods")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if draft.Headline != "Floods Displace Thousands" {
		t.Errorf("Headline = %q", draft.Headline)
	}
	if draft.NewsURL != "https://news.example.com/floods" {
		t.Errorf("NewsURL = %q", draft.NewsURL)
	}
	if draft.ImageURL != "https://img.example.com/a.jpg" {
		t.Errorf("ImageURL = %q, expected first candidate", draft.ImageURL)
	}
	want := []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg", "https://img.example.com/og.jpg"}
	if len(draft.ImageOptions) != len(want) {
		t.Fatalf("ImageOptions = %v, expected merged deduped %v", draft.ImageOptions, want)
	}
	if ai.summarizeCalls != 0 {
		t.Error("Generate() used the summary-only path unexpectedly")
	}
}

func TestGenerateSummaryOnlyKeepsManualChoices(t *testing.T) {
	deps, ai, _, _, _, st := newTestDeps()
	ai.summary = "Short summary."
	st.draft = &core.Draft{
		ID:       "d1",
		Headline: "Operator Headline",
		ImageURL: "https://img.example.com/manual.jpg",
	}
	o := NewOrchestrator(deps)

	draft, err := o.Generate(context.Background(), "https://news.example.com/story")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if draft.Headline != "Operator Headline" {
		t.Errorf("Headline = %q, expected the manual headline kept", draft.Headline)
	}
	if draft.Summary != "Short summary." {
		t.Errorf("Summary = %q", draft.Summary)
	}
	if len(draft.ImageOptions) != 1 || draft.ImageOptions[0] != "https://img.example.com/manual.jpg" {
		t.Errorf("ImageOptions = %v, expected only the manual image", draft.ImageOptions)
	}
	if ai.processCalls != 0 {
		t.Error("Generate() processed the URL despite manual headline and image")
	}
}

func TestGenerateRequiresURL(t *testing.T) {
	deps, _, _, _, _, _ := newTestDeps()
	o := NewOrchestrator(deps)
	if _, err := o.Generate(context.Background(), "  "); err == nil {
		t.Error("Generate() expected an error without a URL")
	}
}

func TestDiscoverFreshReplacesStored(t *testing.T) {
	deps, ai, _, _, _, st := newTestDeps()
	st.discovery = store.DiscoverySnapshot{Articles: []core.FoundArticle{{Title: "Stale"}}}
	ai.topics = []core.FoundArticle{{Title: "New Topic", ImageQuery: "new topic"}}
	o := NewOrchestrator(deps)

	snapshot, err := o.Discover(context.Background(), core.DiscoverParams{Region: core.RegionBangladesh}, false)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(snapshot.Articles) != 1 || snapshot.Articles[0].Title != "New Topic" {
		t.Errorf("Discover() = %+v, expected a fresh list", snapshot.Articles)
	}
	if len(ai.lastParams.ExistingTitles) != 0 {
		t.Errorf("fresh discovery passed exclusion titles: %v", ai.lastParams.ExistingTitles)
	}
}

func TestDiscoverLoadMoreDeduplicatesTitles(t *testing.T) {
	deps, ai, _, _, _, st := newTestDeps()
	st.discovery = store.DiscoverySnapshot{Articles: []core.FoundArticle{{Title: "Ferry Disaster"}}}
	ai.topics = []core.FoundArticle{
		{Title: "FERRY DISASTER"},
		{Title: "Election Update"},
	}
	o := NewOrchestrator(deps)

	snapshot, err := o.Discover(context.Background(), core.DiscoverParams{}, true)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(snapshot.Articles) != 2 {
		t.Fatalf("Discover() kept %d articles, expected 2: %+v", len(snapshot.Articles), snapshot.Articles)
	}
	if snapshot.Articles[1].Title != "Election Update" {
		t.Errorf("Articles[1] = %q", snapshot.Articles[1].Title)
	}
	if len(ai.lastParams.ExistingTitles) != 1 || ai.lastParams.ExistingTitles[0] != "Ferry Disaster" {
		t.Errorf("ExistingTitles = %v", ai.lastParams.ExistingTitles)
	}
	if len(st.discovery.Articles) != 2 {
		t.Error("merged discovery was not persisted")
	}
}

func TestDiscoverFromFeeds(t *testing.T) {
	deps, _, _, _, _, _ := newTestDeps()
	deps.Feeds = &fakeFeeds{articles: []core.FoundArticle{
		{Title: "Feed Story", SourceURL: "https://example.com/feed-story"},
	}}
	o := NewOrchestrator(deps)

	snapshot, err := o.DiscoverFromFeeds(context.Background(), false)
	if err != nil {
		t.Fatalf("DiscoverFromFeeds() error = %v", err)
	}
	if len(snapshot.Articles) != 1 || snapshot.Articles[0].SourceURL == "" {
		t.Errorf("DiscoverFromFeeds() = %+v", snapshot.Articles)
	}
}

func TestSelectTopicWithImages(t *testing.T) {
	deps, _, search, _, _, st := newTestDeps()
	st.discovery = store.DiscoverySnapshot{Articles: []core.FoundArticle{
		{Title: "Garment Exports Surge", Summary: "Exports are up.", ImageQuery: "garment factory"},
	}}
	search.urls = []string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"}
	o := NewOrchestrator(deps)

	draft, advisory, err := o.SelectTopic(context.Background(), 0)
	if err != nil {
		t.Fatalf("SelectTopic() error = %v", err)
	}
	if advisory != "" {
		t.Errorf("advisory = %q, expected none", advisory)
	}
	if draft.Headline != "Garment Exports Surge" || draft.Summary != "Exports are up." {
		t.Errorf("draft = %+v", draft)
	}
	if draft.NewsURL != "" {
		t.Errorf("NewsURL = %q, expected empty for an AI-discovered topic", draft.NewsURL)
	}
	if draft.ImageURL != "https://img.example.com/1.jpg" {
		t.Errorf("ImageURL = %q", draft.ImageURL)
	}
	if search.query != "garment factory" {
		t.Errorf("search query = %q", search.query)
	}
}

func TestSelectTopicImageSearchSoftFails(t *testing.T) {
	deps, _, search, _, _, st := newTestDeps()
	st.discovery = store.DiscoverySnapshot{Articles: []core.FoundArticle{{Title: "Quiet Story"}}}
	search.err = errors.New("search backend down")
	o := NewOrchestrator(deps)

	draft, advisory, err := o.SelectTopic(context.Background(), 0)
	if err != nil {
		t.Fatalf("SelectTopic() error = %v, expected soft failure", err)
	}
	if advisory != AdvisoryNoImages {
		t.Errorf("advisory = %q", advisory)
	}
	if draft.ImageURL != PlaceholderImageURL {
		t.Errorf("ImageURL = %q, expected the placeholder", draft.ImageURL)
	}
	if len(draft.ImageOptions) != 1 || draft.ImageOptions[0] != PlaceholderImageURL {
		t.Errorf("ImageOptions = %v", draft.ImageOptions)
	}
}

func TestSelectTopicPreloadFiltersBrokenImages(t *testing.T) {
	deps, _, search, _, _, st := newTestDeps()
	st.discovery = store.DiscoverySnapshot{Articles: []core.FoundArticle{{Title: "Topic", ImageQuery: "q"}}}
	search.urls = []string{"https://img.example.com/broken.jpg", "https://img.example.com/ok.jpg"}
	deps.Preload = func(ctx context.Context, imageURL string) error {
		if strings.Contains(imageURL, "broken") {
			return errors.New("404")
		}
		return nil
	}
	o := NewOrchestrator(deps)

	draft, advisory, err := o.SelectTopic(context.Background(), 0)
	if err != nil {
		t.Fatalf("SelectTopic() error = %v", err)
	}
	if advisory != "" {
		t.Errorf("advisory = %q", advisory)
	}
	if draft.ImageURL != "https://img.example.com/ok.jpg" {
		t.Errorf("ImageURL = %q, expected the loadable candidate", draft.ImageURL)
	}
}

func TestSelectTopicIndexOutOfRange(t *testing.T) {
	deps, _, _, _, _, _ := newTestDeps()
	o := NewOrchestrator(deps)
	if _, _, err := o.SelectTopic(context.Background(), 3); err == nil {
		t.Error("SelectTopic() expected an error for an empty discovery list")
	}
}

func TestFindImagesEmptyLeavesDraftUntouched(t *testing.T) {
	deps, _, search, _, _, st := newTestDeps()
	st.draft = &core.Draft{ID: "d1", Headline: "H", ImageURL: "https://img.example.com/current.jpg"}
	search.urls = nil
	o := NewOrchestrator(deps)

	draft, advisory, err := o.FindImages(context.Background(), "empty query")
	if err != nil {
		t.Fatalf("FindImages() error = %v", err)
	}
	if advisory != AdvisoryNoImages {
		t.Errorf("advisory = %q", advisory)
	}
	if draft.ImageURL != "https://img.example.com/current.jpg" {
		t.Errorf("ImageURL = %q, expected unchanged", draft.ImageURL)
	}
}

func TestFindImagesMergesWithoutChangingDraftImage(t *testing.T) {
	deps, _, search, _, _, st := newTestDeps()
	st.draft = &core.Draft{
		ID:           "d1",
		Headline:     "H",
		ImageURL:     "https://img.example.com/current.jpg",
		ImageOptions: []string{"https://img.example.com/current.jpg", "https://img.example.com/old.jpg"},
	}
	search.urls = []string{"https://img.example.com/new.jpg", "https://img.example.com/old.jpg"}
	o := NewOrchestrator(deps)

	draft, advisory, err := o.FindImages(context.Background(), "dhaka skyline")
	if err != nil {
		t.Fatalf("FindImages() error = %v", err)
	}
	if advisory != "" {
		t.Errorf("advisory = %q", advisory)
	}
	if draft.ImageURL != "https://img.example.com/current.jpg" {
		t.Errorf("ImageURL = %q, searching must not change the draft image", draft.ImageURL)
	}
	want := []string{
		"https://img.example.com/current.jpg",
		"https://img.example.com/old.jpg",
		"https://img.example.com/new.jpg",
	}
	if len(draft.ImageOptions) != len(want) {
		t.Fatalf("ImageOptions = %v, expected merged deduped %v", draft.ImageOptions, want)
	}
	for i := range want {
		if draft.ImageOptions[i] != want[i] {
			t.Errorf("ImageOptions[%d] = %q, expected %q", i, draft.ImageOptions[i], want[i])
		}
	}
}

func TestChooseImagePromotesAndDeduplicates(t *testing.T) {
	deps, _, _, _, _, st := newTestDeps()
	st.draft = &core.Draft{
		ID:           "d1",
		ImageOptions: []string{"a", "b", "c", "b"},
	}
	o := NewOrchestrator(deps)

	draft, err := o.ChooseImage("b")
	if err != nil {
		t.Fatalf("ChooseImage() error = %v", err)
	}
	want := []string{"b", "a", "c"}
	if len(draft.ImageOptions) != len(want) {
		t.Fatalf("ImageOptions = %v, expected %v", draft.ImageOptions, want)
	}
	for i := range want {
		if draft.ImageOptions[i] != want[i] {
			t.Errorf("ImageOptions[%d] = %q, expected %q", i, draft.ImageOptions[i], want[i])
		}
	}
	if draft.ImageURL != "b" {
		t.Errorf("ImageURL = %q", draft.ImageURL)
	}
}

func TestGenerateImageDisplacesEarlierGenerated(t *testing.T) {
	deps, ai, _, _, _, st := newTestDeps()
	ai.imageDataURL = "data:image/png;base64,TkVX"
	st.draft = &core.Draft{
		ID:           "d1",
		Headline:     "Monsoon Arrives Early",
		ImageOptions: []string{"data:image/png;base64,T0xE", "https://img.example.com/r.jpg"},
	}
	o := NewOrchestrator(deps)

	draft, err := o.GenerateImage(context.Background())
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	want := []string{"data:image/png;base64,TkVX", "https://img.example.com/r.jpg"}
	if len(draft.ImageOptions) != len(want) || draft.ImageOptions[0] != want[0] || draft.ImageOptions[1] != want[1] {
		t.Errorf("ImageOptions = %v, expected %v", draft.ImageOptions, want)
	}
	if draft.ImageURL != "data:image/png;base64,TkVX" {
		t.Errorf("ImageURL = %q", draft.ImageURL)
	}
}

func TestGenerateImageRequiresHeadline(t *testing.T) {
	deps, _, _, _, _, _ := newTestDeps()
	o := NewOrchestrator(deps)
	if _, err := o.GenerateImage(context.Background()); !errors.Is(err, ErrMissingHeadline) {
		t.Errorf("GenerateImage() error = %v, expected ErrMissingHeadline", err)
	}
}

func TestPublishQueue(t *testing.T) {
	deps, _, _, uploader, webhooks, st := newTestDeps()
	st.draft = &core.Draft{
		ID:       "d1",
		Headline: "Headline",
		Summary:  "Summary",
		ImageURL: "https://img.example.com/pick.jpg",
		NewsURL:  "https://news.example.com/story",
	}
	o := NewOrchestrator(deps)

	payload, err := o.Publish(context.Background(), PublishRequest{Status: core.StatusQueue})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if payload.Status != core.StatusQueue {
		t.Errorf("Status = %q", payload.Status)
	}
	if payload.ImageURL != "https://cdn.example.com/hosted.png" {
		t.Errorf("ImageURL = %q, expected the hosted URL", payload.ImageURL)
	}
	if len(uploader.uploaded) != 1 || uploader.uploaded[0] != "https://img.example.com/pick.jpg" {
		t.Errorf("uploaded = %v", uploader.uploaded)
	}
	if len(webhooks.urls) != 1 || webhooks.urls[0] != "https://hooks.example.com/queue" {
		t.Errorf("webhook URLs = %v", webhooks.urls)
	}
	if webhooks.tokens[0] != "secret-token" {
		t.Errorf("token = %q", webhooks.tokens[0])
	}
	if st.draft.Headline != "Headline" || st.draft.Summary != "Summary" {
		t.Error("Publish() mutated the draft")
	}
}

func TestPublishPostUsesCapturedImageAndPostURL(t *testing.T) {
	deps, _, _, uploader, webhooks, st := newTestDeps()
	st.draft = &core.Draft{ID: "d1", Headline: "H", Summary: "S", ImageURL: "https://img.example.com/x.jpg"}
	o := NewOrchestrator(deps)

	captured := "data:image/png;base64,Q0FQ"
	payload, err := o.Publish(context.Background(), PublishRequest{Status: core.StatusPost, CapturedImage: captured})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if payload.Status != core.StatusPost {
		t.Errorf("Status = %q", payload.Status)
	}
	if uploader.uploaded[0] != captured {
		t.Errorf("uploaded = %q, expected the captured graphic", uploader.uploaded[0])
	}
	if webhooks.urls[0] != "https://hooks.example.com/post" {
		t.Errorf("webhook URL = %q", webhooks.urls[0])
	}
}

func TestPublishGate(t *testing.T) {
	deps, _, _, uploader, webhooks, st := newTestDeps()
	st.draft = &core.Draft{ID: "d1", Headline: "Only a headline"}
	o := NewOrchestrator(deps)

	_, err := o.Publish(context.Background(), PublishRequest{Status: core.StatusQueue})
	if !errors.Is(err, ErrNotPublishable) {
		t.Fatalf("Publish() error = %v, expected ErrNotPublishable", err)
	}
	if len(uploader.uploaded) != 0 || len(webhooks.payloads) != 0 {
		t.Error("Publish() touched the network despite a failed gate")
	}
}

func TestPublishCoolDown(t *testing.T) {
	deps, _, _, _, webhooks, st := newTestDeps()
	st.draft = &core.Draft{ID: "d1", Headline: "H", Summary: "S", ImageURL: "https://img.example.com/x.jpg"}
	o := NewOrchestrator(deps)

	if _, err := o.Publish(context.Background(), PublishRequest{Status: core.StatusQueue}); err != nil {
		t.Fatalf("first Publish() error = %v", err)
	}
	if _, err := o.Publish(context.Background(), PublishRequest{Status: core.StatusQueue}); !errors.Is(err, ErrPublishCoolDown) {
		t.Fatalf("second Publish() error = %v, expected ErrPublishCoolDown", err)
	}

	time.Sleep(50 * time.Millisecond)
	if _, err := o.Publish(context.Background(), PublishRequest{Status: core.StatusQueue}); err != nil {
		t.Fatalf("Publish() after cool-down error = %v", err)
	}
	if len(webhooks.payloads) != 2 {
		t.Errorf("dispatched %d payloads, expected 2", len(webhooks.payloads))
	}
}

func TestPublishFailedDispatchKeepsDraftAndCoolDownClear(t *testing.T) {
	deps, _, _, _, webhooks, st := newTestDeps()
	st.draft = &core.Draft{ID: "d1", Headline: "H", Summary: "S", ImageURL: "https://img.example.com/x.jpg"}
	webhooks.err = errors.New("webhook unreachable")
	o := NewOrchestrator(deps)

	if _, err := o.Publish(context.Background(), PublishRequest{Status: core.StatusQueue}); err == nil {
		t.Fatal("Publish() expected an error")
	}

	webhooks.err = nil
	if _, err := o.Publish(context.Background(), PublishRequest{Status: core.StatusQueue}); err != nil {
		t.Errorf("retry Publish() error = %v, expected no cool-down after failure", err)
	}
}

func TestPublishPrefersStoredWebhookSettings(t *testing.T) {
	deps, _, _, _, webhooks, st := newTestDeps()
	st.draft = &core.Draft{ID: "d1", Headline: "H", Summary: "S", ImageURL: "https://img.example.com/x.jpg"}
	st.settings[store.SettingQueueWebhookURL] = "https://hooks.example.com/custom"
	st.settings[store.SettingAuthToken] = "custom-token"
	o := NewOrchestrator(deps)

	if _, err := o.Publish(context.Background(), PublishRequest{Status: core.StatusQueue}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if webhooks.urls[0] != "https://hooks.example.com/custom" {
		t.Errorf("webhook URL = %q", webhooks.urls[0])
	}
	if webhooks.tokens[0] != "custom-token" {
		t.Errorf("token = %q", webhooks.tokens[0])
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	deps, _, _, _, _, _ := newTestDeps()
	o := NewOrchestrator(deps)

	settings, err := o.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings[store.SettingQueueWebhookURL] != "https://hooks.example.com/queue" {
		t.Errorf("default queue URL = %q", settings[store.SettingQueueWebhookURL])
	}

	if err := o.UpdateSettings(map[string]string{store.SettingAuthToken: "rotated"}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	settings, err = o.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings[store.SettingAuthToken] != "rotated" {
		t.Errorf("auth token = %q", settings[store.SettingAuthToken])
	}

	if err := o.UpdateSettings(map[string]string{"bogus": "x"}); err == nil {
		t.Error("UpdateSettings() accepted an unknown setting name")
	}
}

func TestEditDraftPromotesManualImage(t *testing.T) {
	deps, _, _, _, _, st := newTestDeps()
	st.draft = &core.Draft{ID: "d1", ImageOptions: []string{"a", "b"}}
	o := NewOrchestrator(deps)

	headline := "  Manual Headline  "
	image := "b"
	draft, err := o.EditDraft(DraftEdits{Headline: &headline, ImageURL: &image})
	if err != nil {
		t.Fatalf("EditDraft() error = %v", err)
	}
	if draft.Headline != "Manual Headline" {
		t.Errorf("Headline = %q", draft.Headline)
	}
	if draft.ImageOptions[0] != "b" {
		t.Errorf("ImageOptions = %v", draft.ImageOptions)
	}
}

func TestOperationsAreSerialized(t *testing.T) {
	deps, _, _, _, _, st := newTestDeps()
	st.draft = &core.Draft{ID: "d1", ImageOptions: []string{"a"}}
	o := NewOrchestrator(deps)

	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			_, err := o.ChooseImage(fmt.Sprintf("https://img.example.com/%d.jpg", i))
			done <- err
		}(i)
	}
	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Fatalf("ChooseImage() error = %v", err)
		}
	}
}
