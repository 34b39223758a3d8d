package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/feeds"
	"newsdesk/internal/fetch"
	"newsdesk/internal/llm"
	"newsdesk/internal/media"
	"newsdesk/internal/search"
	"newsdesk/internal/store"
	"newsdesk/internal/webhook"
	"newsdesk/internal/workflow"
)

// app bundles the wired workflow and the resources it owns.
type app struct {
	flow  *workflow.Orchestrator
	store *store.Store
	cfg   *config.Config
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// buildApp wires the orchestrator from configuration and durable
// settings. When needAI is false, commands that never reach the model
// (publish, settings, review, feed discovery) still work without a
// Gemini key.
func buildApp(ctx context.Context, needAI bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data store: %w", err)
	}

	apiKey, err := st.GetSetting(store.SettingGeminiAPIKey, cfg.AI.Gemini.APIKey)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var gateway *llm.Client
	if apiKey != "" {
		gateway, err = llm.NewClient(ctx, apiKey, cfg.AI.Gemini.Model, cfg.AI.Gemini.ImageModel)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	} else if needAI {
		_ = st.Close()
		return nil, fmt.Errorf("no Gemini API key configured; set GEMINI_API_KEY or store it with 'newsdesk settings set %s <key>'", store.SettingGeminiAPIKey)
	}

	var provider search.Provider
	if gateway != nil || cfg.Search.Provider != "gemini" {
		factory := search.NewProviderFactory()
		provider, err = factory.CreateProvider(
			search.ProviderType(cfg.Search.Provider),
			gateway,
			map[string]string{
				"api_key":   cfg.Search.Google.APIKey,
				"search_id": cfg.Search.Google.SearchID,
			},
		)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to create image search provider: %w", err)
		}
	}

	deps := workflow.Deps{
		Search:   provider,
		Uploader: media.NewUploader(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.UploadPreset, cfg.Media.Folder, cfg.MediaTimeout()),
		Webhooks: webhook.NewDispatcher(cfg.WebhookTimeout()),
		Fetcher:  fetch.NewFetcher(cfg.Feeds.UserAgent, cfg.FeedTimeout()),
		Feeds:    feeds.NewReader(cfg.Feeds.Sources, cfg.Feeds.UserAgent, cfg.FeedTimeout(), cfg.Feeds.MaxItems),
		Store:    st,
		Defaults: workflow.Defaults{
			QueueWebhookURL:   cfg.Webhooks.QueueURL,
			PostNowWebhookURL: cfg.Webhooks.PostNowURL,
			AuthToken:         cfg.Webhooks.AuthToken,
			SearchMaxResults:  cfg.Search.MaxResults,
		},
		Preload: preloadImage,
	}
	if gateway != nil {
		deps.AI = gateway
	}

	return &app{
		flow:  workflow.NewOrchestrator(deps),
		store: st,
		cfg:   cfg,
	}, nil
}

// preloadImage verifies an image candidate actually responds before it
// replaces the current draft image.
func preloadImage(ctx context.Context, imageURL string) error {
	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, imageURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("image URL answered status %d", resp.StatusCode)
	}
	return nil
}
