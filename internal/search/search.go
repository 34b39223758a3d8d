package search

import (
	"context"

	"newsdesk/internal/core"
)

// Provider is the unified interface for image search backends. A provider
// returns direct image-file URLs for a query; an empty result list is a
// valid outcome, distinct from a failed call.
type Provider interface {
	// SearchImages finds up to maxResults direct image URLs for the query.
	SearchImages(ctx context.Context, query string, maxResults int) ([]string, []core.GroundingSource, error)

	// GetName returns the name of the search provider.
	GetName() string
}

// ProviderType represents the type of image search provider.
type ProviderType string

const (
	ProviderTypeGemini    ProviderType = "gemini"
	ProviderTypeGoogleCSE ProviderType = "googlecse"
	ProviderTypeMock      ProviderType = "mock"
)

// GeminiSearcher is the slice of the AI gateway the gemini provider needs.
type GeminiSearcher interface {
	FindImages(ctx context.Context, query string) ([]string, []core.GroundingSource, error)
}

// ProviderFactory creates image search providers based on type and
// configuration.
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory.
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates an image search provider of the specified type.
// The gemini provider delegates to the AI gateway; the googlecse provider
// calls the Custom Search REST API with image search enabled.
func (f *ProviderFactory) CreateProvider(providerType ProviderType, gateway GeminiSearcher, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypeGemini, "":
		if gateway == nil {
			return nil, ErrMissingGateway
		}
		return NewGeminiProvider(gateway), nil
	case ProviderTypeGoogleCSE:
		apiKey, exists := config["api_key"]
		if !exists || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		searchID, exists := config["search_id"]
		if !exists || searchID == "" {
			return nil, ErrMissingSearchID
		}
		return NewGoogleCSEProvider(apiKey, searchID), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// GeminiProvider implements Provider on top of the AI gateway's
// search-grounded image curation call.
type GeminiProvider struct {
	gateway GeminiSearcher
}

// NewGeminiProvider creates a provider backed by the AI gateway.
func NewGeminiProvider(gateway GeminiSearcher) *GeminiProvider {
	return &GeminiProvider{gateway: gateway}
}

// GetName returns the name of this provider.
func (g *GeminiProvider) GetName() string {
	return "Gemini Search Grounding"
}

// SearchImages delegates to the gateway and truncates to maxResults.
func (g *GeminiProvider) SearchImages(ctx context.Context, query string, maxResults int) ([]string, []core.GroundingSource, error) {
	urls, sources, err := g.gateway.FindImages(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	if maxResults > 0 && len(urls) > maxResults {
		urls = urls[:maxResults]
	}
	return urls, sources, nil
}
