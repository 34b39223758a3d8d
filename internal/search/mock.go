package search

import (
	"context"

	"newsdesk/internal/core"
)

// MockProvider implements Provider for testing purposes.
type MockProvider struct {
	name string
	urls []string
}

// NewMockProvider creates a new mock image search provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "Mock",
		urls: []string{
			"https://example.com/images/one.jpg",
			"https://test.org/images/two.png",
			"https://demo.net/images/three.webp",
		},
	}
}

// GetName returns the name of this provider.
func (m *MockProvider) GetName() string {
	return m.name
}

// SearchImages returns the canned URLs, truncated to maxResults.
func (m *MockProvider) SearchImages(ctx context.Context, query string, maxResults int) ([]string, []core.GroundingSource, error) {
	urls := m.urls
	if maxResults > 0 && len(urls) > maxResults {
		urls = urls[:maxResults]
	}
	return urls, nil, nil
}
