package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"newsdesk/internal/core"
)

type stubGateway struct {
	urls    []string
	sources []core.GroundingSource
	err     error
}

func (s *stubGateway) FindImages(ctx context.Context, query string) ([]string, []core.GroundingSource, error) {
	return s.urls, s.sources, s.err
}

func TestFactoryCreatesProviders(t *testing.T) {
	factory := NewProviderFactory()

	tests := []struct {
		name         string
		providerType ProviderType
		gateway      GeminiSearcher
		config       map[string]string
		wantErr      error
	}{
		{"gemini", ProviderTypeGemini, &stubGateway{}, nil, nil},
		{"gemini is the default", "", &stubGateway{}, nil, nil},
		{"gemini without gateway", ProviderTypeGemini, nil, nil, ErrMissingGateway},
		{"googlecse", ProviderTypeGoogleCSE, nil, map[string]string{"api_key": "k", "search_id": "id"}, nil},
		{"googlecse missing key", ProviderTypeGoogleCSE, nil, map[string]string{"search_id": "id"}, ErrMissingAPIKey},
		{"googlecse missing id", ProviderTypeGoogleCSE, nil, map[string]string{"api_key": "k"}, ErrMissingSearchID},
		{"mock", ProviderTypeMock, nil, nil, nil},
		{"unknown", ProviderType("bing"), nil, nil, ErrUnsupportedProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := factory.CreateProvider(tt.providerType, tt.gateway, tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateProvider() error = %v, expected %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && provider == nil {
				t.Error("CreateProvider() returned a nil provider without error")
			}
		})
	}
}

func TestGeminiProviderTruncates(t *testing.T) {
	gateway := &stubGateway{urls: []string{"a", "b", "c", "d"}}
	provider := NewGeminiProvider(gateway)

	urls, _, err := provider.SearchImages(context.Background(), "flood", 2)
	if err != nil {
		t.Fatalf("SearchImages() error = %v", err)
	}
	if len(urls) != 2 || urls[0] != "a" {
		t.Errorf("SearchImages() = %v", urls)
	}
}

func TestGeminiProviderPropagatesError(t *testing.T) {
	gateway := &stubGateway{err: errors.New("boom")}
	provider := NewGeminiProvider(gateway)

	_, _, err := provider.SearchImages(context.Background(), "flood", 9)
	if err == nil {
		t.Error("SearchImages() expected an error")
	}
}

func TestGoogleCSEProviderSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("searchType"); got != "image" {
			t.Errorf("searchType = %q, expected image", got)
		}
		if got := r.URL.Query().Get("q"); got != "flood" {
			t.Errorf("q = %q", got)
		}
		_, _ = w.Write([]byte(`{"items":[{"link":"https://img.example.com/1.jpg","title":"One","image":{"contextLink":"https://example.com/one"}}]}`))
	}))
	defer srv.Close()

	provider := NewGoogleCSEProvider("key", "id")
	provider.baseURL = srv.URL

	urls, sources, err := provider.SearchImages(context.Background(), "flood", 5)
	if err != nil {
		t.Fatalf("SearchImages() error = %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://img.example.com/1.jpg" {
		t.Errorf("SearchImages() urls = %v", urls)
	}
	if len(sources) != 1 || sources[0].URI != "https://example.com/one" {
		t.Errorf("SearchImages() sources = %v", sources)
	}
}

func TestGoogleCSEProviderRateLimitsConcurrentCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	provider := NewGoogleCSEProvider("key", "id")
	provider.baseURL = srv.URL
	provider.rateLimit = 30 * time.Millisecond

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := provider.SearchImages(context.Background(), "flood", 3); err != nil {
				t.Errorf("SearchImages() error = %v", err)
			}
		}()
	}
	wg.Wait()

	// Three calls spaced 30ms apart cannot finish inside 60ms.
	if elapsed := time.Since(start); elapsed < 2*provider.rateLimit {
		t.Errorf("3 concurrent calls finished in %v, expected the rate limit to space them", elapsed)
	}
}

func TestMockProvider(t *testing.T) {
	provider := NewMockProvider()

	urls, _, err := provider.SearchImages(context.Background(), "anything", 9)
	if err != nil {
		t.Fatalf("SearchImages() error = %v", err)
	}
	if len(urls) == 0 {
		t.Error("SearchImages() returned no canned results")
	}
}
