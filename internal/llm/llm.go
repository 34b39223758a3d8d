package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"newsdesk/internal/core"
)

const (
	// DefaultModel is the Gemini model used for text and search calls.
	DefaultModel = "gemini-2.5-flash"
	// DefaultImageModel is the Imagen model used for image generation.
	DefaultImageModel = "imagen-3.0-generate-002"
)

// backend abstracts the generative model transport so the gateway logic
// can be exercised without network access.
type backend interface {
	// generateText runs a plain text completion.
	generateText(ctx context.Context, prompt string) (string, error)
	// generateGrounded runs a completion with the Google Search tool
	// enabled and returns grounding sources alongside the text.
	generateGrounded(ctx context.Context, prompt string) (string, []core.GroundingSource, error)
	// generateImage produces raw PNG bytes for a prompt. When no image
	// comes back, the second return value carries the model's reported
	// reason, if any.
	generateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// Client is the sole boundary between the application and the
// generative-AI API. All operations are single best-effort attempts.
type Client struct {
	backend backend
}

// NewClient creates a gateway client for the given API key and models.
// An empty key fails fast before any network call.
func NewClient(ctx context.Context, apiKey, model, imageModel string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{backend: &geminiBackend{
		client:     gClient,
		model:      model,
		imageModel: imageModel,
	}}, nil
}

// Summarize generates the social-media summary for a known article URL
// and headline. An empty model response is an error.
func (c *Client) Summarize(ctx context.Context, newsURL, headline string) (string, error) {
	text, err := c.backend.generateText(ctx, summaryPrompt(newsURL, headline))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	summary := strings.TrimSpace(text)
	if summary == "" {
		return "", fmt.Errorf("gemini API error: %w", ErrEmptyResponse)
	}
	return summary, nil
}

type discoveryResponse struct {
	Articles []core.FoundArticle `json:"articles"`
}

// DiscoverTopics finds up to 5 recent topics via a search-grounded call.
// For the Bangladesh region the first pass restricts results to the
// trusted source allow-list; a zero-article first pass triggers exactly
// one retry without the restriction. Other regions never apply the
// allow-list and never retry.
func (c *Client) DiscoverTopics(ctx context.Context, params core.DiscoverParams) ([]core.FoundArticle, []core.GroundingSource, error) {
	articles, sources, err := c.runDiscovery(ctx, discoveryPrompt(params, true))
	if err != nil {
		return nil, nil, err
	}

	if len(articles) == 0 && params.Region == core.RegionBangladesh {
		articles, sources, err = c.runDiscovery(ctx, discoveryPrompt(params, false))
		if err != nil {
			return nil, nil, err
		}
	}

	return articles, sources, nil
}

func (c *Client) runDiscovery(ctx context.Context, prompt string) ([]core.FoundArticle, []core.GroundingSource, error) {
	text, sources, err := c.backend.generateGrounded(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("gemini API error: %w", err)
	}

	var parsed discoveryResponse
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &parsed); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if parsed.Articles == nil {
		return nil, nil, fmt.Errorf("%w: no articles array in discovery response", ErrIncompleteResponse)
	}

	return parsed.Articles, sources, nil
}

type imageSearchResponse struct {
	ImageURLs []string `json:"imageUrls"`
}

// FindImages searches for up to 9 direct image-file URLs matching the
// query. An empty result list is valid and distinct from a failed call.
func (c *Client) FindImages(ctx context.Context, query string) ([]string, []core.GroundingSource, error) {
	text, sources, err := c.backend.generateGrounded(ctx, imageSearchPrompt(query))
	if err != nil {
		return nil, nil, fmt.Errorf("gemini API error: %w", err)
	}

	var parsed imageSearchResponse
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &parsed); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if parsed.ImageURLs == nil {
		return nil, nil, fmt.Errorf("%w: no imageUrls array in image search response", ErrIncompleteResponse)
	}

	return parsed.ImageURLs, sources, nil
}

type processedResponse struct {
	core.ProcessedArticle
	Error string `json:"error"`
}

// ProcessArticleURL analyzes one article URL with a search-grounded call
// and returns headline, image options, and summary. A structured error
// reported by the model is surfaced as a *ModelError.
func (c *Client) ProcessArticleURL(ctx context.Context, newsURL string) (core.ProcessedArticle, error) {
	text, _, err := c.backend.generateGrounded(ctx, processURLPrompt(newsURL))
	if err != nil {
		return core.ProcessedArticle{}, fmt.Errorf("gemini API error: %w", err)
	}

	var parsed processedResponse
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &parsed); err != nil {
		return core.ProcessedArticle{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if parsed.Error != "" {
		return core.ProcessedArticle{}, &ModelError{Message: parsed.Error}
	}
	if parsed.Headline == "" || len(parsed.ImageURLs) == 0 || parsed.Summary == "" {
		return core.ProcessedArticle{}, fmt.Errorf("%w: need headline, imageUrls, and summary", ErrIncompleteResponse)
	}

	return parsed.ProcessedArticle, nil
}

// GenerateImage produces a 16:9 photorealistic image for the prompt and
// returns it as a base64 data URL. A missing image or a reported filter
// reason is an error.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	imageBytes, reason, err := c.backend.generateImage(ctx, imageGenerationPrompt(prompt))
	if err != nil {
		return "", fmt.Errorf("imagen API error: %w", err)
	}

	if len(imageBytes) == 0 {
		if reason != "" {
			return "", fmt.Errorf("image generation failed. Reason: %s. This is often due to a safety policy violation. Please adjust your prompt", reason)
		}
		return "", fmt.Errorf("the API did not return any generated images. This could be due to a safety policy violation or a temporary API issue")
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageBytes), nil
}

// geminiBackend implements backend against the Gemini API.
type geminiBackend struct {
	client     *genai.Client
	model      string
	imageModel string
}

func (b *geminiBackend) generateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.7)),
		TopP:        genai.Ptr(float32(1)),
		TopK:        genai.Ptr(float32(32)),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (b *geminiBackend) generateGrounded(ctx context.Context, prompt string) (string, []core.GroundingSource, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, config)
	if err != nil {
		return "", nil, err
	}

	var sources []core.GroundingSource
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk.Web != nil {
				sources = append(sources, core.GroundingSource{
					URI:   chunk.Web.URI,
					Title: chunk.Web.Title,
				})
			}
		}
	}

	return resp.Text(), sources, nil
}

func (b *geminiBackend) generateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
		AspectRatio:    "16:9",
	}

	resp, err := b.client.Models.GenerateImages(ctx, b.imageModel, prompt, config)
	if err != nil {
		return nil, "", err
	}

	if len(resp.GeneratedImages) == 0 {
		return nil, "", nil
	}

	first := resp.GeneratedImages[0]
	if first.Image == nil || len(first.Image.ImageBytes) == 0 {
		return nil, first.RAIFilteredReason, nil
	}

	return first.Image.ImageBytes, "", nil
}
