package search

import "errors"

var (
	// ErrMissingAPIKey is returned when a required API key is not provided
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrMissingSearchID is returned when a required search ID is not provided
	ErrMissingSearchID = errors.New("search ID is required")

	// ErrMissingGateway is returned when the gemini provider is requested
	// without an AI gateway to delegate to
	ErrMissingGateway = errors.New("AI gateway is required for the gemini provider")

	// ErrUnsupportedProvider is returned when an unsupported provider type is specified
	ErrUnsupportedProvider = errors.New("unsupported image search provider")
)
