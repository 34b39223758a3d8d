package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey indicates no Gemini API key was configured. The
	// check runs before any network call.
	ErrMissingAPIKey = errors.New("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in the config file")

	// ErrInvalidResponse indicates the model output could not be parsed
	// as JSON after extraction.
	ErrInvalidResponse = errors.New("the AI returned an invalid response that could not be parsed as JSON")

	// ErrIncompleteResponse indicates the model output parsed as JSON but
	// required fields are missing or empty.
	ErrIncompleteResponse = errors.New("the AI response is missing required fields")

	// ErrEmptyResponse indicates the model returned no text at all.
	ErrEmptyResponse = errors.New("the API returned an empty response")
)

// ModelError is an error the model itself reported as a structured
// payload, used by the URL-processing call.
type ModelError struct {
	Message string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("AI reported an error: %s", e.Message)
}
