package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Uploader pushes images to Cloudinary via an unsigned upload preset and
// returns their public URLs. The API secret never leaves the account; an
// unsigned preset is all the upload needs.
type Uploader struct {
	cloudName    string
	apiKey       string
	uploadPreset string
	folder       string
	httpClient   *http.Client
	baseURL      string
}

// NewUploader creates a Cloudinary uploader.
func NewUploader(cloudName, apiKey, uploadPreset, folder string, timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Uploader{
		cloudName:    cloudName,
		apiKey:       apiKey,
		uploadPreset: uploadPreset,
		folder:       folder,
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      "https://api.cloudinary.com/v1_1",
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload submits an image to Cloudinary and returns its secure URL. The
// file field accepts a data URL or a remote image URL; Cloudinary fetches
// remote URLs itself. Single best-effort attempt, no retries.
func (u *Uploader) Upload(ctx context.Context, imageRef string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"file":          imageRef,
		"api_key":       u.apiKey,
		"upload_preset": u.uploadPreset,
		"folder":        u.folder,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("cloudinary upload failed with status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error.Message != "" {
			return "", fmt.Errorf("cloudinary upload failed: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("cloudinary upload failed with status %d", resp.StatusCode)
	}

	if parsed.SecureURL == "" {
		return "", fmt.Errorf("cloudinary response did not include a secure URL")
	}
	return parsed.SecureURL, nil
}
