// Package media uploads proof-of-delivery photos to the image CDN.
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

// Transformation applied to every delivery photo on upload: scale to
// 1000px wide with automatic quality and format selection.
const deliveryTransformation = "w_1000,c_scale,q_auto,f_auto"

// Uploader stores a delivery photo and returns its public URL.
type Uploader interface {
	UploadDeliveryImage(ctx context.Context, deliveryID int64, filename string, data []byte) (string, error)
}

// Client wraps the image CDN upload API.
type Client struct {
	uploadURL  string
	apiKey     string
	apiSecret  string
	folder     string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient constructs a new client.
func NewClient(uploadURL, apiKey, apiSecret, folder string) *Client {
	return &Client{
		uploadURL: uploadURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// Enabled reports whether the client is configured to upload at all.
func (c *Client) Enabled() bool {
	return c.uploadURL != ""
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// UploadDeliveryImage stores a delivery photo under a per-delivery public ID
// and returns the served URL. The public ID carries an upload timestamp so
// repeated completions of the same delivery never overwrite each other.
func (c *Client) UploadDeliveryImage(ctx context.Context, deliveryID int64, filename string, data []byte) (string, error) {
	publicID := fmt.Sprintf("delivery_%d_%d", deliveryID, c.now().UnixMilli())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return "", err
	}
	fields := map[string]string{
		"api_key":        c.apiKey,
		"api_secret":     c.apiSecret,
		"folder":         c.folder,
		"public_id":      publicID,
		"transformation": deliveryTransformation,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload response missing secure_url")
	}
	return result.SecureURL, nil
}
