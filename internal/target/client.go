// Package target is a thin client for the destination content store's
// per-type REST collections.
package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Entry is one entity as held by the target store.
type Entry struct {
	ID         int
	DocumentID string
	Attributes map[string]interface{}
}

// Store is the operation surface the migration needs from the target.
type Store interface {
	Create(ctx context.Context, plural string, data map[string]interface{}) (*Entry, error)
	Get(ctx context.Context, plural, documentID string) (*Entry, error)
	Update(ctx context.Context, plural, documentID string, data map[string]interface{}) (*Entry, error)
}

// Uploader is the media upload surface used by the remote asset provider.
type Uploader interface {
	Upload(ctx context.Context, filePath string) (int, error)
}

// StatusError is returned when the store rejects a request. The status and
// body are preserved for the run's error log.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store rejected request: status %d: %s", e.Status, e.Body)
}

// Client talks to the target store over HTTP with bearer-token auth.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client for the given base URL and credential.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Create posts a new entity into the named collection.
func (c *Client) Create(ctx context.Context, plural string, data map[string]interface{}) (*Entry, error) {
	return c.send(ctx, http.MethodPost, fmt.Sprintf("%s/api/%s", c.baseURL, plural), data)
}

// Get reads the current state of an entity.
func (c *Client) Get(ctx context.Context, plural, documentID string) (*Entry, error) {
	return c.send(ctx, http.MethodGet, fmt.Sprintf("%s/api/%s/%s", c.baseURL, plural, documentID), nil)
}

// Update writes the full representation of an entity back.
func (c *Client) Update(ctx context.Context, plural, documentID string, data map[string]interface{}) (*Entry, error) {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("%s/api/%s/%s", c.baseURL, plural, documentID), data)
}

func (c *Client) send(ctx context.Context, method, url string, data map[string]interface{}) (*Entry, error) {
	var body io.Reader
	if data != nil {
		payload, err := json.Marshal(map[string]interface{}{"data": data})
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	return decodeEntry(raw)
}

// decodeEntry unwraps the store's {"data": {...}} envelope.
func decodeEntry(raw []byte) (*Entry, error) {
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("response has no data")
	}

	entry := &Entry{Attributes: envelope.Data}
	if id, ok := envelope.Data["id"].(float64); ok {
		entry.ID = int(id)
	}
	if docID, ok := envelope.Data["documentId"].(string); ok {
		entry.DocumentID = docID
	}
	return entry, nil
}

// Upload posts a file to the store's upload endpoint and returns the
// created media id.
func (c *Client) Upload(ctx context.Context, filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open asset file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", filepath.Base(filePath))
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return 0, err
	}
	if err := writer.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	var uploaded []struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(raw, &uploaded); err != nil {
		return 0, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if len(uploaded) == 0 {
		return 0, fmt.Errorf("upload response is empty")
	}
	return uploaded[0].ID, nil
}
