// Package report renders technical sheets as PDF documents through a
// Gotenberg sidecar.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	healthPath  = "/health"
	convertPath = "/forms/chromium/convert/html"

	// Chromium renders a one-page sheet in well under this; the timeout
	// guards against a wedged sidecar, not slow documents.
	renderTimeout = 30 * time.Second
)

// Client talks to the Gotenberg conversion API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the sidecar at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: renderTimeout},
	}
}

// Ping reports whether the sidecar answers its health probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gotenberg: health: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg: health status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts a rendered sheet into a PDF. Gotenberg treats the
// index.html part as the document root.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gotenberg: convert: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gotenberg: convert status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
