package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultDownloadName = "download"

// Download fetches a binary resource (PDF, CSV export) and saves it as dir/filename.
// It sends the bearer token but never refreshes or retries. An empty filename becomes
// "download"; a name without an extension gets one from the sniffed content.
func (c *Client) Download(ctx context.Context, path, filename, dir string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if tok := c.Session.Access(); tok != "" {
		httpReq.Header.Set("Authorization", "Bearer "+tok)
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.Logger.Error("download failed",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode))
		return "", &APIError{
			Status: resp.StatusCode,
			Body:   map[string]any{"detail": statusText(resp)},
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	name := filepath.Base(filename)
	if filename == "" || name == "." || name == string(filepath.Separator) {
		name = defaultDownloadName
	}
	if filepath.Ext(name) == "" {
		name += mimetype.Detect(data).Extension()
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	c.Logger.Debug("downloaded", zap.String("file", dest), zap.Int("bytes", len(data)))
	return dest, nil
}

// statusText is the reason phrase the server sent, e.g. "Not Found".
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
