// Package remote implements the file-storage and search-index collaborators
// over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rcliao/draftpad/internal/model"
)

// DefaultTimeout bounds a single request when no client is supplied.
const DefaultTimeout = 30 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// FileClient talks to GET/PUT /api/files/{category}/{filename}.
type FileClient struct {
	baseURL string
	client  *http.Client
}

// NewFileClient creates a client rooted at baseURL, e.g. http://localhost:8080.
func NewFileClient(baseURL string, timeout time.Duration) *FileClient {
	return &FileClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

func (c *FileClient) fileURL(id model.Identity) string {
	return c.baseURL + "/api/files/" + url.PathEscape(id.Category) + "/" + url.PathEscape(id.Filename)
}

// Fetch loads a file. A 404 maps to model.ErrNotFound.
func (c *FileClient) Fetch(ctx context.Context, id model.Identity) (*model.StoredFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id.Path(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("file %s: %w", id.Path(), model.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("fetch", resp)
	}

	var f model.StoredFile
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode file: %w", err)
	}
	f.Category = id.Category
	if f.Filename == "" {
		f.Filename = id.Filename
	}
	return &f, nil
}

// Persist writes req as the file's new content.
func (c *FileClient) Persist(ctx context.Context, id model.Identity, req model.SaveRequest) (*model.StoredFile, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.fileURL(id), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("persist %s: %w", id.Path(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("persist", resp)
	}

	f := model.StoredFile{Category: id.Category, Filename: req.Filename, Content: req.Content}
	// The body is optional; servers that echo the stored file as JSON fill in
	// the version. The write has succeeded either way, so an echo that does
	// not decode leaves the request's view of the file.
	if !isJSON(resp.Header.Get("Content-Type")) {
		return &f, nil
	}
	echo := f
	if err := json.NewDecoder(resp.Body).Decode(&echo); err != nil {
		return &f, nil
	}
	return &echo, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// SearchClient talks to GET /api/v1/search?q=.
type SearchClient struct {
	baseURL string
	client  *http.Client
}

// NewSearchClient creates a client rooted at baseURL.
func NewSearchClient(baseURL string, timeout time.Duration) *SearchClient {
	return &SearchClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

type searchResponse struct {
	Results []model.SearchResult `json:"results"`
}

// Lookup runs a query against the search index.
func (c *SearchClient) Lookup(ctx context.Context, query string) ([]model.SearchResult, error) {
	u := c.baseURL + "/api/v1/search?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("search", resp)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}
	return result.Results, nil
}

func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s error %d: %s", op, resp.StatusCode, strings.TrimSpace(string(b)))
}
