package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Fetch error kinds.
const (
	KindNetwork     = "network"
	KindNotFound    = "not_found"
	KindClient      = "client"
	KindServer      = "server"
	KindContentType = "content_type"
	KindRead        = "read"
)

// Source returns the raw JSON document for one category.
type Source interface {
	Fetch(ctx context.Context, category Category) ([]byte, error)
}

// FetchError describes why a category could not be fetched.
type FetchError struct {
	Category   Category
	Kind       string
	StatusCode int
	Underlying error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s failed [%s] status %d: %v", e.Category, e.Kind, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("fetch %s failed [%s]: %v", e.Category, e.Kind, e.Underlying)
}

func (e *FetchError) Unwrap() error {
	return e.Underlying
}

// HTTPSource fetches category files from a static file host.
type HTTPSource struct {
	baseURL    string
	dataPath   string
	client     *http.Client
	fetchCount int64
	fetchMutex sync.Mutex
}

func NewHTTPSource(baseURL, dataPath string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL:  baseURL,
		dataPath: dataPath,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// IncrementFetch safely increments the fetch counter
func (s *HTTPSource) IncrementFetch() {
	s.fetchMutex.Lock()
	s.fetchCount++
	s.fetchMutex.Unlock()
}

// FetchCount returns the number of requests issued so far
func (s *HTTPSource) FetchCount() int64 {
	s.fetchMutex.Lock()
	defer s.fetchMutex.Unlock()
	return s.fetchCount
}

// ResetFetchCount resets the fetch counter to zero
func (s *HTTPSource) ResetFetchCount() {
	s.fetchMutex.Lock()
	s.fetchCount = 0
	s.fetchMutex.Unlock()
}

// URL returns the location of a category file.
func (s *HTTPSource) URL(category Category) (string, error) {
	parts := []string{string(category) + ".json"}
	if s.dataPath != "" {
		parts = append([]string{s.dataPath}, parts...)
	}
	return url.JoinPath(s.baseURL, parts...)
}

func (s *HTTPSource) Fetch(ctx context.Context, category Category) ([]byte, error) {
	u, err := s.URL(category)
	if err != nil {
		return nil, &FetchError{Category: category, Kind: KindClient, Underlying: fmt.Errorf("build url: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Category: category, Kind: KindClient, Underlying: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	s.IncrementFetch()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Category: category, Kind: KindNetwork, Underlying: fmt.Errorf("failed to make request: %w", err)}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("category", string(category)).
		Int("status_code", resp.StatusCode).
		Str("content_type", resp.Header.Get("Content-Type")).
		Msg("Received catalog response")

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{
			Category:   category,
			Kind:       categorizeStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Underlying: fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return nil, &FetchError{
			Category:   category,
			Kind:       KindContentType,
			StatusCode: resp.StatusCode,
			Underlying: fmt.Errorf("invalid content type: %q", contentType),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Category: category, Kind: KindRead, Underlying: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}

func categorizeStatus(statusCode int) string {
	switch {
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode >= 500:
		return KindServer
	default:
		return KindClient
	}
}

// DirSource reads category files from a local directory.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Fetch(ctx context.Context, category Category) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Category: category, Kind: KindNetwork, Underlying: err}
	}
	path := filepath.Join(s.dir, string(category)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		kind := KindRead
		if errors.Is(err, os.ErrNotExist) {
			kind = KindNotFound
		}
		return nil, &FetchError{Category: category, Kind: kind, Underlying: err}
	}
	return data, nil
}
