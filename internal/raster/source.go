package raster

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Source loads an elevation raster.
type Source interface {
	Load(ctx context.Context) (*Georaster, error)
	String() string
}

// NewSource returns an HTTPSource for http(s) locations and a FileSource otherwise.
func NewSource(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return &HTTPSource{
			URL:        location,
			httpClient: &http.Client{Timeout: timeout},
		}
	}
	return FileSource(location)
}

// FileSource reads an ASCII grid from the local filesystem.
type FileSource string

func (s FileSource) Load(_ context.Context) (*Georaster, error) {
	f, err := os.Open(string(s))
	if err != nil {
		return nil, fmt.Errorf("open raster: %w", err)
	}
	defer f.Close()
	return load(f)
}

func (s FileSource) String() string { return string(s) }

// HTTPSource fetches an ASCII grid over HTTP.
type HTTPSource struct {
	URL        string
	httpClient *http.Client
}

func (s *HTTPSource) Load(ctx context.Context) (*Georaster, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch raster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch raster: status %d: %s", resp.StatusCode, body)
	}
	return load(resp.Body)
}

func (s *HTTPSource) String() string { return s.URL }

func load(r io.Reader) (*Georaster, error) {
	g, err := ParseASCIIGrid(r)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("validate raster: %w", err)
	}
	return g, nil
}
