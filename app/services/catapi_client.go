// Package services provides external service integrations such as the upstream image provider client
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nekomata/nekomata/config"
)

// CatAPIClient handles calls against the upstream cat image provider
type CatAPIClient interface {
	// ListImages requests one bounded page of images restricted to items
	// carrying breed metadata.
	ListImages(ctx context.Context) ([]CatImage, error)
	// DownloadImage fetches the raw image bytes at the given URL.
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// CatImage is the typed shape of one item in the provider's list response.
// breeds/temperament may be absent or null upstream; the zero values cover
// both cases without dynamic field access.
type CatImage struct {
	ID     string  `json:"id"`
	URL    string  `json:"url"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Breeds []Breed `json:"breeds"`
}

// Breed carries the per-breed metadata the pipeline consumes
type Breed struct {
	Name        string `json:"name,omitempty"`
	Temperament string `json:"temperament"`
}

// CatAPIClientImpl implements CatAPIClient
type CatAPIClientImpl struct {
	config *config.CatAPIConfig
	client *http.Client
}

// NewCatAPIClient creates a new provider client instance
func NewCatAPIClient(cfg *config.CatAPIConfig) CatAPIClient {
	return &CatAPIClientImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// ListImages requests a bounded batch filtered to items with breed data
func (s *CatAPIClientImpl) ListImages(ctx context.Context) ([]CatImage, error) {
	url := fmt.Sprintf("%s/images/search?limit=%d&has_breeds=1", s.config.BaseURL, s.config.PageLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	req.Header.Set("x-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call image list endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image list endpoint returned status %d", resp.StatusCode)
	}

	var items []CatImage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode image list response: %w", err)
	}
	return items, nil
}

// DownloadImage fetches raw image bytes from the per-item URL
func (s *CatAPIClientImpl) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	return data, nil
}

// MockCatAPIClient implements CatAPIClient for testing
type MockCatAPIClient struct {
	Images      []CatImage
	ImageBytes  map[string][]byte
	ListErr     error
	DownloadErr map[string]error
	ListCalls   int
}

// NewMockCatAPIClient creates a mock provider client
func NewMockCatAPIClient() *MockCatAPIClient {
	return &MockCatAPIClient{
		ImageBytes:  make(map[string][]byte),
		DownloadErr: make(map[string]error),
	}
}

func (m *MockCatAPIClient) ListImages(ctx context.Context) ([]CatImage, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Images, nil
}

func (m *MockCatAPIClient) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if err, ok := m.DownloadErr[url]; ok {
		return nil, err
	}
	if data, ok := m.ImageBytes[url]; ok {
		return data, nil
	}
	return []byte{0x01, 0x02, 0x03}, nil
}
