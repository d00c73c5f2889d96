package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/models/dtos"
)

// CollectionsProvider implements SourceProvider for digital-collections APIs
// that export JSON-LD item lists (Omeka S and compatible).
type CollectionsProvider struct {
	ConfigURL string
	Client    *http.Client
}

// Ensure CollectionsProvider implements SourceProvider
var _ SourceProvider = (*CollectionsProvider)(nil)

// NewCollectionsProvider creates a new source-records provider
func NewCollectionsProvider() *CollectionsProvider {
	return &CollectionsProvider{
		ConfigURL: os.Getenv("CONCORDANCE_CONFIG_URL"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetProviderType returns the provider type identifier
func (p *CollectionsProvider) GetProviderType() string {
	return "jsonld_collections_api"
}

// FetchRecords retrieves the record set. Both a bare JSON array and an
// {"items": [...]} envelope are accepted.
func (p *CollectionsProvider) FetchRecords(ctx context.Context, url string) ([]dtos.SourceRecord, int, error) {
	if url == "" {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeMalformedPayload,
			Message: "Source URL cannot be empty",
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Accept", "application/ld+json, application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read response body",
			Err:     readErr,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url),
			Details: string(bodyBytes),
		}
	}

	var records []dtos.SourceRecord
	if err := json.Unmarshal(bodyBytes, &records); err == nil {
		return records, resp.StatusCode, nil
	}

	var envelope struct {
		Items []dtos.SourceRecord `json:"items"`
	}
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil || envelope.Items == nil {
		return nil, resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeMalformedPayload,
			Message: constants.GetErrorMessage(constants.ErrCodeMalformedPayload),
			Details: string(bodyBytes),
			Err:     err,
		}
	}

	return envelope.Items, resp.StatusCode, nil
}

// FetchIgnoreConfig retrieves the ignore-pattern list. Returns (nil, nil) when
// no config URL is set so callers fall back to the built-in defaults.
func (p *CollectionsProvider) FetchIgnoreConfig(ctx context.Context) (*dtos.IgnoreConfig, error) {
	if p.ConfigURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", p.ConfigURL, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: fmt.Sprintf("HTTP %d fetching ignore config", resp.StatusCode),
		}
	}

	var cfg dtos.IgnoreConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeMalformedPayload,
			Message: "Failed to decode ignore config",
			Err:     err,
		}
	}

	return &cfg, nil
}
