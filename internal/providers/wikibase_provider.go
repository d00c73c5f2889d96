package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/models/dtos"

	"golang.org/x/time/rate"
)

// WikibaseProvider implements KnowledgeBaseProvider against a Wikibase-style
// HTTP API. All outbound calls share one rate limiter.
type WikibaseProvider struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
}

// Ensure WikibaseProvider implements KnowledgeBaseProvider
var _ KnowledgeBaseProvider = (*WikibaseProvider)(nil)

// NewWikibaseProvider creates a new knowledge-base provider
func NewWikibaseProvider() *WikibaseProvider {
	baseURL := os.Getenv("KB_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.wikidata.org/w/rest.php/concordance/v1" // Default
	}

	return &WikibaseProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(8), 16), // 8 req/sec, burst 16
	}
}

// GetProviderType returns the provider type identifier
func (p *WikibaseProvider) GetProviderType() string {
	return "wikibase_rest_api"
}

// SearchEntities runs a label/alias search and maps the hits to MatchRefs.
func (p *WikibaseProvider) SearchEntities(ctx context.Context, query string) ([]dtos.MatchRef, int, error) {
	if query == "" {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeEmptyQuery,
			Message: constants.GetErrorMessage(constants.ErrCodeEmptyQuery),
		}
	}

	endpoint := fmt.Sprintf("/search/entities?query=%s&limit=10", url.QueryEscape(query))

	var rawResp dtos.WbSearchEntitiesResponse
	status, err := p.doGET(ctx, endpoint, &rawResp)
	if err != nil {
		return nil, status, err
	}

	matches := make([]dtos.MatchRef, 0, len(rawResp.Search))
	for _, hit := range rawResp.Search {
		matches = append(matches, dtos.MatchRef{
			Type:        dtos.MatchEntity,
			ID:          hit.ID,
			Label:       hit.Label,
			Description: hit.Description,
			Datatype:    string(constants.DatatypeItem),
			Score:       hit.Score,
		})
	}

	return matches, status, nil
}

// GetPropertyConstraints fetches one property definition with constraints.
func (p *WikibaseProvider) GetPropertyConstraints(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
	if propertyID == "" {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodePropertyNotFound,
			Message: "Property ID cannot be empty",
		}
	}

	endpoint := fmt.Sprintf("/properties/%s", url.PathEscape(propertyID))

	var rawResp dtos.WbPropertyResponse
	status, err := p.doGET(ctx, endpoint, &rawResp)
	if err != nil {
		return nil, status, err
	}

	prop := &dtos.PropertyRef{
		ID:            rawResp.ID,
		Label:         rawResp.Label,
		Description:   rawResp.Description,
		Datatype:      rawResp.Datatype,
		DatatypeLabel: constants.DatatypeLabels[constants.Datatype(rawResp.Datatype)],
	}

	for _, c := range rawResp.Constraints {
		switch c.Type {
		case "format":
			rank := dtos.ConstraintRank(c.Rank)
			if rank != dtos.ConstraintRankMandatory && rank != dtos.ConstraintRankSuggested {
				rank = dtos.ConstraintRankRegular
			}
			prop.Constraints.Format = append(prop.Constraints.Format, dtos.FormatConstraint{
				Pattern: c.Params.Pattern,
				Rank:    rank,
			})
		case "value-type":
			prop.Constraints.ValueType = append(prop.Constraints.ValueType, c.Params.Classes...)
		default:
			prop.Constraints.Other = append(prop.Constraints.Other, c.Type)
		}
	}

	return prop, status, nil
}

// SearchLanguages searches the language inventory of the knowledge base.
func (p *WikibaseProvider) SearchLanguages(ctx context.Context, query string) ([]dtos.LanguageRef, int, error) {
	endpoint := fmt.Sprintf("/search/languages?query=%s", url.QueryEscape(query))

	var rawResp dtos.WbLanguageSearchResponse
	status, err := p.doGET(ctx, endpoint, &rawResp)
	if err != nil {
		return nil, status, err
	}

	langs := make([]dtos.LanguageRef, 0, len(rawResp.Results))
	for _, l := range rawResp.Results {
		langs = append(langs, dtos.LanguageRef{Code: l.Code, Label: l.Label})
	}

	return langs, status, nil
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

// doGET performs a rate-limited GET request
func (p *WikibaseProvider) doGET(ctx context.Context, endpoint string, result interface{}) (int, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Request cancelled while waiting for rate limiter",
			Err:     err,
		}
	}

	// Build request
	url := p.BaseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("Accept", "application/json")

	// Execute request
	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	// Handle HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, p.buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
	}

	// Parse response
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeMalformedPayload,
			Message: "Failed to decode response",
			Details: string(bodyBytes),
			Err:     err,
		}
	}

	return resp.StatusCode, nil
}

// buildHTTPError creates appropriate error based on status code
func (p *WikibaseProvider) buildHTTPError(statusCode int, endpoint string, body string) error {
	switch statusCode {
	case http.StatusNotFound:
		return &ProviderError{
			Code:    constants.ErrCodeNotFound,
			Message: fmt.Sprintf("Resource not found: %s", endpoint),
			Details: body,
		}
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details: body,
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Details: body,
		}
	}
}
