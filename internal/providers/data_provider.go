package providers

import (
	"context"
	"fmt"

	"heritage-experiment/concordance/internal/models/dtos"
)

// KnowledgeBaseProvider defines the interface for the target knowledge base.
type KnowledgeBaseProvider interface {
	// SearchEntities runs a lexical label/alias search and returns ranked
	// candidate entities.
	SearchEntities(ctx context.Context, query string) ([]dtos.MatchRef, int, error)

	// GetPropertyConstraints fetches a property with its constraint
	// declarations. Results are cached by callers, not here.
	GetPropertyConstraints(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error)

	// SearchLanguages searches the knowledge base's language inventory.
	SearchLanguages(ctx context.Context, query string) ([]dtos.LanguageRef, int, error)

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

// SourceProvider defines the interface for the digital-collections API the
// record set is exported from.
type SourceProvider interface {
	// FetchRecords retrieves the JSON-LD record set from the given URL.
	FetchRecords(ctx context.Context, url string) ([]dtos.SourceRecord, int, error)

	// FetchIgnoreConfig retrieves the externally managed ignore-pattern list.
	// A nil config (no error) means the caller should fall back to defaults.
	FetchIgnoreConfig(ctx context.Context) (*dtos.IgnoreConfig, error)

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

// ProviderError carries a machine-readable code alongside the human message.
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
