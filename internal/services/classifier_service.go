package services

import (
	"regexp"
	"strings"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/models/dtos"
)

// ClassifierService recognizes known identifier shapes in (key, sample value)
// pairs and maps them to a target property. Rules run in a fixed order; the
// first match wins. Unrecognized shapes return a nil property id and stay in
// the non-linked category.
type ClassifierService struct{}

// NewClassifierService creates a new identifier classifier
func NewClassifierService() *ClassifierService {
	return &ClassifierService{}
}

var (
	arkPattern  = regexp.MustCompile(`ark:/\d{5,9}/\S+`)
	oclcPattern = regexp.MustCompile(`^(\(OCo?LC\)\s*|ocm|ocn|on)?(\d{6,})$`)
	itemPathPattern = regexp.MustCompile(`^https?://\S+/(items?|records?)/\S+$`)
)

// Classify applies the ordered pattern rules to one key.
func (s *ClassifierService) Classify(key string, sampleValue interface{}) dtos.Classification {
	sample := stringSample(sampleValue)

	// Rule 1: archival resource keys (ARK persistent identifiers).
	if ark := arkPattern.FindString(sample); ark != "" {
		pid := constants.PropertyARKIdentifier
		return dtos.Classification{
			Type:       dtos.IdentifierARK,
			PropertyID: &pid,
			Label:      "ARK ID",
		}
	}

	// Rule 2: bibliographic catalog numbers (OCLC control numbers).
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "oclc") && oclcPattern.MatchString(strings.TrimSpace(sample)) {
		pid := constants.PropertyOCLCNumber
		return dtos.Classification{
			Type:       dtos.IdentifierBibliographic,
			PropertyID: &pid,
			Label:      "OCLC control number",
		}
	}

	// Rule 3: self-referential item links back into the source collection.
	if key == "@id" || itemPathPattern.MatchString(strings.TrimSpace(sample)) {
		pid := constants.PropertyDescribedAtURL
		return dtos.Classification{
			Type:       dtos.IdentifierItemLink,
			PropertyID: &pid,
			Label:      "Item link",
		}
	}

	return dtos.Classification{
		Type:       dtos.IdentifierUnknown,
		PropertyID: nil,
		Label:      "",
	}
}

// CanonicalURL builds the resolver URL for a recognized identifier value.
// Returns empty for families without a public resolver.
func (s *ClassifierService) CanonicalURL(idType dtos.IdentifierType, value string) string {
	value = strings.TrimSpace(value)

	switch idType {
	case dtos.IdentifierARK:
		ark := arkPattern.FindString(value)
		if ark == "" {
			return ""
		}
		return constants.ARKResolverBase + ark
	case dtos.IdentifierBibliographic:
		m := oclcPattern.FindStringSubmatch(value)
		if m == nil {
			return ""
		}
		return constants.WorldCatBase + m[2]
	case dtos.IdentifierItemLink:
		if itemPathPattern.MatchString(value) {
			return value
		}
		return ""
	default:
		return ""
	}
}

// CanonicalURLForProperty resolves the identifier family for a target
// property id and builds the canonical URL, used by the external-id
// reconciliation path.
func (s *ClassifierService) CanonicalURLForProperty(propertyID, value string) string {
	switch propertyID {
	case constants.PropertyARKIdentifier:
		return s.CanonicalURL(dtos.IdentifierARK, value)
	case constants.PropertyOCLCNumber:
		return s.CanonicalURL(dtos.IdentifierBibliographic, value)
	default:
		return ""
	}
}

// stringSample flattens a sample value to a string for pattern matching.
// Nested JSON-LD values commonly carry the literal under "@value" or "@id".
func stringSample(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]interface{}:
		if s, ok := v["@value"].(string); ok {
			return s
		}
		if s, ok := v["@id"].(string); ok {
			return s
		}
		return ""
	case []interface{}:
		if len(v) > 0 {
			return stringSample(v[0])
		}
		return ""
	default:
		return ""
	}
}
