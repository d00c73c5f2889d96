package dtos

import (
	"time"
)

// KeyCategory is the single category a source key belongs to at any time.
type KeyCategory string

const (
	CategoryNonLinked KeyCategory = "non-linked"
	CategoryMapped    KeyCategory = "mapped"
	CategoryIgnored   KeyCategory = "ignored"
)

// IsValid reports whether the category is one of the three known buckets.
func (c KeyCategory) IsValid() bool {
	return c == CategoryNonLinked || c == CategoryMapped || c == CategoryIgnored
}

// ValueType is the coarse type the key analyzer infers for a key's values.
type ValueType string

const (
	ValueTypeString ValueType = "string"
	ValueTypeNumber ValueType = "number"
	ValueTypeDate   ValueType = "date"
	ValueTypeLink   ValueType = "link"
	ValueTypeNested ValueType = "nested"
	ValueTypeNull   ValueType = "null"
)

// MappingKey is the per-key analysis result and category membership record.
// Keys are never deleted, only re-categorized.
type MappingKey struct {
	Key         string      `json:"key"`
	SampleValue interface{} `json:"sample_value"`
	Frequency   int         `json:"frequency"`
	TotalItems  int         `json:"total_items"`
	Category    KeyCategory `json:"category"`
	Type        ValueType   `json:"type"`
	// Ambiguous is set when values for this key disagree on their coarse type
	// across records. Downstream transformation validation surfaces it.
	Ambiguous bool `json:"ambiguous"`
}

// ConstraintSet groups the constraint declarations fetched for a property.
type ConstraintSet struct {
	// Format holds regex patterns values should match.
	Format []FormatConstraint `json:"format"`
	// ValueType holds entity-type restrictions for item-valued properties.
	ValueType []string `json:"value_type"`
	// Other holds constraint types the engine does not interpret.
	Other []string `json:"other"`
}

// ConstraintRank distinguishes mandatory from suggested constraints. Format
// violations stay advisory for both ranks; the rank is reported so the UI can
// render mandatory violations more prominently.
type ConstraintRank string

const (
	ConstraintRankMandatory ConstraintRank = "mandatory"
	ConstraintRankSuggested ConstraintRank = "suggested"
	ConstraintRankRegular   ConstraintRank = "regular"
)

// FormatConstraint is a single regex constraint with its rank.
type FormatConstraint struct {
	Pattern string         `json:"pattern"`
	Rank    ConstraintRank `json:"rank"`
}

// PropertyRef describes a target knowledge-base property.
type PropertyRef struct {
	ID            string        `json:"id"`
	Label         string        `json:"label"`
	Description   string        `json:"description,omitempty"`
	Datatype      string        `json:"datatype"`
	DatatypeLabel string        `json:"datatype_label,omitempty"`
	Constraints   ConstraintSet `json:"constraints"`
}

// PropertyMapping associates a source key with a target property.
type PropertyMapping struct {
	MappingID  string      `json:"mapping_id"`
	Key        string      `json:"key"`
	Property   PropertyRef `json:"property"`
	SubField   string      `json:"sub_field,omitempty"`
	MappedAt   time.Time   `json:"mapped_at"`
	AutoMapped bool        `json:"auto_mapped"`
}

// ComputeMappingID derives the stable mapping id from its inputs. Equal inputs
// always produce equal ids; changing the sub-field changes the id.
func ComputeMappingID(key, propertyID, subField string) string {
	id := key + "|" + propertyID
	if subField != "" {
		id += "|" + subField
	}
	return id
}

// ManualProperty is a synthetic property supplied by the user rather than
// discovered from a source key.
type ManualProperty struct {
	Property     PropertyRef `json:"property"`
	DefaultValue string      `json:"default_value"`
	Required     bool        `json:"required"`
	AddedAt      time.Time   `json:"added_at"`
}

// IdentifierType labels the pattern family an identifier classification
// matched.
type IdentifierType string

const (
	IdentifierARK           IdentifierType = "ark"
	IdentifierBibliographic IdentifierType = "bibliographic"
	IdentifierItemLink      IdentifierType = "item-link"
	IdentifierUnknown       IdentifierType = "unknown"
)

// Classification is the identifier classifier's verdict for one key.
// PropertyID is nil for unrecognized shapes; those keys stay non-linked.
type Classification struct {
	Type       IdentifierType `json:"type"`
	PropertyID *string        `json:"property_id"`
	Label      string         `json:"label"`
}

// AutoMapFailure records one identifier field whose constraint fetch or
// mapping failed during an auto-mapping batch.
type AutoMapFailure struct {
	Key        string `json:"key"`
	PropertyID string `json:"property_id"`
	Error      string `json:"error"`
}

// AutoMapSummary aggregates an auto-mapping batch: partial success is allowed,
// one failed field never aborts the others.
type AutoMapSummary struct {
	MappedCount int              `json:"mapped_count"`
	Failures    []AutoMapFailure `json:"failures"`
}

// ValidationError is a field-level validation problem reported to the caller.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
