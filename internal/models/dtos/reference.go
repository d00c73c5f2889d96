package dtos

// ReferenceType labels the detection family a reference URL came from.
type ReferenceType string

const (
	ReferenceBackLink      ReferenceType = "back-link"
	ReferenceBibliographic ReferenceType = "bibliographic"
	ReferencePersistentID  ReferenceType = "persistent-id"
	ReferenceCustom        ReferenceType = "custom"
)

// Reference is a URL substantiating statements derived from one item.
type Reference struct {
	Type        ReferenceType `json:"type"`
	URL         string        `json:"url"`
	DisplayName string        `json:"display_name"`
	ItemID      string        `json:"item_id"`
}

// ReferenceSummary aggregates detected references of one type. Examples are
// capped at ten entries and keep insertion order so repeated detection runs
// yield identical output.
type ReferenceSummary struct {
	Count    int         `json:"count"`
	Examples []Reference `json:"examples"`
}

// CustomReferenceItem pairs an item with its reference URL inside a custom
// reference definition.
type CustomReferenceItem struct {
	ItemID string `json:"item_id"`
	URL    string `json:"url"`
}

// CustomReference is a user-defined (or converted auto-detected) reference
// source. OriginalType is set when the entry was converted from an
// auto-detected family so the display can keep its list position.
type CustomReference struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Items        []CustomReferenceItem `json:"items"`
	OriginalType ReferenceType         `json:"original_type,omitempty"`
}

// DetectionResult is the output of one reference detection pass.
type DetectionResult struct {
	ItemReferences map[string][]Reference             `json:"item_references"`
	Summary        map[ReferenceType]ReferenceSummary `json:"summary"`
}
