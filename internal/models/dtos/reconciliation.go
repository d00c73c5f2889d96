package dtos

// ReconStatus is the lifecycle state of one reconciliation record.
type ReconStatus string

const (
	ReconPending    ReconStatus = "pending"
	ReconReconciled ReconStatus = "reconciled"
	ReconSkipped    ReconStatus = "skipped"
)

// MatchType distinguishes target-entity matches from user-supplied literals.
type MatchType string

const (
	MatchEntity MatchType = "entity"
	MatchCustom MatchType = "custom"
)

// MatchRef is a candidate or confirmed reconciliation result. An entity match
// carries ID; a custom match carries Value.
type MatchRef struct {
	Type          MatchType `json:"type"`
	ID            string    `json:"id,omitempty"`
	Label         string    `json:"label,omitempty"`
	Description   string    `json:"description,omitempty"`
	Value         string    `json:"value,omitempty"`
	Language      string    `json:"language,omitempty"`
	LanguageLabel string    `json:"language_label,omitempty"`
	Datatype      string    `json:"datatype"`
	Score         float64   `json:"score,omitempty"`
}

// RecordKey addresses one reconciliation record.
type RecordKey struct {
	ItemID     string `json:"item_id"`
	MappingID  string `json:"mapping_id"`
	ValueIndex int    `json:"value_index"`
}

// ReconciliationRecord is the per-(item, mapping, value-index) state machine
// cell. Invariant: Status == reconciled implies SelectedMatch != nil.
// Confidence 100 is reserved for user-confirmed custom or link-backed values.
type ReconciliationRecord struct {
	Key           RecordKey   `json:"key"`
	Status        ReconStatus `json:"status"`
	SelectedMatch *MatchRef   `json:"selected_match,omitempty"`
	Matches       []MatchRef  `json:"matches,omitempty"`
	Confidence    int         `json:"confidence"`
	// Warnings carries advisory validation failures recorded at confirmation
	// time; they never block the confirmation itself.
	Warnings []ValidationError `json:"warnings,omitempty"`
	// Edited is set while the working value differs from the raw input.
	Edited bool `json:"edited"`
	// CanonicalURL is the resolver URL derived for recognized external
	// identifiers at confirmation time.
	CanonicalURL string `json:"canonical_url,omitempty"`
	// RawValue is the original candidate value the record was opened with.
	RawValue string `json:"raw_value"`
	// WorkingValue is the value currently being reconciled.
	WorkingValue string `json:"working_value"`
}

// LanguageRef is a language option returned by the target-KB language search.
type LanguageRef struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}
