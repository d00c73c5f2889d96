package dtos

// CreateSessionReq loads a record set from a source URL and runs key analysis.
type CreateSessionReq struct {
	SourceURL string `json:"source_url"`
	// AutoMap controls whether recognized identifier fields are mapped
	// automatically after analysis. Defaults to true.
	AutoMap *bool `json:"auto_map,omitempty"`
}

// CategorizeKeyReq moves a key into a category.
type CategorizeKeyReq struct {
	Key      string      `json:"key"`
	Category KeyCategory `json:"category"`
}

// MapKeyReq assigns a target property to a key.
type MapKeyReq struct {
	Key      string      `json:"key"`
	Property PropertyRef `json:"property"`
	SubField string      `json:"sub_field,omitempty"`
}

// ManualPropertyReq adds a synthetic property with a default value.
type ManualPropertyReq struct {
	Property     PropertyRef `json:"property"`
	DefaultValue string      `json:"default_value"`
	Required     bool        `json:"required"`
}

// ReplaceBlocksReq replaces the transformation pipeline of one mapping.
type ReplaceBlocksReq struct {
	Blocks []TransformationBlock `json:"blocks"`
}

// PreviewTransformReq applies a mapping's pipeline to a raw value.
type PreviewTransformReq struct {
	RawValue interface{} `json:"raw_value"`
}

// OpenReconciliationReq opens (or restores) one reconciliation record.
type OpenReconciliationReq struct {
	Key      RecordKey   `json:"key"`
	RawValue interface{} `json:"raw_value"`
}

// ConfirmReconciliationReq confirms a record with the selected match.
// Override acknowledges advisory validation warnings.
type ConfirmReconciliationReq struct {
	Key      RecordKey `json:"key"`
	Match    MatchRef  `json:"match"`
	Override bool      `json:"override,omitempty"`
}

// RecordKeyReq addresses a record for skip/reset/reopen intents.
type RecordKeyReq struct {
	Key RecordKey `json:"key"`
}

// EntitySearchReq issues a debounced entity search for one record's input
// field. Generation must echo the engine-issued generation for the field.
type EntitySearchReq struct {
	Key   RecordKey `json:"key"`
	Query string    `json:"query"`
}

// CustomReferenceReq creates a user-defined reference source.
type CustomReferenceReq struct {
	Name  string                `json:"name"`
	Items []CustomReferenceItem `json:"items"`
}

// ConvertReferenceReq converts an auto-detected reference type into an
// editable custom reference.
type ConvertReferenceReq struct {
	Type ReferenceType `json:"type"`
	Name string        `json:"name"`
}

// AssignReferencesReq overwrites the reference assignment set of a property.
type AssignReferencesReq struct {
	ReferenceIDs []string `json:"reference_ids"`
}

// SaveProfileReq persists the session's current mapping set under a name.
type SaveProfileReq struct {
	Name string `json:"name"`
}

// ApplyProfileReq applies a saved mapping profile to the session.
type ApplyProfileReq struct {
	ProfileID string `json:"profile_id"`
}
