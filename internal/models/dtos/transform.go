package dtos

// BlockType identifies one kind of transformation step.
type BlockType string

const (
	// BlockCompose concatenates sub-fields of the raw value through a
	// template, e.g. "{first} ({last})".
	BlockCompose BlockType = "compose"
	// BlockExtract pulls a single sub-field or regex capture out of the value.
	BlockExtract BlockType = "extract"
	// BlockLanguageTag attaches a language code to the derived value.
	BlockLanguageTag BlockType = "language-tag"
)

// TransformationBlock is one ordered, typed step of a value-derivation
// pipeline attached to a mapping id.
type TransformationBlock struct {
	Type   BlockType              `json:"type"`
	Config map[string]interface{} `json:"config"`
}

// TransformError is a typed, non-fatal failure of a single block.
type TransformError struct {
	BlockIndex int    `json:"block_index"`
	BlockType  string `json:"block_type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// TransformResult is the outcome of applying a pipeline to a raw value.
// Failing blocks are recorded and skipped so the result is still a best-effort
// derivation; Incomplete flags that at least one block failed.
type TransformResult struct {
	Value      string           `json:"value"`
	Language   string           `json:"language,omitempty"`
	Incomplete bool             `json:"incomplete"`
	Errors     []TransformError `json:"errors,omitempty"`
}
