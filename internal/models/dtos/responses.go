package dtos

// APIResponse is the standard JSON envelope for all API endpoints.
type APIResponse struct {
	Status       string      `json:"status"`
	Message      string      `json:"message,omitempty"`
	ResponseTime string      `json:"response_time,omitempty"`
	Data         interface{} `json:"data,omitempty"`
}

// CreateSessionResp reports the analysis outcome of a new session.
type CreateSessionResp struct {
	SessionID      string         `json:"session_id"`
	ItemCount      int            `json:"item_count"`
	Keys           []MappingKey   `json:"keys"`
	AutoMapSummary AutoMapSummary `json:"auto_map_summary"`
}

// MappedViewEntry is one row of the mapped view, including the synthesized
// required placeholders.
type MappedViewEntry struct {
	Mapping     *PropertyMapping `json:"mapping,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	Label       string           `json:"label"`
	Required    bool             `json:"required"`
}

// KeysSnapshot is the read-only key listing handed to the UI layer.
type KeysSnapshot struct {
	Keys       []MappingKey      `json:"keys"`
	MappedView []MappedViewEntry `json:"mapped_view"`
}

// SearchResp carries the ranked candidates of an entity search along with the
// generation the result belongs to. Stale generations are dropped before they
// ever reach the caller.
type SearchResp struct {
	Generation int64      `json:"generation"`
	Query      string     `json:"query"`
	Matches    []MatchRef `json:"matches"`
}

// ShareLinkResp is a signed single-use session link.
type ShareLinkResp struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// ProfileResp describes one saved mapping profile.
type ProfileResp struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	KeyCount  int    `json:"key_count"`
	CreatedAt string `json:"created_at"`
}
