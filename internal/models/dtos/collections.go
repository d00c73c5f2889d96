package dtos

import "strconv"

// SourceRecord is one JSON-LD item as exported by the digital-collections API.
// Values are heterogeneous: strings, numbers, nested objects and arrays all
// occur; the key analyzer is responsible for making sense of them.
type SourceRecord map[string]interface{}

// ItemID extracts a stable item identifier from the record. JSON-LD exports
// carry "@id"; Omeka-style exports carry "o:id". Falls back to empty.
func (r SourceRecord) ItemID() string {
	if v, ok := r["@id"].(string); ok && v != "" {
		return v
	}
	switch v := r["o:id"].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}

// IgnoreConfig is the externally loaded ignore-key-pattern list. Absence or
// fetch failure falls back to the built-in default list.
type IgnoreConfig struct {
	IgnoredKeyPatterns []string `json:"ignoredKeyPatterns"`
}
