package constants

// DefaultIgnoredKeyPatterns is the built-in fallback for the externally loaded
// ignore-pattern list. Keys whose name starts with one of these prefixes carry
// internal system metadata and bypass mapping entirely.
var DefaultIgnoredKeyPatterns = []string{
	"@context",
	"o:",
	"thumbnail_display_urls",
	"value_annotation",
}
