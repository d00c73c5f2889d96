package constants

// Lookup Error Codes
// These constants define specific error scenarios for external lookups against
// the source collections API and the target knowledge base.

// Transport-related errors
const (
	ErrCodeNetworkError     = "NETWORK_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeMalformedPayload = "MALFORMED_PAYLOAD"
	ErrCodeNotFound         = "RESOURCE_NOT_FOUND"
)

// Property/constraint errors
const (
	ErrCodePropertyNotFound     = "PROPERTY_NOT_FOUND"
	ErrCodeConstraintFetchError = "CONSTRAINT_FETCH_ERROR"
)

// Entity search errors
const (
	ErrCodeSearchFailed   = "SEARCH_FAILED"
	ErrCodeStaleQuery     = "STALE_QUERY"
	ErrCodeEmptyQuery     = "EMPTY_QUERY"
	ErrCodeUnknownSession = "UNKNOWN_SESSION"
)

// Transformation pipeline errors
const (
	ErrCodeMissingSubField = "MISSING_SUB_FIELD"
	ErrCodeInvalidPattern  = "INVALID_PATTERN"
	ErrCodeNoCapture       = "NO_CAPTURE"
	ErrCodeUnknownBlock    = "UNKNOWN_BLOCK"
)

// Validation errors
const (
	ErrCodeEmptyValue        = "EMPTY_VALUE"
	ErrCodeMissingLanguage   = "MISSING_LANGUAGE"
	ErrCodeFormatMismatch    = "FORMAT_MISMATCH"
	ErrCodeInvalidURL        = "INVALID_URL"
	ErrCodeEmptyName         = "EMPTY_NAME"
	ErrCodeNoURLs            = "NO_URLS"
	ErrCodeDuplicateName     = "DUPLICATE_NAME"
	ErrCodeUnknownKey        = "UNKNOWN_KEY"
	ErrCodeUnknownMapping    = "UNKNOWN_MAPPING"
	ErrCodeInvalidCategory   = "INVALID_CATEGORY"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
)

// Error Messages
// Human-readable messages corresponding to error codes

var LookupErrorMessages = map[string]string{
	ErrCodeNetworkError:     "Unable to reach the remote API. Please check connectivity",
	ErrCodeRateLimited:      "Rate limit exceeded. Please try again later",
	ErrCodeMalformedPayload: "The remote API returned a response that could not be parsed",
	ErrCodeNotFound:         "The requested resource was not found",

	ErrCodePropertyNotFound:     "The target property does not exist in the knowledge base",
	ErrCodeConstraintFetchError: "Failed to fetch constraints for the target property",

	ErrCodeSearchFailed:   "Entity search against the knowledge base failed",
	ErrCodeStaleQuery:     "The search result was superseded by a newer query",
	ErrCodeEmptyQuery:     "The search query is empty",
	ErrCodeUnknownSession: "No session exists with that id",

	ErrCodeMissingSubField: "The raw value does not contain the referenced sub-field",
	ErrCodeInvalidPattern:  "The extraction pattern is not a valid regular expression",
	ErrCodeNoCapture:       "The extraction pattern did not match the value",
	ErrCodeUnknownBlock:    "The transformation block type is not recognized",

	ErrCodeEmptyValue:        "The value is empty",
	ErrCodeMissingLanguage:   "A language must be selected for language-tagged text",
	ErrCodeFormatMismatch:    "The value does not match the property's format constraint",
	ErrCodeInvalidURL:        "The value is not a valid URL",
	ErrCodeEmptyName:         "A name is required",
	ErrCodeNoURLs:            "At least one item must have a non-empty URL",
	ErrCodeDuplicateName:     "A custom reference with that name already exists",
	ErrCodeUnknownKey:        "The key is not part of this session",
	ErrCodeUnknownMapping:    "No mapping exists with that id",
	ErrCodeInvalidCategory:   "The category must be one of non-linked, mapped or ignored",
	ErrCodeInvalidTransition: "The reconciliation record does not allow that transition",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := LookupErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
