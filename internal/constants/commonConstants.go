package constants

type (
	RequestSource string
	APIStatus     string
	CachePrefix   string
)

const (
	RequestSourceAPI       RequestSource = "API"
	RequestSourceWebClient RequestSource = "WEB_CLIENT"

	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixConstraints CachePrefix = "PROP_CONSTRAINTS_"
	CachePrefixLanguages   CachePrefix = "LANG_SEARCH_"
	CachePrefixShareToken  CachePrefix = "SHARE_TOKEN_"
)

// Placeholder ids for the two required virtual rows synthesized into the
// mapped view until a concrete mapping satisfies them.
const (
	PlaceholderLabelProperty      = "label"
	PlaceholderLabelDisplayName   = "entity label"
	PlaceholderInstanceOfProperty = "P31"
	PlaceholderInstanceOfLabel    = "instance of"
)

// Well-known target properties recognized by the identifier classifier.
const (
	PropertyARKIdentifier  = "P8091"
	PropertyOCLCNumber     = "P243"
	PropertyDescribedAtURL = "P973"
)

// Public resolvers used to build reference URLs from recognized identifiers.
const (
	ARKResolverBase = "https://n2t.net/"
	WorldCatBase    = "https://search.worldcat.org/oclc/"
)
