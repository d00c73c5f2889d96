package constants

// Datatype is the closed set of target-property datatypes the reconciliation
// engine dispatches on. Anything outside this set takes the pass-through
// confirmation path.
type Datatype string

const (
	DatatypeItem          Datatype = "wikibase-item"
	DatatypeString        Datatype = "string"
	DatatypeMonolingual   Datatype = "monolingualtext"
	DatatypeExternalID    Datatype = "external-id"
	DatatypeURL           Datatype = "url"
	DatatypeTime          Datatype = "time"
	DatatypeQuantity      Datatype = "quantity"
)

// SupportedDatatypes lists the datatypes with a dedicated validator/searcher.
var SupportedDatatypes = []Datatype{
	DatatypeItem,
	DatatypeString,
	DatatypeMonolingual,
	DatatypeExternalID,
	DatatypeURL,
}

// IsSupported reports whether the datatype has a dedicated reconciliation path.
func (d Datatype) IsSupported() bool {
	for _, s := range SupportedDatatypes {
		if s == d {
			return true
		}
	}
	return false
}

// DatatypeLabels maps datatypes to display labels.
var DatatypeLabels = map[Datatype]string{
	DatatypeItem:        "Item",
	DatatypeString:      "String",
	DatatypeMonolingual: "Monolingual text",
	DatatypeExternalID:  "External identifier",
	DatatypeURL:         "URL",
	DatatypeTime:        "Point in time",
	DatatypeQuantity:    "Quantity",
}
