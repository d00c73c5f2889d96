package services

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/logging"
	"heritage-experiment/concordance/internal/models/dtos"
)

// maxReferenceExamples caps the per-type example list in detection summaries.
const maxReferenceExamples = 10

// ReferenceState holds the detected references, user-defined custom reference
// sources and the property assignments of one session. Callers hold the
// session lock.
type ReferenceState struct {
	Detection *dtos.DetectionResult
	Custom    []dtos.CustomReference

	// Assignments maps a property id to the reference ids applied to it.
	Assignments map[string][]string
}

// NewReferenceState creates an empty reference aggregate.
func NewReferenceState() *ReferenceState {
	return &ReferenceState{
		Assignments: make(map[string][]string),
	}
}

// ReferenceService detects substantiating reference URLs in the record set and
// manages custom reference sources.
type ReferenceService struct {
	classifier *ClassifierService
}

// NewReferenceService creates a new reference detection service
func NewReferenceService(classifier *ClassifierService) *ReferenceService {
	return &ReferenceService{classifier: classifier}
}

// Detect scans every record for the three auto-detected reference families:
// back-links to the item's own source page, bibliographic catalog numbers and
// persistent identifiers. Detection is deterministic and idempotent: records
// are scanned in slice order and keys in sorted order, so re-running over the
// same input yields an identical result, examples included.
func (s *ReferenceService) Detect(state *ReferenceState, records []dtos.SourceRecord) *dtos.DetectionResult {
	result := &dtos.DetectionResult{
		ItemReferences: make(map[string][]dtos.Reference),
		Summary:        make(map[dtos.ReferenceType]dtos.ReferenceSummary),
	}

	addRef := func(ref dtos.Reference) {
		result.ItemReferences[ref.ItemID] = append(result.ItemReferences[ref.ItemID], ref)

		summary := result.Summary[ref.Type]
		summary.Count++
		if len(summary.Examples) < maxReferenceExamples {
			summary.Examples = append(summary.Examples, ref)
		}
		result.Summary[ref.Type] = summary
	}

	for _, record := range records {
		itemID := record.ItemID()
		if itemID == "" {
			continue
		}

		keys := make([]string, 0, len(record))
		for k := range record {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			for _, value := range stringValues(record[key]) {
				s.detectValue(key, value, itemID, addRef)
			}
		}
	}

	state.Detection = result

	logging.Info("Reference detection completed",
		"records", len(records),
		"back_links", result.Summary[dtos.ReferenceBackLink].Count,
		"bibliographic", result.Summary[dtos.ReferenceBibliographic].Count,
		"persistent_ids", result.Summary[dtos.ReferencePersistentID].Count,
	)

	return result
}

// detectValue classifies one (key, string value) pair and emits at most one
// reference. Family checks run most-specific first so an ARK inside an item
// URL is reported as a persistent id, not a back-link.
func (s *ReferenceService) detectValue(key, value, itemID string, addRef func(dtos.Reference)) {
	if url := s.classifier.CanonicalURL(dtos.IdentifierARK, value); url != "" {
		addRef(dtos.Reference{
			Type:        dtos.ReferencePersistentID,
			URL:         url,
			DisplayName: "Persistent identifier",
			ItemID:      itemID,
		})
		return
	}

	if strings.Contains(strings.ToLower(key), "oclc") {
		if url := s.classifier.CanonicalURL(dtos.IdentifierBibliographic, value); url != "" {
			addRef(dtos.Reference{
				Type:        dtos.ReferenceBibliographic,
				URL:         url,
				DisplayName: "Library catalog record",
				ItemID:      itemID,
			})
			return
		}
	}

	if key == "@id" {
		if url := s.classifier.CanonicalURL(dtos.IdentifierItemLink, value); url != "" {
			addRef(dtos.Reference{
				Type:        dtos.ReferenceBackLink,
				URL:         url,
				DisplayName: "Item page",
				ItemID:      itemID,
			})
		}
	}
}

// CreateCustomReference validates and registers a user-defined reference
// source. Validation reports every problem at once: an empty name and an
// all-empty URL list produce two errors, not one.
func (s *ReferenceService) CreateCustomReference(state *ReferenceState, name string, items []dtos.CustomReferenceItem) (*dtos.CustomReference, []dtos.ValidationError) {
	var errs []dtos.ValidationError

	name = strings.TrimSpace(name)
	if name == "" {
		errs = append(errs, dtos.ValidationError{
			Field:   "name",
			Code:    constants.ErrCodeEmptyName,
			Message: constants.GetErrorMessage(constants.ErrCodeEmptyName),
		})
	}

	usable := make([]dtos.CustomReferenceItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.URL) != "" {
			usable = append(usable, item)
		}
	}
	if len(usable) == 0 {
		errs = append(errs, dtos.ValidationError{
			Field:   "items",
			Code:    constants.ErrCodeNoURLs,
			Message: constants.GetErrorMessage(constants.ErrCodeNoURLs),
		})
	}

	if name != "" {
		for _, existing := range state.Custom {
			if existing.Name == name {
				errs = append(errs, dtos.ValidationError{
					Field:   "name",
					Code:    constants.ErrCodeDuplicateName,
					Message: constants.GetErrorMessage(constants.ErrCodeDuplicateName),
				})
				break
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	ref := dtos.CustomReference{
		ID:    uuid.New().String(),
		Name:  name,
		Items: usable,
	}
	state.Custom = append(state.Custom, ref)
	return &state.Custom[len(state.Custom)-1], nil
}

// ConvertToCustom turns one auto-detected reference family into an editable
// custom reference. The original family is recorded so the entry keeps its
// place in the display and the conversion can be recognized later.
func (s *ReferenceService) ConvertToCustom(state *ReferenceState, refType dtos.ReferenceType, name string) (*dtos.CustomReference, []dtos.ValidationError) {
	if state.Detection == nil {
		return nil, []dtos.ValidationError{{
			Field:   "type",
			Code:    constants.ErrCodeNotFound,
			Message: "no detection run has been performed",
		}}
	}

	var items []dtos.CustomReferenceItem
	itemIDs := make([]string, 0, len(state.Detection.ItemReferences))
	for id := range state.Detection.ItemReferences {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	for _, itemID := range itemIDs {
		for _, ref := range state.Detection.ItemReferences[itemID] {
			if ref.Type == refType {
				items = append(items, dtos.CustomReferenceItem{
					ItemID: itemID,
					URL:    ref.URL,
				})
			}
		}
	}

	ref, errs := s.CreateCustomReference(state, name, items)
	if errs != nil {
		return nil, errs
	}
	ref.OriginalType = refType
	return ref, nil
}

// AssignReferencesToProperty replaces the full reference assignment of one
// property. Assignment is a total overwrite, never a merge: passing an empty
// list clears the property.
func (s *ReferenceService) AssignReferencesToProperty(state *ReferenceState, propertyID string, referenceIDs []string) {
	assigned := make([]string, len(referenceIDs))
	copy(assigned, referenceIDs)
	state.Assignments[propertyID] = assigned
}

// AssignedReferences returns the current assignment for one property.
func (s *ReferenceService) AssignedReferences(state *ReferenceState, propertyID string) []string {
	return state.Assignments[propertyID]
}

// stringValues flattens a record value into the strings worth scanning for
// reference patterns.
func stringValues(value interface{}) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case map[string]interface{}:
		var out []string
		if s, ok := v["@value"].(string); ok {
			out = append(out, s)
		}
		if s, ok := v["@id"].(string); ok {
			out = append(out, s)
		}
		return out
	case []interface{}:
		var out []string
		for _, elem := range v {
			out = append(out, stringValues(elem)...)
		}
		return out
	default:
		return nil
	}
}
