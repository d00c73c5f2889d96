package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/logging"
	"heritage-experiment/concordance/internal/metrics"
	"heritage-experiment/concordance/internal/models/dtos"
)

// ReconState holds every reconciliation record of one session, addressed by
// (item, mapping, value-index). Callers hold the session lock.
type ReconState struct {
	Records map[dtos.RecordKey]*dtos.ReconciliationRecord
}

// NewReconState creates an empty reconciliation aggregate.
func NewReconState() *ReconState {
	return &ReconState{
		Records: make(map[dtos.RecordKey]*dtos.ReconciliationRecord),
	}
}

// ReconciliationService drives the per-value state machine:
//
//	pending → reconciled (Confirm)
//	pending → skipped    (Skip)
//	skipped → pending    (Reopen)
//	reconciled → pending (Reset)
//
// A reconciled record always carries a selected match; a skipped record was
// never reconciled. Confirmation validation is split into blocking errors
// (structurally unusable values) and advisory warnings (constraint
// violations), and the warnings are stored on the record.
type ReconciliationService struct {
	classifier *ClassifierService
	metrics    *metrics.MetricsRegistry
}

// NewReconciliationService creates a new reconciliation state service
func NewReconciliationService(classifier *ClassifierService, reg *metrics.MetricsRegistry) *ReconciliationService {
	return &ReconciliationService{
		classifier: classifier,
		metrics:    reg,
	}
}

// Open returns the record for a key, creating a pending one on first access.
// Re-opening a reconciled record restores the confirmed value as the working
// value so the UI shows what was actually decided, not the raw input.
func (s *ReconciliationService) Open(state *ReconState, key dtos.RecordKey, rawValue string) *dtos.ReconciliationRecord {
	if rec, ok := state.Records[key]; ok {
		if rec.Status == dtos.ReconReconciled && rec.SelectedMatch != nil && rec.SelectedMatch.Value != "" {
			rec.WorkingValue = rec.SelectedMatch.Value
		}
		return rec
	}

	rec := &dtos.ReconciliationRecord{
		Key:          key,
		Status:       dtos.ReconPending,
		RawValue:     rawValue,
		WorkingValue: rawValue,
	}
	state.Records[key] = rec
	return rec
}

// SetWorkingValue edits the value under reconciliation. Edited tracks whether
// the working value still differs from the raw input.
func (s *ReconciliationService) SetWorkingValue(state *ReconState, key dtos.RecordKey, value string) (*dtos.ReconciliationRecord, error) {
	rec, ok := state.Records[key]
	if !ok {
		return nil, fmt.Errorf("%s: %v", constants.GetErrorMessage(constants.ErrCodeUnknownMapping), key)
	}
	if rec.Status != dtos.ReconPending {
		return nil, fmt.Errorf("%s: cannot edit a %s record", constants.GetErrorMessage(constants.ErrCodeInvalidTransition), rec.Status)
	}
	rec.WorkingValue = value
	rec.Edited = value != rec.RawValue
	return rec, nil
}

// Confirm moves a pending record to reconciled with the given match. Blocking
// validation failures return an error list and leave the record pending;
// advisory warnings are stored on the record and never block.
func (s *ReconciliationService) Confirm(state *ReconState, key dtos.RecordKey, match dtos.MatchRef, property dtos.PropertyRef) (*dtos.ReconciliationRecord, []dtos.ValidationError) {
	rec, ok := state.Records[key]
	if !ok {
		return nil, []dtos.ValidationError{{
			Field:   "key",
			Code:    constants.ErrCodeUnknownMapping,
			Message: constants.GetErrorMessage(constants.ErrCodeUnknownMapping),
		}}
	}
	if rec.Status == dtos.ReconSkipped {
		return nil, []dtos.ValidationError{{
			Field:   "status",
			Code:    constants.ErrCodeInvalidTransition,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidTransition),
		}}
	}

	blocking, warnings, canonicalURL := s.validate(match, property)
	if len(blocking) > 0 {
		return rec, blocking
	}

	confirmed := match
	rec.SelectedMatch = &confirmed
	rec.Status = dtos.ReconReconciled
	rec.Warnings = warnings
	rec.CanonicalURL = canonicalURL
	rec.Confidence = confidenceFor(match)
	if match.Value != "" {
		rec.WorkingValue = match.Value
		rec.Edited = match.Value != rec.RawValue
	}

	if s.metrics != nil {
		s.metrics.ReconciliationsTotal.WithLabelValues(string(dtos.ReconReconciled)).Inc()
	}

	return rec, nil
}

// Skip marks a pending record skipped. Reconciled records cannot be skipped;
// they must be reset first.
func (s *ReconciliationService) Skip(state *ReconState, key dtos.RecordKey) (*dtos.ReconciliationRecord, error) {
	rec, ok := state.Records[key]
	if !ok {
		return nil, fmt.Errorf("%s: %v", constants.GetErrorMessage(constants.ErrCodeUnknownMapping), key)
	}
	if rec.Status != dtos.ReconPending {
		return nil, fmt.Errorf("%s: %s → skipped", constants.GetErrorMessage(constants.ErrCodeInvalidTransition), rec.Status)
	}
	rec.Status = dtos.ReconSkipped
	if s.metrics != nil {
		s.metrics.ReconciliationsTotal.WithLabelValues(string(dtos.ReconSkipped)).Inc()
	}
	return rec, nil
}

// Reopen returns a skipped record to pending.
func (s *ReconciliationService) Reopen(state *ReconState, key dtos.RecordKey) (*dtos.ReconciliationRecord, error) {
	rec, ok := state.Records[key]
	if !ok {
		return nil, fmt.Errorf("%s: %v", constants.GetErrorMessage(constants.ErrCodeUnknownMapping), key)
	}
	if rec.Status != dtos.ReconSkipped {
		return nil, fmt.Errorf("%s: %s → pending", constants.GetErrorMessage(constants.ErrCodeInvalidTransition), rec.Status)
	}
	rec.Status = dtos.ReconPending
	if s.metrics != nil {
		s.metrics.ReconciliationsTotal.WithLabelValues(string(dtos.ReconPending)).Inc()
	}
	return rec, nil
}

// Reset returns a reconciled record to pending and restores the raw value.
// The previously selected match is kept so the user can re-confirm it; the
// reconciled-implies-selected invariant only binds in the other direction.
func (s *ReconciliationService) Reset(state *ReconState, key dtos.RecordKey) (*dtos.ReconciliationRecord, error) {
	rec, ok := state.Records[key]
	if !ok {
		return nil, fmt.Errorf("%s: %v", constants.GetErrorMessage(constants.ErrCodeUnknownMapping), key)
	}
	if rec.Status != dtos.ReconReconciled {
		return nil, fmt.Errorf("%s: %s → pending", constants.GetErrorMessage(constants.ErrCodeInvalidTransition), rec.Status)
	}

	rec.Status = dtos.ReconPending
	rec.WorkingValue = rec.RawValue
	rec.Edited = false
	rec.Warnings = nil
	rec.CanonicalURL = ""
	rec.Confidence = 0

	if s.metrics != nil {
		s.metrics.ReconciliationsTotal.WithLabelValues(string(dtos.ReconPending)).Inc()
	}

	logging.Debug("Reconciliation reset", "item", key.ItemID, "mapping", key.MappingID)
	return rec, nil
}

// validate dispatches on the target property's datatype. It returns blocking
// errors, advisory warnings and the canonical resolver URL for recognized
// external identifiers.
func (s *ReconciliationService) validate(match dtos.MatchRef, property dtos.PropertyRef) ([]dtos.ValidationError, []dtos.ValidationError, string) {
	var blocking, warnings []dtos.ValidationError

	switch constants.Datatype(property.Datatype) {
	case constants.DatatypeItem:
		if match.Type == dtos.MatchEntity && match.ID == "" {
			blocking = append(blocking, dtos.ValidationError{
				Field:   "match.id",
				Code:    constants.ErrCodeEmptyValue,
				Message: "an entity match requires an entity id",
			})
		}
		if match.Type == dtos.MatchCustom && strings.TrimSpace(match.Value) == "" {
			blocking = append(blocking, emptyValueError())
		}

	case constants.DatatypeString:
		if strings.TrimSpace(match.Value) == "" {
			blocking = append(blocking, emptyValueError())
		} else {
			warnings = append(warnings, formatWarnings(match.Value, property.Constraints.Format)...)
		}

	case constants.DatatypeMonolingual:
		if strings.TrimSpace(match.Value) == "" {
			blocking = append(blocking, emptyValueError())
		}
		if match.Language == "" {
			blocking = append(blocking, dtos.ValidationError{
				Field:   "match.language",
				Code:    constants.ErrCodeMissingLanguage,
				Message: constants.GetErrorMessage(constants.ErrCodeMissingLanguage),
			})
		}

	case constants.DatatypeExternalID:
		if strings.TrimSpace(match.Value) == "" {
			blocking = append(blocking, emptyValueError())
			break
		}
		warnings = append(warnings, formatWarnings(match.Value, property.Constraints.Format)...)
		return blocking, warnings, s.classifier.CanonicalURLForProperty(property.ID, match.Value)

	case constants.DatatypeURL:
		if strings.TrimSpace(match.Value) == "" {
			blocking = append(blocking, emptyValueError())
		} else if !isWellFormedURL(match.Value) {
			warnings = append(warnings, dtos.ValidationError{
				Field:   "match.value",
				Code:    constants.ErrCodeInvalidURL,
				Message: constants.GetErrorMessage(constants.ErrCodeInvalidURL),
			})
		}

	default:
		// Unsupported datatypes pass through unvalidated.
		warnings = append(warnings, dtos.ValidationError{
			Field:   "datatype",
			Code:    constants.ErrCodeFormatMismatch,
			Message: fmt.Sprintf("no validator for datatype %q, value accepted as-is", property.Datatype),
		})
	}

	return blocking, warnings, ""
}

// formatWarnings checks the value against every format constraint. Violations
// are advisory regardless of rank: imported legacy data frequently breaks
// format rules and a human confirmed this value deliberately.
func formatWarnings(value string, formats []dtos.FormatConstraint) []dtos.ValidationError {
	var warnings []dtos.ValidationError
	for _, fc := range formats {
		re, err := regexp.Compile(fc.Pattern)
		if err != nil {
			// Constraint patterns come from the KB; an uncompilable one is
			// reported, not enforced.
			warnings = append(warnings, dtos.ValidationError{
				Field:   "constraint.format",
				Code:    constants.ErrCodeInvalidPattern,
				Message: fmt.Sprintf("unusable format constraint %q", fc.Pattern),
			})
			continue
		}
		if !re.MatchString(value) {
			warnings = append(warnings, dtos.ValidationError{
				Field:   "match.value",
				Code:    constants.ErrCodeFormatMismatch,
				Message: fmt.Sprintf("%s (%s constraint %s)", constants.GetErrorMessage(constants.ErrCodeFormatMismatch), fc.Rank, fc.Pattern),
			})
		}
	}
	return warnings
}

// confidenceFor derives the stored confidence. User-confirmed custom values
// get the reserved 100; entity matches inherit the search score.
func confidenceFor(match dtos.MatchRef) int {
	if match.Type == dtos.MatchCustom {
		return 100
	}
	if match.Score > 0 {
		c := int(match.Score)
		if c > 99 {
			c = 99
		}
		return c
	}
	return 0
}

func emptyValueError() dtos.ValidationError {
	return dtos.ValidationError{
		Field:   "match.value",
		Code:    constants.ErrCodeEmptyValue,
		Message: constants.GetErrorMessage(constants.ErrCodeEmptyValue),
	}
}

func isWellFormedURL(value string) bool {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
