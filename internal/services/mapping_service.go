package services

import (
	"context"
	"fmt"
	"time"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/logging"
	"heritage-experiment/concordance/internal/models/dtos"
)

// MappingState is the canonical, mutable record of key→property assignments.
// A key lives in exactly one category at any time: the category field on its
// MappingKey is the single source of truth, so duplicate or orphaned
// membership is unrepresentable. The mapping service exclusively owns this
// aggregate; callers hold the session lock around every call.
type MappingState struct {
	Keys     map[string]*dtos.MappingKey
	KeyOrder []string

	// Mappings indexes PropertyMappings by mapping id; KeyMappings maps a
	// source key to its current mapping id.
	Mappings    map[string]*dtos.PropertyMapping
	KeyMappings map[string]string

	// Blocks holds the transformation pipeline per mapping id.
	Blocks map[string][]dtos.TransformationBlock

	Manual []dtos.ManualProperty
}

// NewMappingState creates an empty mapping aggregate.
func NewMappingState() *MappingState {
	return &MappingState{
		Keys:        make(map[string]*dtos.MappingKey),
		Mappings:    make(map[string]*dtos.PropertyMapping),
		KeyMappings: make(map[string]string),
		Blocks:      make(map[string][]dtos.TransformationBlock),
	}
}

// MappingService implements the mapping store operations.
type MappingService struct {
	constraints *ConstraintService
}

// NewMappingService creates a new mapping store service
func NewMappingService(constraints *ConstraintService) *MappingService {
	return &MappingService{constraints: constraints}
}

// Seed loads the analyzer output into the store. Existing keys keep their
// category and mapping across re-runs; new keys are appended.
func (s *MappingService) Seed(state *MappingState, keys []dtos.MappingKey) {
	for i := range keys {
		key := keys[i]
		if existing, ok := state.Keys[key.Key]; ok {
			existing.SampleValue = key.SampleValue
			existing.Frequency = key.Frequency
			existing.TotalItems = key.TotalItems
			existing.Type = key.Type
			existing.Ambiguous = key.Ambiguous
			continue
		}
		k := key
		state.Keys[k.Key] = &k
		state.KeyOrder = append(state.KeyOrder, k.Key)
	}
}

// Categorize moves a key into a category. Leaving the mapped category drops
// the key's property mapping; its transformation blocks are cleared, not
// deleted, so shared references stay valid.
func (s *MappingService) Categorize(state *MappingState, key string, category dtos.KeyCategory) error {
	if !category.IsValid() {
		return fmt.Errorf("%s: %q", constants.GetErrorMessage(constants.ErrCodeInvalidCategory), category)
	}

	mk, ok := state.Keys[key]
	if !ok {
		return fmt.Errorf("%s: %q", constants.GetErrorMessage(constants.ErrCodeUnknownKey), key)
	}

	if mk.Category == dtos.CategoryMapped && category != dtos.CategoryMapped {
		s.dropMapping(state, key)
	}

	mk.Category = category
	return nil
}

// Map assigns a target property to a key. Re-mapping with a different
// property or sub-field recomputes the mapping id and migrates the
// transformation blocks to the new id without loss or duplication.
func (s *MappingService) Map(state *MappingState, key string, property dtos.PropertyRef, subField string, autoMapped bool) (*dtos.PropertyMapping, error) {
	mk, ok := state.Keys[key]
	if !ok {
		return nil, fmt.Errorf("%s: %q", constants.GetErrorMessage(constants.ErrCodeUnknownKey), key)
	}

	newID := dtos.ComputeMappingID(key, property.ID, subField)

	if oldID, had := state.KeyMappings[key]; had && oldID != newID {
		s.migrateBlocks(state, oldID, newID)
		delete(state.Mappings, oldID)
	}

	mapping := &dtos.PropertyMapping{
		MappingID:  newID,
		Key:        key,
		Property:   property,
		SubField:   subField,
		MappedAt:   time.Now().UTC(),
		AutoMapped: autoMapped,
	}

	state.Mappings[newID] = mapping
	state.KeyMappings[key] = newID
	mk.Category = dtos.CategoryMapped

	return mapping, nil
}

// migrateBlocks copies the block list to the new mapping id and clears the
// old id's list in place. The old slice is truncated rather than deleted so
// references held elsewhere observe an empty pipeline, not a dangling one.
func (s *MappingService) migrateBlocks(state *MappingState, oldID, newID string) {
	old := state.Blocks[oldID]
	if len(old) > 0 {
		moved := make([]dtos.TransformationBlock, len(old))
		copy(moved, old)
		state.Blocks[newID] = moved
	}
	if old != nil {
		state.Blocks[oldID] = old[:0]
	}
}

// dropMapping removes a key's property mapping while keeping the key itself.
func (s *MappingService) dropMapping(state *MappingState, key string) {
	mappingID, ok := state.KeyMappings[key]
	if !ok {
		return
	}
	delete(state.Mappings, mappingID)
	delete(state.KeyMappings, key)
	if blocks, ok := state.Blocks[mappingID]; ok {
		state.Blocks[mappingID] = blocks[:0]
	}
}

// AddManualProperty registers a synthetic property with a default value.
func (s *MappingService) AddManualProperty(state *MappingState, property dtos.PropertyRef, defaultValue string, required bool) dtos.ManualProperty {
	manual := dtos.ManualProperty{
		Property:     property,
		DefaultValue: defaultValue,
		Required:     required,
		AddedAt:      time.Now().UTC(),
	}
	state.Manual = append(state.Manual, manual)
	return manual
}

// GetTransformationBlocks returns the pipeline attached to a mapping id.
func (s *MappingService) GetTransformationBlocks(state *MappingState, mappingID string) []dtos.TransformationBlock {
	return state.Blocks[mappingID]
}

// ReplaceBlocks swaps the whole pipeline of one mapping. Pipelines of other
// mappings are untouched even when structurally identical.
func (s *MappingService) ReplaceBlocks(state *MappingState, mappingID string, blocks []dtos.TransformationBlock) error {
	if _, ok := state.Mappings[mappingID]; !ok {
		return fmt.Errorf("%s: %q", constants.GetErrorMessage(constants.ErrCodeUnknownMapping), mappingID)
	}
	replaced := make([]dtos.TransformationBlock, len(blocks))
	copy(replaced, blocks)
	state.Blocks[mappingID] = replaced
	return nil
}

// AddBlock appends one block to a mapping's pipeline.
func (s *MappingService) AddBlock(state *MappingState, mappingID string, block dtos.TransformationBlock) error {
	if _, ok := state.Mappings[mappingID]; !ok {
		return fmt.Errorf("%s: %q", constants.GetErrorMessage(constants.ErrCodeUnknownMapping), mappingID)
	}
	state.Blocks[mappingID] = append(state.Blocks[mappingID], block)
	return nil
}

// RemoveBlock deletes the block at index from a mapping's pipeline.
func (s *MappingService) RemoveBlock(state *MappingState, mappingID string, index int) error {
	blocks := state.Blocks[mappingID]
	if index < 0 || index >= len(blocks) {
		return fmt.Errorf("block index %d out of range", index)
	}
	state.Blocks[mappingID] = append(blocks[:index], blocks[index+1:]...)
	return nil
}

// MoveBlock reorders one block within a mapping's pipeline.
func (s *MappingService) MoveBlock(state *MappingState, mappingID string, from, to int) error {
	blocks := state.Blocks[mappingID]
	if from < 0 || from >= len(blocks) || to < 0 || to >= len(blocks) {
		return fmt.Errorf("block index out of range")
	}
	block := blocks[from]
	blocks = append(blocks[:from], blocks[from+1:]...)
	blocks = append(blocks[:to], append([]dtos.TransformationBlock{block}, blocks[to:]...)...)
	state.Blocks[mappingID] = blocks
	return nil
}

// KeysSnapshot builds the read-only view handed to the UI layer.
func (s *MappingService) KeysSnapshot(state *MappingState) dtos.KeysSnapshot {
	keys := make([]dtos.MappingKey, 0, len(state.KeyOrder))
	for _, k := range state.KeyOrder {
		keys = append(keys, *state.Keys[k])
	}
	return dtos.KeysSnapshot{
		Keys:       keys,
		MappedView: s.MappedView(state),
	}
}

// MappedView lists the mapped entries plus the two required virtual
// placeholders (entity label, primary type) whenever no concrete mapping
// satisfies them yet. Placeholders are not persisted as keys.
func (s *MappingService) MappedView(state *MappingState) []dtos.MappedViewEntry {
	var entries []dtos.MappedViewEntry

	labelSatisfied := false
	typeSatisfied := false

	appendMapping := func(m *dtos.PropertyMapping) {
		switch m.Property.ID {
		case constants.PlaceholderLabelProperty:
			labelSatisfied = true
		case constants.PlaceholderInstanceOfProperty:
			typeSatisfied = true
		}
		entries = append(entries, dtos.MappedViewEntry{
			Mapping:  m,
			Label:    m.Property.Label,
			Required: m.Property.ID == constants.PlaceholderLabelProperty || m.Property.ID == constants.PlaceholderInstanceOfProperty,
		})
	}

	for _, key := range state.KeyOrder {
		if mappingID, ok := state.KeyMappings[key]; ok {
			if m, ok := state.Mappings[mappingID]; ok {
				appendMapping(m)
			}
		}
	}

	for _, manual := range state.Manual {
		switch manual.Property.ID {
		case constants.PlaceholderLabelProperty:
			labelSatisfied = true
		case constants.PlaceholderInstanceOfProperty:
			typeSatisfied = true
		}
		entries = append(entries, dtos.MappedViewEntry{
			Label:    manual.Property.Label,
			Required: manual.Required,
		})
	}

	placeholders := make([]dtos.MappedViewEntry, 0, 2)
	if !labelSatisfied {
		placeholders = append(placeholders, dtos.MappedViewEntry{
			Placeholder: constants.PlaceholderLabelProperty,
			Label:       constants.PlaceholderLabelDisplayName,
			Required:    true,
		})
	}
	if !typeSatisfied {
		placeholders = append(placeholders, dtos.MappedViewEntry{
			Placeholder: constants.PlaceholderInstanceOfProperty,
			Label:       constants.PlaceholderInstanceOfLabel,
			Required:    true,
		})
	}

	return append(placeholders, entries...)
}

// AutoMap maps every classified identifier field whose property constraints
// could be fetched. Constraint fetches run concurrently; one failure never
// blocks the others. The summary reports the mapped count and the failures.
func (s *MappingService) AutoMap(ctx context.Context, state *MappingState, classifications map[string]dtos.Classification) dtos.AutoMapSummary {
	keyByProperty := make(map[string][]string)
	var propertyIDs []string

	for key, cls := range classifications {
		if cls.PropertyID == nil {
			continue
		}
		pid := *cls.PropertyID
		if _, seen := keyByProperty[pid]; !seen {
			propertyIDs = append(propertyIDs, pid)
		}
		keyByProperty[pid] = append(keyByProperty[pid], key)
	}

	if len(propertyIDs) == 0 {
		return dtos.AutoMapSummary{}
	}

	props, failures := s.constraints.FetchBatch(ctx, propertyIDs)

	summary := dtos.AutoMapSummary{}
	for i := range failures {
		// Attach the first affected key for the caller's failure list.
		if keys := keyByProperty[failures[i].PropertyID]; len(keys) > 0 {
			failures[i].Key = keys[0]
		}
	}
	summary.Failures = failures

	// Mapping mutations happen synchronously after the concurrent fetches so
	// the aggregate never sees a half-applied batch.
	for pid, prop := range props {
		for _, key := range keyByProperty[pid] {
			if _, err := s.Map(state, key, *prop, "", true); err != nil {
				summary.Failures = append(summary.Failures, dtos.AutoMapFailure{
					Key:        key,
					PropertyID: pid,
					Error:      err.Error(),
				})
				continue
			}
			summary.MappedCount++
		}
	}

	logging.Info("Auto-mapping batch completed",
		"mapped", summary.MappedCount,
		"failed", len(summary.Failures),
	)

	return summary
}
