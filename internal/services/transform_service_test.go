package services

import (
	"testing"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/models/dtos"
)

func TestApply_EmptyPipelinePassesThrough(t *testing.T) {
	svc := NewTransformService()

	result := svc.Apply(nil, "Aerial photograph")
	if result.Value != "Aerial photograph" {
		t.Errorf("unexpected value %q", result.Value)
	}
	if result.Incomplete || len(result.Errors) != 0 {
		t.Errorf("expected clean result, got %+v", result)
	}
}

func TestApply_BaselineFromValueObject(t *testing.T) {
	svc := NewTransformService()

	raw := map[string]interface{}{"@value": "Histoire naturelle", "@language": "fr"}
	result := svc.Apply(nil, raw)
	if result.Value != "Histoire naturelle" {
		t.Errorf("unexpected value %q", result.Value)
	}
}

func TestApply_Compose(t *testing.T) {
	svc := NewTransformService()

	blocks := []dtos.TransformationBlock{
		{Type: dtos.BlockCompose, Config: map[string]interface{}{"template": "{last}, {first}"}},
	}
	raw := map[string]interface{}{"first": "Jane", "last": "Smith"}

	result := svc.Apply(blocks, raw)
	if result.Value != "Smith, Jane" {
		t.Errorf("unexpected value %q", result.Value)
	}
	if result.Incomplete {
		t.Error("expected complete result")
	}
}

func TestApply_ComposeMissingField(t *testing.T) {
	svc := NewTransformService()

	blocks := []dtos.TransformationBlock{
		{Type: dtos.BlockCompose, Config: map[string]interface{}{"template": "{first} ({middle})"}},
	}
	raw := map[string]interface{}{"first": "Jane"}

	result := svc.Apply(blocks, raw)
	if !result.Incomplete {
		t.Fatal("expected incomplete result")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if result.Errors[0].Code != constants.ErrCodeMissingSubField {
		t.Errorf("unexpected code %s", result.Errors[0].Code)
	}
	if result.Errors[0].BlockIndex != 0 || result.Errors[0].BlockType != string(dtos.BlockCompose) {
		t.Errorf("error not attributed to its block: %+v", result.Errors[0])
	}
	// Substituted fields are kept in the partial value.
	if result.Value != "Jane ()" {
		t.Errorf("unexpected partial value %q", result.Value)
	}
}

func TestApply_ExtractField(t *testing.T) {
	svc := NewTransformService()

	blocks := []dtos.TransformationBlock{
		{Type: dtos.BlockExtract, Config: map[string]interface{}{"field": "display_title"}},
	}
	raw := map[string]interface{}{"display_title": "The County Atlas", "@value": "ignored"}

	result := svc.Apply(blocks, raw)
	if result.Value != "The County Atlas" {
		t.Errorf("unexpected value %q", result.Value)
	}
}

func TestApply_ExtractPattern(t *testing.T) {
	svc := NewTransformService()

	blocks := []dtos.TransformationBlock{
		{Type: dtos.BlockExtract, Config: map[string]interface{}{"pattern": `(\d{4})`}},
	}

	result := svc.Apply(blocks, "published circa 1923 in Ohio")
	if result.Value != "1923" {
		t.Errorf("unexpected value %q", result.Value)
	}

	// No match is a typed error, not a crash.
	result = svc.Apply(blocks, "undated")
	if !result.Incomplete {
		t.Fatal("expected incomplete result")
	}
	if result.Errors[0].Code != constants.ErrCodeNoCapture {
		t.Errorf("unexpected code %s", result.Errors[0].Code)
	}

	// An uncompilable pattern is reported against its block.
	bad := []dtos.TransformationBlock{
		{Type: dtos.BlockExtract, Config: map[string]interface{}{"pattern": `([`}},
	}
	result = svc.Apply(bad, "anything")
	if result.Errors[0].Code != constants.ErrCodeInvalidPattern {
		t.Errorf("unexpected code %s", result.Errors[0].Code)
	}
}

func TestApply_LanguageTag(t *testing.T) {
	svc := NewTransformService()

	blocks := []dtos.TransformationBlock{
		{Type: dtos.BlockLanguageTag, Config: map[string]interface{}{"language": "de"}},
	}

	result := svc.Apply(blocks, "Naturgeschichte")
	if result.Value != "Naturgeschichte" {
		t.Errorf("language tag must not alter the value, got %q", result.Value)
	}
	if result.Language != "de" {
		t.Errorf("unexpected language %q", result.Language)
	}
}

func TestApply_FailingBlockSkippedRestApplied(t *testing.T) {
	svc := NewTransformService()

	blocks := []dtos.TransformationBlock{
		{Type: dtos.BlockExtract, Config: map[string]interface{}{"field": "missing"}},
		{Type: dtos.BlockLanguageTag, Config: map[string]interface{}{"language": "en"}},
	}
	raw := map[string]interface{}{"@value": "The Title"}

	result := svc.Apply(blocks, raw)
	if !result.Incomplete {
		t.Fatal("expected incomplete result")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	// The failing extract is skipped; the language tag still lands.
	if result.Value != "The Title" {
		t.Errorf("unexpected value %q", result.Value)
	}
	if result.Language != "en" {
		t.Errorf("expected later block applied, language %q", result.Language)
	}
}

func TestApply_UnknownBlockType(t *testing.T) {
	svc := NewTransformService()

	blocks := []dtos.TransformationBlock{
		{Type: dtos.BlockType("uppercase"), Config: nil},
	}

	result := svc.Apply(blocks, "value")
	if !result.Incomplete {
		t.Fatal("expected incomplete result")
	}
	if result.Errors[0].Code != constants.ErrCodeUnknownBlock {
		t.Errorf("unexpected code %s", result.Errors[0].Code)
	}
	if result.Value != "value" {
		t.Errorf("unknown block must not alter the value, got %q", result.Value)
	}
}
