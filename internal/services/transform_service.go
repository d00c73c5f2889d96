package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/models/dtos"
)

// TransformService applies an ordered pipeline of transformation blocks to a
// raw source value. Blocks are evaluated in list order; a failing block is
// recorded as a typed error and skipped, so the caller always receives a
// best-effort value with Incomplete set when anything went wrong. A pipeline
// never mutates its input.
type TransformService struct{}

// NewTransformService creates a new transformation pipeline service
func NewTransformService() *TransformService {
	return &TransformService{}
}

var composeFieldPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Apply runs the pipeline against one raw value and returns the derived
// statement value.
func (s *TransformService) Apply(blocks []dtos.TransformationBlock, raw interface{}) dtos.TransformResult {
	result := dtos.TransformResult{
		Value: baselineValue(raw),
	}

	for i, block := range blocks {
		var blockErr *dtos.TransformError

		switch block.Type {
		case dtos.BlockCompose:
			blockErr = s.applyCompose(&result, block, raw)
		case dtos.BlockExtract:
			blockErr = s.applyExtract(&result, block, raw)
		case dtos.BlockLanguageTag:
			blockErr = s.applyLanguageTag(&result, block)
		default:
			blockErr = &dtos.TransformError{
				Code:    constants.ErrCodeUnknownBlock,
				Message: fmt.Sprintf("%s: %q", constants.GetErrorMessage(constants.ErrCodeUnknownBlock), block.Type),
			}
		}

		if blockErr != nil {
			blockErr.BlockIndex = i
			blockErr.BlockType = string(block.Type)
			result.Errors = append(result.Errors, *blockErr)
			result.Incomplete = true
		}
	}

	return result
}

// applyCompose fills a template like "{first} ({last})" with sub-fields of the
// raw value. A reference to a missing sub-field fails the block; already
// substituted fields are kept so the partial value is still visible.
func (s *TransformService) applyCompose(result *dtos.TransformResult, block dtos.TransformationBlock, raw interface{}) *dtos.TransformError {
	template, _ := block.Config["template"].(string)
	if template == "" {
		return &dtos.TransformError{
			Code:    constants.ErrCodeMissingSubField,
			Message: "compose block has no template",
		}
	}

	fields := rawFields(raw)
	var missing []string

	composed := composeFieldPattern.ReplaceAllStringFunc(template, func(ref string) string {
		name := ref[1 : len(ref)-1]
		if val, ok := fields[name]; ok {
			return val
		}
		missing = append(missing, name)
		return ""
	})

	result.Value = composed

	if len(missing) > 0 {
		return &dtos.TransformError{
			Code:    constants.ErrCodeMissingSubField,
			Message: fmt.Sprintf("%s: %s", constants.GetErrorMessage(constants.ErrCodeMissingSubField), strings.Join(missing, ", ")),
		}
	}
	return nil
}

// applyExtract replaces the working value with either a sub-field of the raw
// value ("field" config) or the first capture group of a regex applied to the
// current value ("pattern" config).
func (s *TransformService) applyExtract(result *dtos.TransformResult, block dtos.TransformationBlock, raw interface{}) *dtos.TransformError {
	if field, ok := block.Config["field"].(string); ok && field != "" {
		fields := rawFields(raw)
		val, found := fields[field]
		if !found {
			return &dtos.TransformError{
				Code:    constants.ErrCodeMissingSubField,
				Message: fmt.Sprintf("%s: %s", constants.GetErrorMessage(constants.ErrCodeMissingSubField), field),
			}
		}
		result.Value = val
		return nil
	}

	pattern, _ := block.Config["pattern"].(string)
	if pattern == "" {
		return &dtos.TransformError{
			Code:    constants.ErrCodeInvalidPattern,
			Message: "extract block has neither a field nor a pattern",
		}
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return &dtos.TransformError{
			Code:    constants.ErrCodeInvalidPattern,
			Message: fmt.Sprintf("%s: %v", constants.GetErrorMessage(constants.ErrCodeInvalidPattern), err),
		}
	}

	m := re.FindStringSubmatch(result.Value)
	if m == nil {
		return &dtos.TransformError{
			Code:    constants.ErrCodeNoCapture,
			Message: constants.GetErrorMessage(constants.ErrCodeNoCapture),
		}
	}
	if len(m) > 1 {
		result.Value = m[1]
	} else {
		result.Value = m[0]
	}
	return nil
}

// applyLanguageTag attaches a language code without touching the value.
func (s *TransformService) applyLanguageTag(result *dtos.TransformResult, block dtos.TransformationBlock) *dtos.TransformError {
	lang, _ := block.Config["language"].(string)
	if lang == "" {
		return &dtos.TransformError{
			Code:    constants.ErrCodeMissingLanguage,
			Message: constants.GetErrorMessage(constants.ErrCodeMissingLanguage),
		}
	}
	result.Language = lang
	return nil
}

// baselineValue flattens a raw JSON value to the string the pipeline starts
// from. JSON-LD value objects contribute their "@value" or "@id" literal.
func baselineValue(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]interface{}:
		if s, ok := v["@value"].(string); ok {
			return s
		}
		if s, ok := v["@id"].(string); ok {
			return s
		}
		return ""
	case []interface{}:
		if len(v) > 0 {
			return baselineValue(v[0])
		}
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// rawFields flattens the first level of a raw value into string sub-fields
// addressable from compose templates and extract blocks.
func rawFields(raw interface{}) map[string]string {
	fields := make(map[string]string)

	m, ok := raw.(map[string]interface{})
	if !ok {
		if arr, isArr := raw.([]interface{}); isArr && len(arr) > 0 {
			m, ok = arr[0].(map[string]interface{})
		}
		if !ok {
			return fields
		}
	}

	for key, val := range m {
		switch v := val.(type) {
		case string:
			fields[key] = v
		case float64:
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[key] = strconv.FormatBool(v)
		}
	}
	return fields
}
