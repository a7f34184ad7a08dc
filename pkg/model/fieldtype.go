package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldType enumerates the widget kinds a field can bind to.
type FieldType string

const (
	FieldTypeCheckbox       FieldType = "checkbox"
	FieldTypeDatePicker     FieldType = "datepicker"
	FieldTypeRadio          FieldType = "radio"
	FieldTypeSelectDropdown FieldType = "select-dropdown"
	FieldTypeSelectList     FieldType = "select-list"
	FieldTypeSlideToggle    FieldType = "slide-toggle"
	FieldTypeTextArea       FieldType = "textarea"
	FieldTypeTextField      FieldType = "textfield"
	FieldTypeSubheader      FieldType = "subheader"
	FieldTypeDivider        FieldType = "divider"
)

// fieldTypeOrdinals preserves the ordering of older definitions that stored
// the type as an integer.
var fieldTypeOrdinals = []FieldType{
	FieldTypeCheckbox,
	FieldTypeDatePicker,
	FieldTypeRadio,
	FieldTypeSelectDropdown,
	FieldTypeSelectList,
	FieldTypeSlideToggle,
	FieldTypeTextArea,
	FieldTypeTextField,
	FieldTypeSubheader,
	FieldTypeDivider,
}

var fieldTypeAliases = map[string]FieldType{
	"checkbox":       FieldTypeCheckbox,
	"datepicker":     FieldTypeDatePicker,
	"date":           FieldTypeDatePicker,
	"radio":          FieldTypeRadio,
	"selectdropdown": FieldTypeSelectDropdown,
	"dropdown":       FieldTypeSelectDropdown,
	"select":         FieldTypeSelectDropdown,
	"selectlist":     FieldTypeSelectList,
	"multiselect":    FieldTypeSelectList,
	"slidetoggle":    FieldTypeSlideToggle,
	"toggle":         FieldTypeSlideToggle,
	"textarea":       FieldTypeTextArea,
	"textfield":      FieldTypeTextField,
	"text":           FieldTypeTextField,
	"subheader":      FieldTypeSubheader,
	"divider":        FieldTypeDivider,
}

// FieldTypes returns every supported type in ordinal order.
func FieldTypes() []FieldType {
	return append([]FieldType(nil), fieldTypeOrdinals...)
}

// ParseFieldType resolves a type name, alias, or ordinal. Matching ignores
// case and separators so "SLIDE_TOGGLE", "slideToggle", and "slide-toggle"
// resolve alike.
func ParseFieldType(raw string) (FieldType, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("model: %w: empty type", ErrUnknownType)
	}
	if idx, err := strconv.Atoi(trimmed); err == nil {
		return fieldTypeFromOrdinal(idx)
	}
	if ft, ok := fieldTypeAliases[normaliseTypeKey(trimmed)]; ok {
		return ft, nil
	}
	return "", fmt.Errorf("model: %w: %q", ErrUnknownType, raw)
}

func fieldTypeFromOrdinal(idx int) (FieldType, error) {
	if idx < 0 || idx >= len(fieldTypeOrdinals) {
		return "", fmt.Errorf("model: %w: ordinal %d", ErrUnknownType, idx)
	}
	return fieldTypeOrdinals[idx], nil
}

func normaliseTypeKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		switch r {
		case '-', '_', ' ', '.':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether the type is one of the supported variants.
func (t FieldType) Valid() bool {
	for _, candidate := range fieldTypeOrdinals {
		if candidate == t {
			return true
		}
	}
	return false
}

// Presentational reports whether the type renders chrome rather than an input.
func (t FieldType) Presentational() bool {
	return t == FieldTypeSubheader || t == FieldTypeDivider
}

// Boolean reports whether the widget produces a boolean value.
func (t FieldType) Boolean() bool {
	return t == FieldTypeCheckbox || t == FieldTypeSlideToggle
}

// Choice reports whether the widget selects from Field.Options.
func (t FieldType) Choice() bool {
	switch t {
	case FieldTypeRadio, FieldTypeSelectDropdown, FieldTypeSelectList:
		return true
	default:
		return false
	}
}

func (t FieldType) String() string {
	return string(t)
}

// UnmarshalJSON accepts names, aliases, and ordinals.
func (t *FieldType) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := ParseFieldType(v)
		if err != nil {
			return err
		}
		*t = parsed
	case float64:
		parsed, err := fieldTypeFromOrdinal(int(v))
		if err != nil {
			return err
		}
		*t = parsed
	default:
		return fmt.Errorf("model: %w: %s", ErrUnknownType, string(data))
	}
	return nil
}

// UnmarshalYAML accepts names, aliases, and ordinals.
func (t *FieldType) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("model: %w: expected scalar at line %d", ErrUnknownType, node.Line)
	}
	parsed, err := ParseFieldType(node.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalText backs TOML and other text decoders.
func (t *FieldType) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
