package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynform/pkg/model"
)

// extensionKey carries per-property overrides:
//
//	x-dynform:
//	  type: textarea
//	  label: Notes
//	  placeholder: Anything else?
//	  visibleWhen: contact == "phone"
//	  children: [street, city]
//
// children names sibling properties that move under this property, turning
// it into a toggle group.
const extensionKey = "x-dynform"

// textAreaThreshold is the maxLength above which strings become text areas.
const textAreaThreshold = 255

type converter struct {
	labeler func(string) string
	active  map[*openapi3.Schema]bool
}

func newConverter(labeler func(string) string) *converter {
	return &converter{labeler: labeler, active: make(map[*openapi3.Schema]bool)}
}

// fields maps an object schema's properties (sorted by name) to fields.
// prefix namespaces nested object properties so names stay unique.
func (c *converter) fields(schema *openapi3.Schema, prefix string) []model.Field {
	if schema == nil || c.active[schema] {
		return nil
	}
	c.active[schema] = true
	defer delete(c.active, schema)

	props, required := collectProperties(schema)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	byName := make(map[string][]model.Field, len(names))
	childOf := make(map[string]string)
	for _, name := range names {
		prop := props[name]
		byName[name] = c.field(qualify(prefix, name), prop, required[name], prefix)
		for _, child := range extension(prop).children {
			if _, exists := props[child]; exists && child != name {
				childOf[child] = name
			}
		}
	}

	var out []model.Field
	for _, name := range names {
		if _, nested := childOf[name]; nested {
			continue
		}
		group := byName[name]
		if len(group) == 0 {
			continue
		}
		for _, child := range names {
			if childOf[child] != name {
				continue
			}
			for _, field := range byName[child] {
				field.Parent = group[0].Name
				group[0].Children = append(group[0].Children, field)
			}
		}
		out = append(out, group...)
	}
	return out
}

// field converts one property. Objects expand into a subheader followed by
// their own properties, so a single property can produce several fields.
func (c *converter) field(name string, schema *openapi3.Schema, required bool, prefix string) []model.Field {
	ext := extension(schema)
	field := model.Field{
		Name:         name,
		Label:        c.label(name, schema, ext),
		Help:         schema.Description,
		Placeholder:  ext.placeholder,
		DefaultValue: schema.Default,
		Disabled:     schema.ReadOnly,
		VisibleWhen:  ext.visibleWhen,
	}

	switch {
	case schema.Type.Is(openapi3.TypeObject) || (schema.Type == nil && len(schema.Properties) > 0):
		field.Type = model.FieldTypeSubheader
		field.DefaultValue = nil
		field.Disabled = false
		return append([]model.Field{field}, c.fields(schema, name)...)
	case schema.Type.Is(openapi3.TypeBoolean):
		field.Type = model.FieldTypeSlideToggle
	case schema.Type.Is(openapi3.TypeArray):
		field.Type = model.FieldTypeSelectList
		if schema.Items != nil && schema.Items.Value != nil {
			field.Options = enumOptions(schema.Items.Value.Enum)
		}
		if len(field.Options) == 0 {
			field.Type = model.FieldTypeTextArea
		}
	case len(schema.Enum) > 0:
		field.Type = model.FieldTypeSelectDropdown
		field.Options = enumOptions(schema.Enum)
	case schema.Format == "date" || schema.Format == "date-time":
		field.Type = model.FieldTypeDatePicker
	case schema.Format == "textarea" || (schema.MaxLength != nil && *schema.MaxLength > textAreaThreshold):
		field.Type = model.FieldTypeTextArea
	default:
		field.Type = model.FieldTypeTextField
	}

	if ext.fieldType != "" {
		if parsed, err := model.ParseFieldType(ext.fieldType); err == nil {
			field.Type = parsed
		}
	}
	if field.Type == model.FieldTypeSlideToggle && field.DefaultValue == nil && len(ext.children) > 0 {
		field.DefaultValue = false
	}

	field.Validation = rules(schema, required, field.Type)
	return []model.Field{field}
}

func (c *converter) label(name string, schema *openapi3.Schema, ext extensionData) string {
	switch {
	case ext.label != "":
		return ext.label
	case schema.Title != "":
		return schema.Title
	case c.labeler != nil:
		return c.labeler(name)
	default:
		return ""
	}
}

func rules(schema *openapi3.Schema, required bool, fieldType model.FieldType) []model.ValidationRule {
	var out []model.ValidationRule
	if required && !fieldType.Boolean() {
		out = append(out, model.ValidationRule{Kind: model.ValidationRuleRequired})
	}
	if schema.MinLength > 0 {
		out = append(out, valueRule(model.ValidationRuleMinLength, strconv.FormatUint(schema.MinLength, 10)))
	}
	if schema.MaxLength != nil {
		out = append(out, valueRule(model.ValidationRuleMaxLength, strconv.FormatUint(*schema.MaxLength, 10)))
	}
	if schema.Min != nil {
		out = append(out, valueRule(model.ValidationRuleMin, formatFloat(*schema.Min)))
	}
	if schema.Max != nil {
		out = append(out, valueRule(model.ValidationRuleMax, formatFloat(*schema.Max)))
	}
	if schema.Pattern != "" {
		out = append(out, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": schema.Pattern},
		})
	}
	if schema.Format == "email" {
		out = append(out, model.ValidationRule{Kind: model.ValidationRuleEmail})
	}
	if fieldType == model.FieldTypeSelectDropdown {
		out = append(out, model.ValidationRule{Kind: model.ValidationRuleOneOf})
	}
	return out
}

func valueRule(kind, value string) model.ValidationRule {
	return model.ValidationRule{Kind: kind, Params: map[string]string{"value": value}}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// collectProperties merges the schema's own properties with those of its
// allOf members.
func collectProperties(schema *openapi3.Schema) (map[string]*openapi3.Schema, map[string]bool) {
	props := make(map[string]*openapi3.Schema)
	required := make(map[string]bool)
	var visit func(*openapi3.Schema, int)
	visit = func(s *openapi3.Schema, depth int) {
		if s == nil || depth > 8 {
			return
		}
		for _, ref := range s.AllOf {
			if ref != nil {
				visit(ref.Value, depth+1)
			}
		}
		for name, ref := range s.Properties {
			if ref != nil && ref.Value != nil {
				props[name] = ref.Value
			}
		}
		for _, name := range s.Required {
			required[name] = true
		}
	}
	visit(schema, 0)
	return props, required
}

func enumOptions(values []any) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		out = append(out, fmt.Sprint(value))
	}
	return out
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

type extensionData struct {
	fieldType   string
	label       string
	placeholder string
	visibleWhen string
	children    []string
}

func extension(schema *openapi3.Schema) extensionData {
	var data extensionData
	if schema == nil {
		return data
	}
	raw, ok := schema.Extensions[extensionKey].(map[string]any)
	if !ok {
		return data
	}
	data.fieldType = stringValue(raw["type"])
	data.label = stringValue(raw["label"])
	data.placeholder = stringValue(raw["placeholder"])
	data.visibleWhen = stringValue(raw["visibleWhen"])
	if list, ok := raw["children"].([]any); ok {
		for _, item := range list {
			if name := strings.TrimSpace(stringValue(item)); name != "" {
				data.children = append(data.children, name)
			}
		}
	}
	return data
}

func stringValue(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}
