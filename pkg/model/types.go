package model

const (
	ValidationRuleRequired     = "required"
	ValidationRuleRequiredTrue = "requiredTrue"
	ValidationRuleMin          = "min"
	ValidationRuleMax          = "max"
	ValidationRuleMinLength    = "minLength"
	ValidationRuleMaxLength    = "maxLength"
	ValidationRulePattern      = "pattern"
	ValidationRuleEmail        = "email"
	ValidationRuleOneOf        = "oneOf"
)

// ValidationRule represents a single constraint attached to a field. Numeric
// bounds and length limits encode their threshold in Params["value"], pattern
// rules keep the expression in Params["pattern"], and oneOf reads a comma
// separated list from Params["values"] (falling back to the field options).
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind" toml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
}

// Field describes one form field. Values are owned by the caller and never
// mutated by the builder.
type Field struct {
	Name         string           `json:"name" yaml:"name" toml:"name"`
	Type         FieldType        `json:"type" yaml:"type" toml:"type"`
	Label        string           `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Help         string           `json:"help,omitempty" yaml:"help,omitempty" toml:"help,omitempty"`
	Placeholder  string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty" toml:"placeholder,omitempty"`
	Children     []Field          `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
	DefaultValue any              `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty" toml:"defaultValue,omitempty"`
	Disabled     bool             `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled,omitempty"`
	Options      []string         `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	Parent       string           `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
	Validation   []ValidationRule `json:"validation,omitempty" yaml:"validation,omitempty" toml:"validation,omitempty"`
	Visible      *bool            `json:"visible,omitempty" yaml:"visible,omitempty" toml:"visible,omitempty"`
	VisibleWhen  string           `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty" toml:"visibleWhen,omitempty"`
}

// HasChildren reports whether the field toggles nested fields.
func (f Field) HasChildren() bool {
	return len(f.Children) > 0
}

// HasDefault reports whether DefaultValue was supplied.
func (f Field) HasDefault() bool {
	return f.DefaultValue != nil
}

// IsVisible resolves the optional Visible flag; fields are visible unless
// explicitly hidden.
func (f Field) IsVisible() bool {
	return f.Visible == nil || *f.Visible
}

// DisplayLabel returns Label or a humanised Name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return DefaultLabeler(f.Name)
}

// Rule returns the first rule of the given kind.
func (f Field) Rule(kind string) (ValidationRule, bool) {
	for _, rule := range f.Validation {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

// Required reports whether a required or requiredTrue rule is attached.
func (f Field) Required() bool {
	if _, ok := f.Rule(ValidationRuleRequired); ok {
		return true
	}
	_, ok := f.Rule(ValidationRuleRequiredTrue)
	return ok
}

// Bool is a helper for populating Field.Visible literals.
func Bool(v bool) *bool {
	return &v
}
