package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
)

// Format names a definition encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

var (
	// ErrEmpty is returned for documents with no content.
	ErrEmpty = errors.New("definition: document is empty")
	// ErrUnknownFormat is returned when no decoder matches.
	ErrUnknownFormat = errors.New("definition: unknown format")
	// ErrDuplicateID is returned by LoadFS when two files share an ID.
	ErrDuplicateID = errors.New("definition: duplicate id")
)

// Definition bundles everything needed to build one form.
type Definition struct {
	ID          string           `json:"id" yaml:"id" toml:"id"`
	Title       string           `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	ReadOnly    bool             `json:"readOnly,omitempty" yaml:"readOnly,omitempty" toml:"readOnly,omitempty"`
	Fieldset    []model.Field    `json:"fieldset" yaml:"fieldset" toml:"fieldset"`
	Prefill     []model.KeyValue `json:"prefill,omitempty" yaml:"prefill,omitempty" toml:"prefill,omitempty"`
	Errors      []model.KeyValue `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`

	// Source records where the definition was read from.
	Source string `json:"-" yaml:"-" toml:"-"`
}

// BuildOptions translates the definition's inputs into form build options.
func (d Definition) BuildOptions() []form.BuildOption {
	return []form.BuildOption{
		form.WithFormID(d.ID),
		form.WithPrefill(d.Prefill),
		form.WithErrors(d.Errors),
		form.WithReadOnly(d.ReadOnly),
	}
}

// Build builds the definition with b, or a default builder when b is nil.
// Extra options are applied after the definition's own.
func (d Definition) Build(b *form.Builder, extra ...form.BuildOption) (*form.FormState, error) {
	if b == nil {
		b = form.New()
	}
	return b.Build(d.Fieldset, append(d.BuildOptions(), extra...)...)
}

// Validate reports structural problems: a missing ID or fieldset, or lint
// failures.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("definition %s: id is required", d.describe())
	}
	if len(d.Fieldset) == 0 {
		return fmt.Errorf("definition %s: %w", d.describe(), form.ErrNoFieldset)
	}
	if err := model.Lint(d.Fieldset); err != nil {
		return fmt.Errorf("definition %s: %w", d.describe(), err)
	}
	return nil
}

func (d Definition) describe() string {
	if d.Source != "" {
		return d.Source
	}
	if d.ID != "" {
		return fmt.Sprintf("%q", d.ID)
	}
	return "<unnamed>"
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// ParseFormat resolves a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, raw)
	}
}

// Decode parses data in the given format. An empty format tries JSON, then
// YAML.
func Decode(data []byte, format Format) (Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Definition{}, ErrEmpty
	}

	var def Definition
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &def); err != nil {
			return Definition{}, fmt.Errorf("definition: decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &def); err != nil {
			return Definition{}, fmt.Errorf("definition: decode yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &def); err != nil {
			return Definition{}, fmt.Errorf("definition: decode toml: %w", err)
		}
		def.Prefill = model.NormalizePairs(def.Prefill)
		def.Errors = model.NormalizePairs(def.Errors)
	case "":
		if err := json.Unmarshal(data, &def); err == nil {
			return def, nil
		}
		if err := yaml.Unmarshal(data, &def); err != nil {
			return Definition{}, fmt.Errorf("definition: invalid JSON or YAML: %w", err)
		}
	default:
		return Definition{}, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	return def, nil
}

// Encode renders the definition in the given format.
func Encode(def Definition, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("definition: encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return nil, fmt.Errorf("definition: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("definition: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(def); err != nil {
			return nil, fmt.Errorf("definition: encode toml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
