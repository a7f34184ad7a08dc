// Package output serialises extracted form values. JSON and YAML keep the
// declaration order of the key/value list; form encoding flattens groups to
// dotted keys; pretty text runs through a pongo2 template.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/flosch/pongo2/v6"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Format selects a serialisation.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatForm   Format = "form"
	FormatPretty Format = "pretty"
)

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("output: unknown format")

// ParseFormat resolves a format name.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "form", "urlencoded", "form-urlencoded":
		return FormatForm, nil
	case "pretty", "text":
		return FormatPretty, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, raw)
	}
}

// ContentType returns the MIME type of a format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	case FormatForm:
		return "application/x-www-form-urlencoded"
	case FormatPretty:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// DefaultPrettyTemplate renders one "path: value" line per leaf.
const DefaultPrettyTemplate = "{% if title %}{{ title|safe }}\n{% endif %}" +
	"{% for row in rows %}{{ row.Path|safe }}: {{ row.Value|safe }}\n{% endfor %}"

// Encoder serialises key/value lists.
type Encoder struct {
	title  string
	indent int
	pretty *pongo2.Template
}

// Option configures an Encoder.
type Option func(*encoderConfig)

type encoderConfig struct {
	title    string
	indent   int
	template string
}

// WithTitle adds a heading to pretty output.
func WithTitle(title string) Option {
	return func(cfg *encoderConfig) {
		cfg.title = title
	}
}

// WithIndent sets the indentation for JSON and YAML. Zero emits compact JSON.
func WithIndent(spaces int) Option {
	return func(cfg *encoderConfig) {
		if spaces >= 0 {
			cfg.indent = spaces
		}
	}
}

// WithPrettyTemplate replaces DefaultPrettyTemplate. The template receives
// `title` and `rows`, each row exposing Path, Key, Depth, and Value.
func WithPrettyTemplate(source string) Option {
	return func(cfg *encoderConfig) {
		if strings.TrimSpace(source) != "" {
			cfg.template = source
		}
	}
}

// New compiles the encoder's templates.
func New(options ...Option) (*Encoder, error) {
	cfg := encoderConfig{indent: 2, template: DefaultPrettyTemplate}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	tpl, err := pongo2.FromString(cfg.template)
	if err != nil {
		return nil, fmt.Errorf("output: compile pretty template: %w", err)
	}
	return &Encoder{title: cfg.title, indent: cfg.indent, pretty: tpl}, nil
}

// Marshal is shorthand for encoding with a default Encoder.
func Marshal(values []model.KeyValue, format Format) ([]byte, error) {
	enc, err := New()
	if err != nil {
		return nil, err
	}
	return enc.Encode(values, format)
}

// Encode serialises values.
func (e *Encoder) Encode(values []model.KeyValue, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return e.json(values)
	case FormatYAML:
		return e.yaml(values)
	case FormatTOML:
		return tomlBytes(values)
	case FormatForm:
		return []byte(FormEncode(values)), nil
	case FormatPretty:
		return e.prettyText(values)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

func (e *Encoder) json(values []model.KeyValue) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, values); err != nil {
		return nil, err
	}
	if e.indent == 0 {
		return compact.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", strings.Repeat(" ", e.indent)); err != nil {
		return nil, fmt.Errorf("output: indent json: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, values []model.KeyValue) error {
	buf.WriteByte('{')
	for i, pair := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pair.Key)
		if err != nil {
			return fmt.Errorf("output: encode key %q: %w", pair.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		if nested, ok := pair.Nested(); ok {
			if err := writeJSON(buf, nested); err != nil {
				return err
			}
			continue
		}
		value, err := json.Marshal(pair.Value)
		if err != nil {
			return fmt.Errorf("output: encode %q: %w", pair.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return nil
}

func (e *Encoder) yaml(values []model.KeyValue) ([]byte, error) {
	node, err := yamlNode(values)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	indent := e.indent
	if indent == 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("output: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("output: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlNode(values []model.KeyValue) (*yaml.Node, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, pair := range values {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key}
		var value *yaml.Node
		if nested, ok := pair.Nested(); ok {
			child, err := yamlNode(nested)
			if err != nil {
				return nil, err
			}
			value = child
		} else {
			value = &yaml.Node{}
			if err := value.Encode(pair.Value); err != nil {
				return nil, fmt.Errorf("output: encode %q: %w", pair.Key, err)
			}
		}
		mapping.Content = append(mapping.Content, key, value)
	}
	return mapping, nil
}

func tomlBytes(values []model.KeyValue) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(prune(model.ToMap(values))); err != nil {
		return nil, fmt.Errorf("output: encode toml: %w", err)
	}
	return buf.Bytes(), nil
}

// prune drops nil values, which TOML cannot represent.
func prune(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case nil:
		case map[string]any:
			out[key] = prune(v)
		default:
			out[key] = v
		}
	}
	return out
}

// FormEncode flattens values to application/x-www-form-urlencoded. Group
// children use dotted keys and lists repeat the key with a [] suffix. Nil
// values encode as empty strings.
func FormEncode(values []model.KeyValue) string {
	flattened := url.Values{}
	flattenForm("", values, flattened)
	return flattened.Encode()
}

func flattenForm(prefix string, values []model.KeyValue, out url.Values) {
	for _, pair := range values {
		key := joinKey(prefix, pair.Key)
		if nested, ok := pair.Nested(); ok {
			flattenForm(key, nested, out)
			continue
		}
		if list := stringList(pair.Value); list != nil {
			for _, item := range list {
				out.Add(key+"[]", item)
			}
			continue
		}
		out.Set(key, scalar(pair.Value))
	}
}

// Row is one line of pretty output.
type Row struct {
	Path  string
	Key   string
	Depth int
	Value string
}

// Rows flattens values into pretty-output rows in declaration order.
func Rows(values []model.KeyValue) []Row {
	var rows []Row
	collectRows("", 0, values, &rows)
	return rows
}

func collectRows(prefix string, depth int, values []model.KeyValue, rows *[]Row) {
	for _, pair := range values {
		path := joinKey(prefix, pair.Key)
		if nested, ok := pair.Nested(); ok {
			collectRows(path, depth+1, nested, rows)
			continue
		}
		value := scalar(pair.Value)
		if list := stringList(pair.Value); list != nil {
			value = strings.Join(list, ", ")
		}
		*rows = append(*rows, Row{Path: path, Key: pair.Key, Depth: depth, Value: value})
	}
}

func (e *Encoder) prettyText(values []model.KeyValue) ([]byte, error) {
	rendered, err := e.pretty.Execute(pongo2.Context{
		"title": e.title,
		"rows":  Rows(values),
	})
	if err != nil {
		return nil, fmt.Errorf("output: render pretty: %w", err)
	}
	return []byte(rendered), nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalar(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = scalar(item)
		}
		return out
	default:
		return nil
	}
}
