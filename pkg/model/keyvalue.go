package model

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyValue pairs a field name with a value. Nested groups carry []KeyValue
// as their value.
type KeyValue struct {
	Key   string `json:"key" yaml:"key" toml:"key"`
	Value any    `json:"value" yaml:"value" toml:"value"`
}

// GroupValueKey names the entry a group's nested list uses to carry the
// group's own value, so a toggle's state survives extraction and prefill.
const GroupValueKey = "$value"

// Find returns the first entry whose key matches name.
func Find(pairs []KeyValue, name string) (KeyValue, bool) {
	for _, pair := range pairs {
		if pair.Key == name {
			return pair, true
		}
	}
	return KeyValue{}, false
}

// Nested returns the value as a KeyValue list when it encodes a group.
func (kv KeyValue) Nested() ([]KeyValue, bool) {
	list, ok := kv.Value.([]KeyValue)
	return list, ok
}

// ToMap converts a KeyValue tree into nested maps. Later duplicates win.
func ToMap(pairs []KeyValue) map[string]any {
	if pairs == nil {
		return nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		if nested, ok := pair.Nested(); ok {
			out[pair.Key] = ToMap(nested)
			continue
		}
		out[pair.Key] = pair.Value
	}
	return out
}

// UnmarshalJSON decodes nested lists of {key, value} objects into []KeyValue
// so groups survive a JSON round trip.
func (kv *KeyValue) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kv.Key = raw.Key
	kv.Value = nil
	if len(raw.Value) == 0 {
		return nil
	}
	var nested []KeyValue
	if looksLikePairs(raw.Value) && json.Unmarshal(raw.Value, &nested) == nil {
		kv.Value = nested
		return nil
	}
	var value any
	if err := json.Unmarshal(raw.Value, &value); err != nil {
		return err
	}
	kv.Value = value
	return nil
}

func looksLikePairs(raw json.RawMessage) bool {
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || len(probe) == 0 {
		return false
	}
	for _, item := range probe {
		if _, ok := item["key"]; !ok {
			return false
		}
	}
	return true
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML sources.
func (kv *KeyValue) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Key   string    `yaml:"key"`
		Value yaml.Node `yaml:"value"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	kv.Key = raw.Key
	kv.Value = nil
	if raw.Value.Kind == 0 {
		return nil
	}
	if raw.Value.Kind == yaml.SequenceNode && yamlLooksLikePairs(&raw.Value) {
		var nested []KeyValue
		if err := raw.Value.Decode(&nested); err != nil {
			return err
		}
		kv.Value = nested
		return nil
	}
	var value any
	if err := raw.Value.Decode(&value); err != nil {
		return err
	}
	kv.Value = value
	return nil
}

func yamlLooksLikePairs(node *yaml.Node) bool {
	if len(node.Content) == 0 {
		return false
	}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return false
		}
		found := false
		for i := 0; i+1 < len(item.Content); i += 2 {
			if strings.TrimSpace(item.Content[i].Value) == "key" {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// NormalizePairs converts generic decoded values ([]any of map[string]any
// with key/value entries) into KeyValue lists recursively. TOML and other
// loosely typed decoders produce that shape.
func NormalizePairs(pairs []KeyValue) []KeyValue {
	if pairs == nil {
		return nil
	}
	out := make([]KeyValue, len(pairs))
	for i, pair := range pairs {
		out[i] = KeyValue{Key: pair.Key, Value: normalizeValue(pair.Value)}
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case []KeyValue:
		return NormalizePairs(v)
	case []map[string]any:
		generic := make([]any, len(v))
		for i, item := range v {
			generic[i] = item
		}
		return normalizeValue(generic)
	case []any:
		if len(v) == 0 {
			return v
		}
		nested := make([]KeyValue, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return v
			}
			key, ok := m["key"].(string)
			if !ok {
				return v
			}
			nested = append(nested, KeyValue{Key: key, Value: normalizeValue(m["value"])})
		}
		return nested
	default:
		return value
	}
}
