// Package sanitize strips markup from free-text values before they leave the
// form. It walks KeyValue trees and cleans every string (including strings in
// lists) with a bluemonday policy; non-string values pass through untouched.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Sanitizer cleans values with a bluemonday policy.
type Sanitizer struct {
	policy   *bluemonday.Policy
	unescape bool
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithPolicy replaces the default strict policy.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(s *Sanitizer) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithEscapedOutput keeps HTML entities produced by the policy instead of
// unescaping them back to plain text.
func WithEscapedOutput() Option {
	return func(s *Sanitizer) {
		s.unescape = false
	}
}

// New returns a Sanitizer using a strict (strip everything) policy.
func New(options ...Option) *Sanitizer {
	s := &Sanitizer{policy: strictPolicy(), unescape: true}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// String cleans one value.
func (s *Sanitizer) String(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := s.policy.Sanitize(raw)
	if s.unescape {
		cleaned = html.UnescapeString(cleaned)
	}
	return strings.TrimSpace(cleaned)
}

// Pairs returns a sanitised copy of the KeyValue tree.
func (s *Sanitizer) Pairs(pairs []model.KeyValue) []model.KeyValue {
	if pairs == nil {
		return nil
	}
	out := make([]model.KeyValue, len(pairs))
	for i, pair := range pairs {
		out[i] = model.KeyValue{Key: pair.Key, Value: s.Value(pair.Value)}
	}
	return out
}

// Value sanitises strings, string lists, and nested KeyValue lists.
func (s *Sanitizer) Value(value any) any {
	switch v := value.(type) {
	case string:
		return s.String(v)
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = s.String(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = s.Value(item)
		}
		return out
	case []model.KeyValue:
		return s.Pairs(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = s.Value(item)
		}
		return out
	default:
		return value
	}
}
