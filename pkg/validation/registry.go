// Package validation provides the rule registry slots delegate to. Rules are
// looked up by kind (see model.ValidationRule*) and receive the slot's current
// value plus the rule parameters. Empty values pass every rule except the
// required family so optional inputs stay valid until filled.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-dynform/pkg/model"
)

// ErrUnknownRule is reported when a field references an unregistered kind.
var ErrUnknownRule = errors.New("validation: unknown rule")

// RuleFunc checks a value against one rule. Params come from the rule
// definition; options carries the field's option list for choice rules.
type RuleFunc func(value any, params map[string]string, options []string) error

// Issue is a single failed rule.
type Issue struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Registry maps rule kinds to checks. The zero value is not usable; call
// NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	rules    map[string]RuleFunc
	patterns sync.Map
}

// NewRegistry returns a registry seeded with the built-in rules.
func NewRegistry() *Registry {
	r := &Registry{rules: make(map[string]RuleFunc)}
	r.rules[model.ValidationRuleRequired] = required
	r.rules[model.ValidationRuleRequiredTrue] = requiredTrue
	r.rules[model.ValidationRuleMinLength] = minLength
	r.rules[model.ValidationRuleMaxLength] = maxLength
	r.rules[model.ValidationRuleMin] = minimum
	r.rules[model.ValidationRuleMax] = maximum
	r.rules[model.ValidationRuleEmail] = email
	r.rules[model.ValidationRuleOneOf] = oneOf
	r.rules[model.ValidationRulePattern] = r.pattern
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns a process-wide registry with the built-in rules.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds or replaces a rule kind.
func (r *Registry) Register(kind string, fn RuleFunc) {
	kind = strings.TrimSpace(kind)
	if kind == "" || fn == nil {
		return
	}
	r.mu.Lock()
	r.rules[kind] = fn
	r.mu.Unlock()
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rules[kind]
	return ok
}

// Check runs every rule of field against value and returns the failures in
// declaration order.
func (r *Registry) Check(field model.Field, value any) []Issue {
	var issues []Issue
	for _, rule := range field.Validation {
		r.mu.RLock()
		fn, ok := r.rules[rule.Kind]
		r.mu.RUnlock()
		if !ok {
			issues = append(issues, Issue{
				Field:   field.Name,
				Rule:    rule.Kind,
				Message: fmt.Sprintf("%v %q", ErrUnknownRule, rule.Kind),
			})
			continue
		}
		if err := fn(value, rule.Params, field.Options); err != nil {
			issues = append(issues, Issue{Field: field.Name, Rule: rule.Kind, Message: err.Error()})
		}
	}
	return issues
}

// IsEmpty reports whether value counts as "not provided".
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func required(value any, _ map[string]string, _ []string) error {
	if IsEmpty(value) {
		return errors.New("is required")
	}
	return nil
}

func requiredTrue(value any, _ map[string]string, _ []string) error {
	if b, ok := value.(bool); ok && b {
		return nil
	}
	return errors.New("must be checked")
}

func minLength(value any, params map[string]string, _ []string) error {
	if IsEmpty(value) {
		return nil
	}
	limit, ok := intParam(params)
	if !ok {
		return nil
	}
	if n := length(value); n < limit {
		return fmt.Errorf("must be at least %d characters", limit)
	}
	return nil
}

func maxLength(value any, params map[string]string, _ []string) error {
	if IsEmpty(value) {
		return nil
	}
	limit, ok := intParam(params)
	if !ok {
		return nil
	}
	if n := length(value); n > limit {
		return fmt.Errorf("must be at most %d characters", limit)
	}
	return nil
}

func minimum(value any, params map[string]string, _ []string) error {
	if IsEmpty(value) {
		return nil
	}
	limit, ok := floatParam(params)
	if !ok {
		return nil
	}
	n, ok := number(value)
	if !ok {
		return fmt.Errorf("expected a number, got %T", value)
	}
	if params["exclusive"] == "true" && n <= limit {
		return fmt.Errorf("must be greater than %v", limit)
	}
	if n < limit {
		return fmt.Errorf("must be at least %v", limit)
	}
	return nil
}

func maximum(value any, params map[string]string, _ []string) error {
	if IsEmpty(value) {
		return nil
	}
	limit, ok := floatParam(params)
	if !ok {
		return nil
	}
	n, ok := number(value)
	if !ok {
		return fmt.Errorf("expected a number, got %T", value)
	}
	if params["exclusive"] == "true" && n >= limit {
		return fmt.Errorf("must be less than %v", limit)
	}
	if n > limit {
		return fmt.Errorf("must be at most %v", limit)
	}
	return nil
}

func email(value any, _ map[string]string, _ []string) error {
	if IsEmpty(value) {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected text, got %T", value)
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != strings.TrimSpace(s) {
		return errors.New("must be a valid email address")
	}
	return nil
}

func oneOf(value any, params map[string]string, options []string) error {
	if IsEmpty(value) {
		return nil
	}
	allowed := options
	if raw := strings.TrimSpace(params["values"]); raw != "" {
		allowed = splitList(raw)
	}
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, option := range allowed {
		set[option] = struct{}{}
	}
	for _, candidate := range stringsOf(value) {
		if _, ok := set[candidate]; !ok {
			return fmt.Errorf("%q is not an allowed option", candidate)
		}
	}
	return nil
}

func (r *Registry) pattern(value any, params map[string]string, _ []string) error {
	if IsEmpty(value) {
		return nil
	}
	expr := params["pattern"]
	if expr == "" {
		return nil
	}
	re, err := r.compile(expr)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %v", expr, err)
	}
	if !re.MatchString(fmt.Sprint(value)) {
		return errors.New("does not match required pattern")
	}
	return nil
}

func (r *Registry) compile(expr string) (*regexp.Regexp, error) {
	if cached, ok := r.patterns.Load(expr); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	r.patterns.Store(expr, re)
	return re, nil
}

func intParam(params map[string]string) (int, bool) {
	raw := strings.TrimSpace(params["value"])
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func floatParam(params map[string]string) (float64, bool) {
	raw := strings.TrimSpace(params["value"])
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	return v, err == nil
}

func length(value any) int {
	switch v := value.(type) {
	case string:
		return utf8.RuneCountInString(v)
	case []string:
		return len(v)
	case []any:
		return len(v)
	}
	return utf8.RuneCountInString(fmt.Sprint(value))
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func stringsOf(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return []string{fmt.Sprint(value)}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
