package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownType marks a field whose type is not a supported variant.
	ErrUnknownType = errors.New("unknown field type")
	// ErrEmptyName marks a field without a name.
	ErrEmptyName = errors.New("field name is empty")
	// ErrDuplicateName marks a name used more than once in a fieldset tree.
	ErrDuplicateName = errors.New("duplicate field name")
	// ErrParentMismatch marks a child whose parent attribute names a different field.
	ErrParentMismatch = errors.New("parent does not match enclosing field")
)

// FieldsetIssue describes one problem found while linting a fieldset.
type FieldsetIssue struct {
	Path string
	Err  error
}

func (i FieldsetIssue) Error() string {
	if i.Path == "" {
		return i.Err.Error()
	}
	return i.Path + ": " + i.Err.Error()
}

func (i FieldsetIssue) Unwrap() error {
	return i.Err
}

// FieldsetError aggregates every issue discovered by Lint.
type FieldsetError struct {
	Issues []FieldsetIssue
}

func (e *FieldsetError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "model: invalid fieldset"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Error())
	}
	return "model: invalid fieldset: " + strings.Join(parts, "; ")
}

// Unwrap exposes the individual issues to errors.Is/errors.As.
func (e *FieldsetError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, len(e.Issues))
	for i, issue := range e.Issues {
		out[i] = issue
	}
	return out
}

// Lint validates the structural invariants the builder relies on: every
// field has a supported type and a name unique across the whole tree, and a
// child's Parent (when set) names its enclosing field. It returns nil or a
// *FieldsetError listing all issues.
func Lint(fields []Field) error {
	seen := make(map[string]string)
	var issues []FieldsetIssue
	lintFields(fields, "", "", seen, &issues)
	if len(issues) == 0 {
		return nil
	}
	return &FieldsetError{Issues: issues}
}

func lintFields(fields []Field, parent, prefix string, seen map[string]string, issues *[]FieldsetIssue) {
	for idx, field := range fields {
		name := strings.TrimSpace(field.Name)
		path := joinPath(prefix, name)
		if name == "" {
			path = joinPath(prefix, fmt.Sprintf("[%d]", idx))
			*issues = append(*issues, FieldsetIssue{Path: path, Err: ErrEmptyName})
		} else if first, dup := seen[name]; dup {
			*issues = append(*issues, FieldsetIssue{
				Path: path,
				Err:  fmt.Errorf("%w (first declared at %s)", ErrDuplicateName, first),
			})
		} else {
			seen[name] = path
		}

		if !field.Type.Valid() {
			*issues = append(*issues, FieldsetIssue{
				Path: path,
				Err:  fmt.Errorf("%w %q", ErrUnknownType, string(field.Type)),
			})
		}

		if field.Parent != "" && parent != "" && field.Parent != parent {
			*issues = append(*issues, FieldsetIssue{
				Path: path,
				Err:  fmt.Errorf("%w: declares %q, nested under %q", ErrParentMismatch, field.Parent, parent),
			})
		}

		if len(field.Children) > 0 {
			lintFields(field.Children, name, path, seen, issues)
		}
	}
}

// Walk visits every field depth-first in declaration order. Returning false
// from fn stops the walk.
func Walk(fields []Field, fn func(field Field, parent string) bool) {
	walk(fields, "", fn)
}

func walk(fields []Field, parent string, fn func(Field, string) bool) bool {
	for _, field := range fields {
		if !fn(field, parent) {
			return false
		}
		if len(field.Children) > 0 && !walk(field.Children, field.Name, fn) {
			return false
		}
	}
	return true
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
