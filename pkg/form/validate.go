package form

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-dynform/pkg/validation"
)

// ValidationReport lists the rule failures of a state.
type ValidationReport struct {
	Issues []validation.Issue `json:"issues,omitempty"`
}

// Valid reports whether no rule failed.
func (r ValidationReport) Valid() bool {
	return len(r.Issues) == 0
}

// ByField groups issue messages by field name.
func (r ValidationReport) ByField() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// ValidationError wraps a failing report.
type ValidationError struct {
	Report ValidationReport
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Report.Issues))
	for _, issue := range e.Report.Issues {
		parts = append(parts, issue.Error())
	}
	return fmt.Sprintf("form: %d validation issue(s): %s", len(parts), strings.Join(parts, "; "))
}

// Validate checks every enabled, visible input slot against its rules.
// Disabled and hidden slots are skipped along with their descendants.
func (f *FormState) Validate() ValidationReport {
	r := f.root
	r.mu.RLock()
	defer r.mu.RUnlock()

	var report ValidationReport
	if r.rules == nil {
		return report
	}
	f.validateLocked(&report)
	return report
}

func (f *FormState) validateLocked(report *ValidationReport) {
	for _, slot := range f.slots {
		if !slot.enabled || !slot.visible {
			continue
		}
		if !slot.field.Type.Presentational() {
			report.Issues = append(report.Issues, f.root.rules.Check(slot.field, slot.value)...)
		}
		if slot.children != nil {
			slot.children.validateLocked(report)
		}
	}
}
