// Package testsupport holds fixture and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/definition"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
)

// LoadDefinition decodes a definition fixture, picking the format from the
// file extension.
func LoadDefinition(t *testing.T, path string) definition.Definition {
	t.Helper()

	def, err := LoadDefinitionFromPath(path)
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	return def
}

// LoadDefinitionFromPath returns a Definition without requiring testing.T so
// callers can wire fixtures in setup functions.
func LoadDefinitionFromPath(path string) (definition.Definition, error) {
	if path == "" {
		return definition.Definition{}, errors.New("testsupport: definition path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return definition.Definition{}, fmt.Errorf("testsupport: read definition: %w", err)
	}
	format, _ := definition.FormatFromPath(path)
	def, err := definition.Decode(data, format)
	if err != nil {
		return definition.Definition{}, fmt.Errorf("testsupport: decode %s: %w", path, err)
	}
	def.Source = path
	return def, nil
}

// MustBuild builds def with a default builder plus any extra options.
func MustBuild(t *testing.T, def definition.Definition, extra ...form.BuildOption) *form.FormState {
	t.Helper()

	state, err := def.Build(nil, extra...)
	if err != nil {
		t.Fatalf("build %s: %v", def.ID, err)
	}
	t.Cleanup(state.Close)
	return state
}

// AssertValues fails the test when the extracted values differ from want.
func AssertValues(t *testing.T, want, got []model.KeyValue) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
