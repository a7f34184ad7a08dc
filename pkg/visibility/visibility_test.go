package visibility_test

import (
	"testing"

	"github.com/goliatone/go-dynform/pkg/visibility"
)

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, 0, int64(0), 0.0, "", "false", "OFF", " no ", "0", []any{}, map[string]any{}}
	for _, v := range falsy {
		if visibility.Truthy(v) {
			t.Fatalf("expected %#v to be falsy", v)
		}
	}
	truthy := []any{true, 1, "yes", "Pizza", []string{"a"}, uint8(3)}
	for _, v := range truthy {
		if !visibility.Truthy(v) {
			t.Fatalf("expected %#v to be truthy", v)
		}
	}
}

func TestContextLookup(t *testing.T) {
	ctx := visibility.Context{
		Values: map[string]any{"a": map[string]any{"b": []any{"x", "y"}}},
		Extras: map[string]any{"role": "admin"},
	}
	if v, ok := ctx.Lookup("a.b.1"); !ok || v != "y" {
		t.Fatalf("expected y, got %v %v", v, ok)
	}
	if v, ok := ctx.Lookup("extras.role"); !ok || v != "admin" {
		t.Fatalf("expected admin, got %v %v", v, ok)
	}
	if _, ok := ctx.Lookup("a.c"); ok {
		t.Fatalf("expected miss")
	}
}
