package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.starlark.net/starlark"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func newTestLoader(t *testing.T, varsDir string) *Loader {
	t.Helper()
	return NewLoader(varsDir, nil)
}

func TestLoadScopeReturnsBindings(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "env.conf", `
HOST = "a.example.com"
PORT = 8080
helper = "not exported, but still a binding"
`)

	bindings, err := newTestLoader(t, dir).LoadScope(path)
	if err != nil {
		t.Fatalf("LoadScope failed: %v", err)
	}
	if got := bindings["HOST"]; got != starlark.String("a.example.com") {
		t.Errorf("HOST = %v", got)
	}
	if _, ok := bindings["helper"]; !ok {
		t.Error("loader must return every binding; filtering happens at conversion")
	}
}

func TestLoadScopeIsolation(t *testing.T) {
	dir := t.TempDir()
	first := writeScript(t, dir, "first.conf", `X = 1`)
	second := writeScript(t, dir, "second.conf", `Y = 2`)

	loader := newTestLoader(t, dir)
	if _, err := loader.LoadScope(first); err != nil {
		t.Fatalf("LoadScope failed: %v", err)
	}
	bindings, err := loader.LoadScope(second)
	if err != nil {
		t.Fatalf("LoadScope failed: %v", err)
	}
	if _, ok := bindings["X"]; ok {
		t.Error("bindings leaked between scopes")
	}
}

func TestLoadScopeErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		script string
		check  func(error) bool
		kind   string
	}{
		{"syntax error", `X = (`, IsLoadError, "load"},
		{"runtime error", `X = 1 // 0`, IsRuntimeError, "runtime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, dir, tt.name+".conf", tt.script)
			_, err := newTestLoader(t, dir).LoadScope(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("expected %s error, got %v", tt.kind, err)
			}
		})
	}
}

func TestLoadScopeMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := newTestLoader(t, dir).LoadScope(filepath.Join(dir, "absent.conf"))
	if !IsIOError(err) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestVarsImportsFragment(t *testing.T) {
	dir := t.TempDir()
	varsDir := filepath.Join(dir, "vars")
	writeScript(t, varsDir, "shared.conf", `TIMEOUT = 30`)
	path := writeScript(t, dir, "app.conf", `COMMON = vars("shared")`)

	bindings, err := newTestLoader(t, varsDir).LoadScope(path)
	if err != nil {
		t.Fatalf("LoadScope failed: %v", err)
	}
	common, ok := bindings["COMMON"].(*starlark.Dict)
	if !ok {
		t.Fatalf("COMMON is %T, want dict", bindings["COMMON"])
	}
	v, found, err := common.Get(starlark.String("TIMEOUT"))
	if err != nil || !found {
		t.Fatalf("TIMEOUT lookup: found=%v err=%v", found, err)
	}
	if v != starlark.MakeInt(30) {
		t.Errorf("TIMEOUT = %v", v)
	}
}

func TestVarsNestedImports(t *testing.T) {
	dir := t.TempDir()
	varsDir := filepath.Join(dir, "vars")
	writeScript(t, varsDir, "inner.conf", `LEVEL = "inner"`)
	writeScript(t, varsDir, "outer.conf", `INNER = vars("inner")`)
	path := writeScript(t, dir, "app.conf", `OUTER = vars("outer")`)

	bindings, err := newTestLoader(t, varsDir).LoadScope(path)
	if err != nil {
		t.Fatalf("LoadScope failed: %v", err)
	}
	if _, ok := bindings["OUTER"].(*starlark.Dict); !ok {
		t.Fatalf("OUTER is %T, want dict", bindings["OUTER"])
	}
}

func TestVarsNoCachingBetweenImports(t *testing.T) {
	dir := t.TempDir()
	varsDir := filepath.Join(dir, "vars")
	writeScript(t, varsDir, "shared.conf", `VALUE = 1`)
	// The caller owns each imported table: merging a field into one copy
	// must not show up in a second import of the same fragment.
	path := writeScript(t, dir, "app.conf", `
A = vars("shared")
A["EXTRA"] = 2
B = vars("shared")
LEN_A = len(A)
LEN_B = len(B)
`)

	bindings, err := newTestLoader(t, varsDir).LoadScope(path)
	if err != nil {
		t.Fatalf("LoadScope failed: %v", err)
	}
	if bindings["LEN_A"] != starlark.MakeInt(2) || bindings["LEN_B"] != starlark.MakeInt(1) {
		t.Errorf("fragment was cached: LEN_A=%v LEN_B=%v", bindings["LEN_A"], bindings["LEN_B"])
	}
}

func TestVarsArgumentErrors(t *testing.T) {
	dir := t.TempDir()
	varsDir := filepath.Join(dir, "vars")

	tests := []struct {
		name   string
		script string
	}{
		{"no arguments", `X = vars()`},
		{"two arguments", `X = vars("a", "b")`},
		{"non-string argument", `X = vars(1)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, dir, tt.name+".conf", tt.script)
			_, err := newTestLoader(t, varsDir).LoadScope(path)
			if !IsRuntimeError(err) {
				t.Fatalf("expected runtime error, got %v", err)
			}
			if !strings.Contains(err.Error(), "'vars' takes exactly one argument") {
				t.Errorf("unexpected message: %v", err)
			}
		})
	}
}

func TestVarsMissingFragment(t *testing.T) {
	dir := t.TempDir()
	varsDir := filepath.Join(dir, "vars")
	path := writeScript(t, dir, "app.conf", `X = vars("nope")`)

	_, err := newTestLoader(t, varsDir).LoadScope(path)
	if !IsIOError(err) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestVarsSelfImportHitsDepthLimit(t *testing.T) {
	dir := t.TempDir()
	varsDir := filepath.Join(dir, "vars")
	writeScript(t, varsDir, "loop.conf", `SELF = vars("loop")`)
	path := writeScript(t, dir, "app.conf", `X = vars("loop")`)

	_, err := newTestLoader(t, varsDir).LoadScope(path)
	if !IsRuntimeError(err) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if !strings.Contains(err.Error(), "import depth limit") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestVarsFragmentRuntimeErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	varsDir := filepath.Join(dir, "vars")
	writeScript(t, varsDir, "bad.conf", `X = 1 // 0`)
	path := writeScript(t, dir, "app.conf", `X = vars("bad")`)

	_, err := newTestLoader(t, varsDir).LoadScope(path)
	if !IsRuntimeError(err) {
		t.Fatalf("expected runtime error, got %v", err)
	}
}
