package compiler

import (
	"path/filepath"
	"testing"
)

// testTree lays out an input tree and returns a Composer over it.
func testTree(t *testing.T) (string, *Composer) {
	t.Helper()
	root := t.TempDir()
	loader := NewLoader(filepath.Join(root, "vars"), nil)
	composer := NewComposer(loader, filepath.Join(root, "environments"), filepath.Join(root, "apps"), nil)
	return root, composer
}

func TestComposeInjectsEnvironment(t *testing.T) {
	root, composer := testTree(t)
	writeScript(t, root, "environments/prod.conf", `HOST = "a.example.com"`)
	writeScript(t, root, "apps/app1/prod.conf", `
ENDPOINT = env.HOST + "/api"
DEPLOYED_TO = env.name
`)

	bindings, err := composer.Compose("prod", "app1")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	doc, err := ConvertBindings(bindings, "app1.prod")
	if err != nil {
		t.Fatalf("ConvertBindings failed: %v", err)
	}

	if v, _ := doc.Field("ENDPOINT"); !v.Equal(String("a.example.com/api")) {
		t.Errorf("ENDPOINT = %#v", v)
	}
	if v, _ := doc.Field("DEPLOYED_TO"); !v.Equal(String("prod")) {
		t.Errorf("DEPLOYED_TO = %#v", v)
	}
}

func TestComposeStampsEnvironmentNameAfterExecution(t *testing.T) {
	root, composer := testTree(t)
	// The script's own `name` binding loses to the environment name.
	writeScript(t, root, "environments/prod.conf", `name = "scripted"`)
	writeScript(t, root, "apps/app1/prod.conf", `NAME = env.name`)

	bindings, err := composer.Compose("prod", "app1")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	doc, err := ConvertBindings(bindings, "app1.prod")
	if err != nil {
		t.Fatalf("ConvertBindings failed: %v", err)
	}
	if v, _ := doc.Field("NAME"); !v.Equal(String("prod")) {
		t.Errorf("NAME = %#v, want prod", v)
	}
}

func TestComposeEnvironmentBindingsDoNotLeak(t *testing.T) {
	root, composer := testTree(t)
	writeScript(t, root, "environments/prod.conf", `EXTRA = "environment-only"`)
	writeScript(t, root, "apps/app1/prod.conf", `FOO = "bar"`)

	bindings, err := composer.Compose("prod", "app1")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if _, ok := bindings["EXTRA"]; ok {
		t.Error("environment binding leaked into application scope")
	}
	if _, ok := bindings["FOO"]; !ok {
		t.Error("application binding missing")
	}
}

func TestComposeEnvironmentIsImmutable(t *testing.T) {
	root, composer := testTree(t)
	writeScript(t, root, "environments/prod.conf", `HOST = "a.example.com"`)
	writeScript(t, root, "apps/app1/prod.conf", `env.HOST = "hacked"`)

	_, err := composer.Compose("prod", "app1")
	if !IsRuntimeError(err) {
		t.Fatalf("expected runtime error mutating env, got %v", err)
	}
}

func TestComposeEnvironmentCanUseFragments(t *testing.T) {
	root, composer := testTree(t)
	writeScript(t, root, "vars/net.conf", `DOMAIN = "example.com"`)
	writeScript(t, root, "environments/prod.conf", `HOST = "a." + vars("net")["DOMAIN"]`)
	writeScript(t, root, "apps/app1/prod.conf", `ENDPOINT = env.HOST + "/api"`)

	bindings, err := composer.Compose("prod", "app1")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	doc, err := ConvertBindings(bindings, "app1.prod")
	if err != nil {
		t.Fatalf("ConvertBindings failed: %v", err)
	}
	if v, _ := doc.Field("ENDPOINT"); !v.Equal(String("a.example.com/api")) {
		t.Errorf("ENDPOINT = %#v", v)
	}
}

func TestComposeMissingEnvironmentFile(t *testing.T) {
	root, composer := testTree(t)
	writeScript(t, root, "apps/app1/prod.conf", `FOO = "bar"`)

	_, err := composer.Compose("prod", "app1")
	if !IsIOError(err) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestComposeRuntimeFaultInOverlay(t *testing.T) {
	root, composer := testTree(t)
	writeScript(t, root, "environments/prod.conf", `HOST = "a.example.com"`)
	writeScript(t, root, "apps/app1/prod.conf", `X = env.MISSING`)

	_, err := composer.Compose("prod", "app1")
	if !IsRuntimeError(err) {
		t.Fatalf("expected runtime error, got %v", err)
	}
}
