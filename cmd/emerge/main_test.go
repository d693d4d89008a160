package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emerge/internal/ir"
)

const animals = `
package = "zoo"

[[type]]
name = "Animal"
kind = "interface"

  [[type.member]]
  kind = "fn"
  name = "speak"
  params = [{ name = "self" }]
  returns = "String"
  abstract = true

[[type]]
name = "Dog"
kind = "class"
supertypes = "Animal"

  [[type.member]]
  kind = "var"
  name = "name"
  type = "String"
  init = "ctor"

  [[type.member]]
  kind = "fn"
  name = "speak"
  params = [{ name = "self" }]
  returns = "String"
  override = true
`

const broken = `
package = "zoo"

[[type]]
name = "Loop"
kind = "interface"
supertypes = "Loop"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root, finish := newRootCmd()
	defer finish()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckClean(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zoo.toml", animals)
	out, _, err := run(t, "check", dir)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if out != "" {
		t.Fatalf("clean check printed:\n%s", out)
	}
}

func TestCheckFailsOnErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "loop.toml", broken)
	tests := []struct {
		format string
		want   string
	}{
		{"pretty", "error[BND3001]: Cyclic inheritance: Loop -> Loop"},
		{"short", "error BND3001 "},
		{"json", `"code": "BND3001"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, _, err := run(t, "check", "--format", tt.format, dir)
			if !errors.Is(err, errCheckFailed) {
				t.Fatalf("err = %v, want errCheckFailed", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Fatalf("output lacks %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestCheckUsesManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "decls"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "decls"), "lower.toml", `
package = "p"

[[type]]
name = "lower"
kind = "class"
`)
	writeFile(t, dir, "emerge.toml", `
[package]
name = "p"
sources = ["decls"]

[check]
warnings_as_errors = true
`)
	t.Chdir(dir)

	out, _, err := run(t, "check", "--format", "short")
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("err = %v; the manifest makes warnings errors\n%s", err, out)
	}
	if !strings.Contains(out, "error LNT4001 ") {
		t.Fatalf("output = %s", out)
	}

	out, _, err = run(t, "check", "--format", "short", "--no-lints")
	if err != nil {
		t.Fatalf("--no-lints: %v\n%s", err, out)
	}
}

func TestCheckWithoutInputs(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := run(t, "check")
	if err == nil || !strings.Contains(err.Error(), "no emerge.toml found") {
		t.Fatalf("err = %v", err)
	}
}

func TestIRText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zoo.toml", animals)
	out, _, err := run(t, "ir", dir)
	if err != nil {
		t.Fatalf("ir: %v", err)
	}
	for _, want := range []string{"class Dog : Animal", "default constructor(name: String)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("IR lacks %q:\n%s", want, out)
		}
	}
}

func TestIRMsgpackToFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zoo.toml", animals)
	target := filepath.Join(t.TempDir(), "zoo.mp")
	if _, _, err := run(t, "ir", "--format", "msgpack", "-o", target, "--package", "zoo", dir); err != nil {
		t.Fatalf("ir: %v", err)
	}
	f, err := os.Open(target)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	snap, err := ir.DecodeSnapshot(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Package != "zoo" || len(snap.Types) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestIRRefusesBrokenInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "loop.toml", broken)
	out, errOut, err := run(t, "ir", dir)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("err = %v", err)
	}
	if out != "" || !strings.Contains(errOut, "BND3001") {
		t.Fatalf("stdout = %q, stderr = %q", out, errOut)
	}
}

func TestIRUnknownPackage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zoo.toml", animals)
	if _, _, err := run(t, "ir", "--package", "farm", dir); err == nil {
		t.Fatalf("expected an error for an unknown package")
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil || !strings.HasPrefix(out, "emerge ") {
		t.Fatalf("version = %q, %v", out, err)
	}
	out, _, err = run(t, "version", "--format", "json")
	if err != nil || !strings.Contains(out, `"tool": "emerge"`) {
		t.Fatalf("json version = %q, %v", out, err)
	}
}

func TestUseColor(t *testing.T) {
	if on, err := useColor("on", nil); err != nil || !on {
		t.Fatalf("on = %t, %v", on, err)
	}
	if on, err := useColor("off", nil); err != nil || on {
		t.Fatalf("off = %t, %v", on, err)
	}
	if on, err := useColor("auto", nil); err != nil || on {
		t.Fatalf("auto without a terminal = %t, %v", on, err)
	}
	if _, err := useColor("sometimes", nil); err == nil {
		t.Fatalf("invalid mode accepted")
	}
}

func TestProfilesSurviveFailedCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "loop.toml", broken)
	cpu := filepath.Join(dir, "cpu.pprof")
	mem := filepath.Join(dir, "mem.pprof")
	_, _, err := run(t, "--cpu-profile", cpu, "--mem-profile", mem, "check", dir)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("err = %v, want errCheckFailed", err)
	}
	for _, p := range []string{cpu, mem} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Fatalf("%s not written (err=%v)", filepath.Base(p), err)
		}
	}
}

func TestUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("fancy"); err == nil {
		t.Fatalf("invalid mode accepted")
	}
	var buf bytes.Buffer
	if shouldUseTUI(uiModeAuto, &buf) {
		t.Fatalf("auto must stay off for a buffer")
	}
	if !shouldUseTUI(uiModeOn, &buf) || shouldUseTUI(uiModeOff, os.Stdout) {
		t.Fatalf("explicit modes ignored")
	}
}
