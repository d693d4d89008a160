package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"emerge/internal/diag"
	"emerge/internal/source"
)

const sample = "[[type]]\nname = \"Circle\"\nsupertypes = \"Shape\"\nlabel = \"日本\"\n"

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/work/decls/shapes.toml", []byte(sample))
	at := func(text string) source.Span {
		i := strings.Index(sample, text)
		if i < 0 {
			t.Fatalf("%q not in sample", text)
		}
		return source.Span{File: id, Start: uint32(i), End: uint32(i + len(text))}
	}
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.BndCyclicInheritance, at(`"Shape"`), "Cyclic inheritance: Circle -> Shape -> Circle").
		WithNote(at("Circle"), "Circle declared here"))
	bag.Add(diag.New(diag.SevWarning, diag.LntUnconventionalTypeName, at("日本"), "Type name 日本 should start with an upper-case letter"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings (check): total 1.00 ms").
		WithNote(source.Span{}, `{"kind":"check"}`))
	return bag, fs
}

func TestPretty(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeRelative, BaseDir: "/work", ShowNotes: true})
	out := buf.String()

	for _, want := range []string{
		"error[BND3001]: Cyclic inheritance: Circle -> Shape -> Circle",
		" --> decls/shapes.toml:3:14",
		"3 | supertypes = \"Shape\"",
		"  |              ^^^^^^^",
		"= note: decls/shapes.toml:2:9: Circle declared here",
		"warning[LNT4001]",
		"  |          ^^^^",
		"info[OBS6001]: timings (check): total 1.00 ms",
		"1 error, 1 warning",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colors were disabled:\n%q", out)
	}
}

func TestPrettyColorAndNotes(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected escape codes:\n%q", out)
	}
	if strings.Contains(out, "note:") {
		t.Fatalf("notes were not requested:\n%s", out)
	}
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("/home/user/project/src/shapes.toml", nil))
	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAuto, "/home/user/project/src/shapes.toml"},
		{PathModeAbsolute, "/home/user/project/src/shapes.toml"},
		{PathModeRelative, "src/shapes.toml"},
		{PathModeBasename, "shapes.toml"},
	}
	for _, tt := range tests {
		if got := formatPath(f, tt.mode, "/home/user/project"); got != tt.want {
			t.Errorf("mode %d: got %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestClip(t *testing.T) {
	if got := clip("abcdef", 0); got != "abcdef" {
		t.Fatalf("unlimited width clipped: %q", got)
	}
	if got := clip("abcdef", 4); got != "abc…" {
		t.Fatalf("clip = %q", got)
	}
	if got := clip("日本語", 4); got != "日…" {
		t.Fatalf("wide clip = %q", got)
	}
}

func TestShortSkipsTimings(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Short(&buf, bag, fs, false)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "error BND3001 /work/decls/shapes.toml:3:14 ") {
		t.Fatalf("unexpected line %q", lines[0])
	}
}

func TestJSON(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 3 || out.Errors != 1 || out.Warnings != 1 {
		t.Fatalf("counts = %d/%d/%d", out.Count, out.Errors, out.Warnings)
	}
	first := out.Diagnostics[0]
	if first.Code != "BND3001" || first.Location == nil || first.Location.File != "shapes.toml" || first.Location.StartLine != 3 {
		t.Fatalf("first = %+v", first)
	}
	if len(first.Notes) != 0 {
		t.Fatalf("notes were not requested")
	}
	timing := out.Diagnostics[2]
	if timing.Location != nil || len(timing.Notes) != 1 || timing.Notes[0].Message != `{"kind":"check"}` {
		t.Fatalf("timing = %+v", timing)
	}

	limited := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if limited.Count != 1 {
		t.Fatalf("Max ignored: %d", limited.Count)
	}
}
