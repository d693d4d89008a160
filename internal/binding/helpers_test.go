package binding

import (
	"context"
	"strings"
	"testing"

	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/phase"
	"emerge/internal/source"
	"emerge/internal/testkit"
)

type fixture struct {
	ctx   *Context
	bag   *diag.Bag
	fs    *source.FileSet
	types map[string]*BaseType
}

func bindTOML(t *testing.T, src string) *fixture {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("unit.toml", []byte(src))
	unit, err := decl.Parse(fs.Get(id))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := testkit.CheckSpanInvariants(unit, fs.Get(id)); err != nil {
		t.Fatalf("spans: %v", err)
	}
	ctx := NewContext(context.Background())
	bag := diag.NewBag(256)
	d := NewDiagnosis(diag.BagReporter{Bag: bag})
	bound := ctx.BindUnits(d, nil, unit)
	f := &fixture{ctx: ctx, bag: bag, fs: fs, types: make(map[string]*BaseType)}
	for _, bt := range bound {
		f.types[bt.Name()] = bt
	}
	return f
}

func (f *fixture) typ(t *testing.T, name string) *BaseType {
	t.Helper()
	bt, ok := f.types[name]
	if !ok {
		t.Fatalf("no type %s", name)
	}
	return bt
}

func (f *fixture) count(code diag.Code) int {
	return f.bag.Count(code)
}

func (f *fixture) dump() string {
	return diag.FormatLines(f.bag.Items(), f.fs, false)
}

func (f *fixture) requireClean(t *testing.T) {
	t.Helper()
	if f.bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", f.dump())
	}
}

// requireOnly fails unless the errors reported are exactly want, each once.
func (f *fixture) requireOnly(t *testing.T, want ...diag.Code) {
	t.Helper()
	errs := 0
	for _, d := range f.bag.Items() {
		if d.Severity >= diag.SevError {
			errs++
		}
	}
	for _, code := range want {
		if got := f.count(code); got != 1 {
			t.Fatalf("%s reported %d times, want 1:\n%s", code.ID(), got, f.dump())
		}
	}
	if errs != len(want) {
		t.Fatalf("got %d errors, want %d:\n%s", errs, len(want), f.dump())
	}
}

func (f *fixture) messages(code diag.Code) []string {
	var out []string
	for _, d := range f.bag.Items() {
		if d.Code == code {
			out = append(out, d.Message)
		}
	}
	return out
}

func functionNames(fns []MemberFunction) string {
	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = fn.CanonicalName()
	}
	return strings.Join(names, ",")
}

func expectICE(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*phase.InternalError); !ok {
			t.Fatalf("expected an internal error, got %v", r)
		}
	}()
	fn()
}
