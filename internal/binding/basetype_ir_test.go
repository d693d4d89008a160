package binding

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/ir"
	"emerge/internal/source"
)

const documentUnit = printable + `
[[type]]
name = "Document"
kind = "class"
supertypes = ["Printable", "Sized"]

  [[type.member]]
  kind = "var"
  name = "title"
  type = "String"
  init = "ctor"

  [[type.member]]
  kind = "var"
  name = "pages"
  type = "S32"
  init = "expr"
  value = "1"

  [[type.member]]
  kind = "var"
  name = "cursor"
  type = "S32"
  var = true

  [[type.member]]
  kind = "constructor"

    [[type.member.body]]
    op = "mixin"
    value = "ConsolePrinter()"
    type = "ConsolePrinter"

    [[type.member.body]]
    op = "assign"
    member = "cursor"
    value = "0"
    type = "S32"

    [[type.member.body]]
    op = "mixin"
    value = "FixedSize()"
    type = "FixedSize"

  [[type.member]]
  kind = "destructor"

    [[type.member.body]]
    op = "call"
    value = "log()"
`

func TestFieldIdsAreDense(t *testing.T) {
	f := bindTOML(t, documentUnit)
	f.requireClean(t)
	out := f.typ(t, "Document").ToIR()
	wantNames := []string{"title", "pages", "cursor", "$mixin0", "$mixin1"}
	if len(out.Fields) != len(wantNames) {
		t.Fatalf("fields = %+v", out.Fields)
	}
	for i, fld := range out.Fields {
		if fld.ID != uint32(i) || fld.Name != wantNames[i] {
			t.Fatalf("field %d = %+v, want %s", i, fld, wantNames[i])
		}
	}
	// lowering again must not allocate more
	again := f.typ(t, "Document").ToIR()
	if len(again.Fields) != len(wantNames) {
		t.Fatalf("second lowering allocated fields: %+v", again.Fields)
	}
}

func ops(stmts []ir.Stmt) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = string(s.Op)
	}
	return strings.Join(parts, " ")
}

func TestConstructorAndDestructorIR(t *testing.T) {
	f := bindTOML(t, documentUnit)
	f.requireClean(t)
	out := f.typ(t, "Document").ToIR()

	if got := ops(out.Constructor.Body); got != "alloc init init mixin assign mixin" {
		t.Fatalf("constructor body = %s", got)
	}
	if len(out.Constructor.Params) != 1 || out.Constructor.Params[0].Name != "title" {
		t.Fatalf("constructor params = %+v", out.Constructor.Params)
	}
	if got := ops(out.Destructor.Body); got != "eval drop drop drop drop-mixin drop-mixin dealloc" {
		t.Fatalf("destructor body = %s", got)
	}
	drops := out.Destructor.Body[1:4]
	for i, s := range drops {
		if s.Field != int32(i) {
			t.Fatalf("member drops out of declaration order: %+v", drops)
		}
	}
}

func TestMixinBackedFunctionsDelegate(t *testing.T) {
	f := bindTOML(t, documentUnit)
	f.requireClean(t)
	out := f.typ(t, "Document").ToIR()
	found := 0
	for _, g := range out.OverloadGroups {
		for _, fn := range g.Functions {
			if fn.Kind != ir.FunctionMixin {
				continue
			}
			found++
			want := map[string]int32{"mx.Document.print": 3, "mx.Document.size": 4}[fn.CanonicalName]
			if fn.MixinField != want {
				t.Fatalf("%s delegates through #%d, want #%d", fn.CanonicalName, fn.MixinField, want)
			}
		}
	}
	if found != 2 {
		t.Fatalf("found %d mixin-backed functions", found)
	}
}

func snapshotBytes(t *testing.T, src string) []byte {
	t.Helper()
	fs := source.NewFileSet()
	unit, err := decl.Parse(fs.Get(fs.AddVirtual("unit.toml", []byte(src))))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx := NewContext(context.Background())
	bag := diag.NewBag(64)
	ctx.BindUnits(NewDiagnosis(diag.BagReporter{Bag: bag}), nil, unit)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", diag.FormatLines(bag.Items(), fs, false))
	}
	data, err := ir.MarshalSnapshot(ctx.Snapshot(unit.Package))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestBindingIsDeterministic(t *testing.T) {
	first := snapshotBytes(t, documentUnit)
	for range 5 {
		if !bytes.Equal(first, snapshotBytes(t, documentUnit)) {
			t.Fatalf("binding the same unit twice produced different IR")
		}
	}
}

func TestLoweringRequiresValidation(t *testing.T) {
	ctx := NewContext(context.Background())
	bag := diag.NewBag(8)
	d := NewDiagnosis(diag.BagReporter{Bag: bag})
	types := ctx.Declare(d, &decl.Unit{Package: "early", Types: []*decl.BaseTypeDecl{{Name: "Early", Kind: decl.KindClass}}})
	expectICE(t, func() { types[0].ToIR() })
	expectICE(t, func() { types[0].AllocateField(ctx.Builtins().S32.SelfType(), "x") })
}

func TestCyclicTypesAreNotLowered(t *testing.T) {
	f := bindTOML(t, `
package = "cyc"

[[type]]
name = "Loop"
kind = "class"
supertypes = "Loop"
`)
	expectICE(t, func() { f.typ(t, "Loop").ToIR() })
}

func TestVisibilityIsLowered(t *testing.T) {
	f := bindTOML(t, `
package = "vis"

[[type]]
name = "Account"
kind = "class"
visibility = "module"

  [[type.member]]
  kind = "var"
  name = "balance"
  type = "S32"
  init = "ctor"
  visibility = "export"

  [[type.member]]
  kind = "var"
  name = "pin"
  type = "S32"
  init = "ctor"
  visibility = "private"

  [[type.member]]
  kind = "fn"
  name = "audit"
  params = [{ name = "self" }]
  visibility = "private"
`)
	f.requireClean(t)
	out := f.typ(t, "Account").ToIR()
	if out.Visibility != "module" || out.Constructor.Visibility != "module" {
		t.Fatalf("type %q, constructor %q", out.Visibility, out.Constructor.Visibility)
	}
	got := map[string]string{}
	for _, v := range out.MemberVariables {
		got[v.Name] = v.Visibility
	}
	if got["balance"] != "module" || got["pin"] != "private" {
		t.Fatalf("member variables = %v; export must be capped at the owner", got)
	}
	if fn := out.OverloadGroups[0].Functions[0]; fn.Visibility != "private" {
		t.Fatalf("%s visibility = %q", fn.CanonicalName, fn.Visibility)
	}
}
