package decl

import (
	"errors"
	"strings"
	"testing"

	"emerge/internal/source"
)

const tomlUnit = `
package = "shapes"

[[type]]
name = "Shape"
kind = "interface"

  [[type.member]]
  kind = "fn"
  name = "area"
  params = [{ name = "self" }]
  returns = "S32"
  abstract = true

[[type]]
name = "Box"
type_params = ["T"]
supertypes = "Shape"

  [[type.member]]
  kind = "var"
  name = "x"
  type = "S32"
  init = "ctor"

  [[type.member]]
  kind = "var"
  name = "y"
  type = "List<T>"
  init = "expr"
  value = "emptyList()"

  [[type.member]]
  kind = "constructor"

    [[type.member.body]]
    op = "mixin"
    value = "defaultShape"
    type = "Shape"

    [[type.member.body]]
    op = "if"

      [[type.member.body.then]]
      op = "throw"
`

func parseString(t *testing.T, path, content string) *Unit {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(content))
	unit, err := Parse(fs.Get(id))
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return unit
}

func TestParseTOML(t *testing.T) {
	unit := parseString(t, "shapes.toml", tomlUnit)
	if unit.Package != "shapes" || len(unit.Types) != 2 {
		t.Fatalf("unexpected unit %+v", unit)
	}

	shape := unit.Types[0]
	if shape.Kind != KindInterface || len(shape.Entries) != 1 {
		t.Fatalf("unexpected interface %+v", shape)
	}
	area := shape.Entries[0].Function
	if area == nil || !area.HasReceiver() || area.Body != nil || area.Return.Name != "S32" {
		t.Fatalf("unexpected abstract function %+v", area)
	}

	box := unit.Types[1]
	if box.Kind != KindClass || len(box.TypeParams) != 1 || box.TypeParams[0].Name != "T" {
		t.Fatalf("unexpected class %+v", box)
	}
	if len(box.Supertypes) != 1 || box.Supertypes[0].Name != "Shape" {
		t.Fatalf("supertypes: %+v", box.Supertypes)
	}
	if got := string([]byte(tomlUnit)[box.Span.Start:box.Span.End]); got != "Box" {
		t.Fatalf("class span points at %q", got)
	}

	y := box.Entries[1].Variable
	if y.Init != InitExpr || y.InitExpr.Text != "emptyList()" || y.Type.String() != "List<T>" {
		t.Fatalf("unexpected y %+v", y)
	}
	if got := string([]byte(tomlUnit)[y.Type.Span.Start:y.Type.Span.End]); got != "List<T>" {
		t.Fatalf("type span points at %q", got)
	}

	ctor := box.Entries[2].Constructor
	if ctor == nil || len(ctor.Body.Stmts) != 2 {
		t.Fatalf("unexpected constructor %+v", ctor)
	}
	if ctor.Body.Stmts[0].Kind != StmtMixin || ctor.Body.Stmts[0].Value.Type.Name != "Shape" {
		t.Fatalf("unexpected mixin %+v", ctor.Body.Stmts[0])
	}
	ifStmt := ctor.Body.Stmts[1]
	if ifStmt.Kind != StmtIf || len(ifStmt.Then.Stmts) != 1 || ifStmt.Then.Stmts[0].Kind != StmtThrow {
		t.Fatalf("unexpected if %+v", ifStmt)
	}
}

const yamlUnit = `
package: shapes
types:
  - name: Interface1
    kind: interface
  - name: X
    supertypes: [Interface1, Interface1]
    members:
      - kind: var
        name: count
        type: S32
        init: ctor
      - kind: fn
        name: size
        accessor: get
        params:
          - name: self
        returns: S32
`

func TestParseYAML(t *testing.T) {
	unit := parseString(t, "shapes.yaml", yamlUnit)
	x := unit.Types[1]
	if len(x.Supertypes) != 2 {
		t.Fatalf("expected both supertype clauses, got %d", len(x.Supertypes))
	}
	if x.Supertypes[0].Span == x.Supertypes[1].Span {
		t.Fatalf("duplicate clauses must have distinct spans")
	}
	size := x.Entries[1].Function
	if size.Accessor != AccessorRead || !size.HasReceiver() || size.Params[0].Type != nil {
		t.Fatalf("unexpected accessor %+v", size)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	tests := []struct{ path, content string }{
		{"bad.toml", "[[type]]\nname = \"A\"\ncolour = \"red\"\n"},
		{"bad.yaml", "types:\n  - name: A\n    colour: red\n"},
		{"bad.toml", "[[type]]\nname = \"A\"\nkind = \"struct\"\n"},
	}
	for _, tt := range tests {
		fs := source.NewFileSet()
		if _, err := Parse(fs.Get(fs.AddVirtual(tt.path, []byte(tt.content)))); err == nil {
			t.Errorf("%s: expected an error for %q", tt.path, tt.content)
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := FormatOf("types.json")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseTypeRef(t *testing.T) {
	tests := []struct {
		in, want string
		bad      bool
	}{
		{"S32", "S32", false},
		{"Map<String, List<T>>", "Map<String, List<T>>", false},
		{" Box < T > ", "Box<T>", false},
		{"Box<", "", true},
		{"<T>", "", true},
		{"Box<T> x", "", true},
	}
	for _, tt := range tests {
		ref, err := ParseTypeRef(tt.in, source.Span{})
		if tt.bad {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if ref.String() != tt.want {
			t.Errorf("%q: got %q, want %q", tt.in, ref.String(), tt.want)
		}
	}
}

func TestIdentifiersAreNFC(t *testing.T) {
	unit := parseString(t, "u.toml", "[[type]]\nname = \"Cafe\u0301\"\n")
	if got := unit.Types[0].Name; got != "Caf\u00e9" || strings.ContainsRune(got, '\u0301') {
		t.Fatalf("name not normalized: %q", got)
	}
}
