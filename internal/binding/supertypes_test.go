package binding

import (
	"strings"
	"testing"

	"emerge/internal/diag"
)

func TestCyclicInheritanceReportedOnce(t *testing.T) {
	f := bindTOML(t, `
package = "cyc"

[[type]]
name = "A"
kind = "interface"
supertypes = "B"

[[type]]
name = "B"
kind = "interface"
supertypes = "A"
`)
	f.requireOnly(t, diag.BndCyclicInheritance)
	if msg := f.messages(diag.BndCyclicInheritance)[0]; msg != "Cyclic inheritance: A -> B -> A" {
		t.Fatalf("unexpected message %q", msg)
	}
	if !f.typ(t, "A").HasCycle() || !f.typ(t, "B").HasCycle() {
		t.Fatalf("both types should be marked cyclic")
	}
}

func TestCycleReachedFromOutside(t *testing.T) {
	f := bindTOML(t, `
package = "cyc"

[[type]]
name = "Outer"
kind = "interface"
supertypes = "C"

[[type]]
name = "C"
kind = "interface"
supertypes = "A"

[[type]]
name = "A"
kind = "interface"
supertypes = "B"

[[type]]
name = "B"
kind = "interface"
supertypes = "C"
`)
	f.requireOnly(t, diag.BndCyclicInheritance)
	if msg := f.messages(diag.BndCyclicInheritance)[0]; msg != "Cyclic inheritance: A -> B -> C -> A" {
		t.Fatalf("unexpected message %q", msg)
	}
	if f.typ(t, "Outer").HasCycle() {
		t.Fatalf("Outer is not part of the cycle")
	}
}

func TestSubtypeOfCycleReportsOnlyTheCycle(t *testing.T) {
	f := bindTOML(t, `
package = "cyc"

[[type]]
name = "A"
kind = "interface"
supertypes = "B"

[[type]]
name = "B"
kind = "interface"
supertypes = "A"

  [[type.member]]
  kind = "fn"
  name = "foo"
  params = [{ name = "self" }]
  abstract = true

[[type]]
name = "C"
kind = "class"
supertypes = "A"

  [[type.member]]
  kind = "fn"
  name = "foo"
  params = [{ name = "self" }]
  override = true

[[type]]
name = "D"
kind = "class"
supertypes = "C"

  [[type.member]]
  kind = "fn"
  name = "foo"
  params = [{ name = "self" }]
  override = true
`)
	f.requireOnly(t, diag.BndCyclicInheritance)
	for _, name := range []string{"C", "D"} {
		typ := f.typ(t, name)
		if typ.HasCycle() {
			t.Fatalf("%s is not part of the cycle", name)
		}
		if !typ.InheritsCycle() {
			t.Fatalf("%s inherits from a cyclic type", name)
		}
	}
}

func TestSelfInheritance(t *testing.T) {
	f := bindTOML(t, `
package = "cyc"

[[type]]
name = "Self"
kind = "class"
supertypes = "Self"
`)
	f.requireOnly(t, diag.BndCyclicInheritance)
}

func TestDuplicateSupertype(t *testing.T) {
	f := bindTOML(t, `
package = "dup"

[[type]]
name = "Interface1"
kind = "interface"

[[type]]
name = "X"
kind = "class"
supertypes = ["Interface1", "Interface1"]
`)
	f.requireOnly(t, diag.BndDuplicateSupertype)
	bases := f.typ(t, "X").Supertypes().BaseTypes()
	if len(bases) != 1 || bases[0].Name() != "Interface1" {
		t.Fatalf("resolved supertypes = %v", bases)
	}
}

func TestIllegalSupertypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want diag.Code
	}{
		{
			name: "class",
			src: `
[[type]]
name = "Base"
kind = "class"

[[type]]
name = "Derived"
kind = "class"
supertypes = "Base"
`,
			want: diag.BndSupertypeNotInterface,
		},
		{
			name: "type parameter",
			src: `
[[type]]
name = "Wrapper"
kind = "class"
type_params = ["T"]
supertypes = "T"
`,
			want: diag.BndIllegalSupertype,
		},
		{
			name: "unknown",
			src: `
[[type]]
name = "Lost"
kind = "class"
supertypes = "Nowhere"
`,
			want: diag.DclUnknownType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := bindTOML(t, "package = \"bad\"\n"+tt.src)
			f.requireOnly(t, tt.want)
		})
	}
}

func TestAnyIsALegalSupertype(t *testing.T) {
	f := bindTOML(t, `
package = "top"

[[type]]
name = "Plain"
kind = "class"
supertypes = "Any"
`)
	f.requireClean(t)
}

func TestAssignability(t *testing.T) {
	f := bindTOML(t, `
package = "assign"

[[type]]
name = "Shape"
kind = "interface"

[[type]]
name = "Polygon"
kind = "interface"
supertypes = "Shape"

[[type]]
name = "Square"
kind = "class"
supertypes = "Polygon"

[[type]]
name = "Box"
kind = "interface"
type_params = ["T"]

[[type]]
name = "IntBox"
kind = "class"
supertypes = "Box<S32>"
`)
	f.requireClean(t)
	b := f.ctx.Builtins()
	square := f.typ(t, "Square").SelfType()
	shape := f.typ(t, "Shape").SelfType()
	box := f.typ(t, "Box")
	intBox := f.typ(t, "IntBox").SelfType()

	tests := []struct {
		name     string
		src, dst *Type
		want     bool
	}{
		{"transitive", square, shape, true},
		{"not downwards", shape, square, false},
		{"to any", shape, b.Any.SelfType(), true},
		{"from nothing", b.Nothing.SelfType(), square, true},
		{"error", ErrorType, square, true},
		{"matching arguments", intBox, Named(box, b.S32.SelfType()), true},
		{"invariant arguments", intBox, Named(box, b.String.SelfType()), false},
		{"unrelated", b.S32.SelfType(), b.String.SelfType(), false},
	}
	for _, tt := range tests {
		if got := tt.src.AssignableTo(tt.dst); got != tt.want {
			t.Errorf("%s: %s assignable to %s = %v, want %v", tt.name, tt.src, tt.dst, got, tt.want)
		}
	}
	if Disjoint(square, shape) || !Disjoint(b.S32.SelfType(), b.String.SelfType()) {
		t.Errorf("unexpected disjointness")
	}
}

func TestAssignabilityTerminatesOnCycles(t *testing.T) {
	f := bindTOML(t, `
package = "cyc"

[[type]]
name = "A"
kind = "interface"
supertypes = "B"

[[type]]
name = "B"
kind = "interface"
supertypes = "A"

[[type]]
name = "C"
kind = "interface"
`)
	a, c := f.typ(t, "A").SelfType(), f.typ(t, "C").SelfType()
	if a.AssignableTo(c) {
		t.Fatalf("A is not a C")
	}
	if !strings.Contains(f.dump(), "BND3001") {
		t.Fatalf("cycle not reported:\n%s", f.dump())
	}
}

const boxes = `
package = "dia"

[[type]]
name = "Box"
kind = "interface"
type_params = ["T"]

  [[type.member]]
  kind = "fn"
  name = "get"
  params = [{ name = "self" }]
  returns = "T"
  abstract = true

[[type]]
name = "IntBox"
kind = "interface"
supertypes = "Box<S32>"

[[type]]
name = "OtherIntBox"
kind = "interface"
supertypes = "Box<S32>"

[[type]]
name = "StrBox"
kind = "interface"
supertypes = "Box<String>"
`

func TestDiamondTypeArguments(t *testing.T) {
	f := bindTOML(t, boxes+`
[[type]]
name = "Ints"
kind = "interface"
supertypes = ["IntBox", "OtherIntBox"]
`)
	f.requireClean(t)

	f = bindTOML(t, boxes+`
[[type]]
name = "Both"
kind = "interface"
supertypes = ["IntBox", "StrBox"]

[[type]]
name = "Below"
kind = "interface"
supertypes = "Both"
`)
	f.requireOnly(t, diag.BndInconsistentDiamondTypeArguments)
	if msg := f.messages(diag.BndInconsistentDiamondTypeArguments)[0]; msg != "Both inherits Box as both Box<S32> and Box<String>" {
		t.Fatalf("unexpected message %q", msg)
	}
}
