package binding

import (
	"testing"
)

const lattice = `
package = "lat"

[[type]]
name = "A"
kind = "interface"

[[type]]
name = "AB"
kind = "interface"
supertypes = "A"

[[type]]
name = "ABC"
kind = "interface"
supertypes = "AB"

[[type]]
name = "C"
kind = "interface"

[[type]]
name = "Left"
kind = "interface"
supertypes = ["A", "C"]

[[type]]
name = "Right"
kind = "interface"
supertypes = ["A", "C"]

[[type]]
name = "Impl"
kind = "class"
supertypes = "ABC"
`

func permutations(in []*BaseType) [][]*BaseType {
	if len(in) <= 1 {
		return [][]*BaseType{in}
	}
	var out [][]*BaseType
	for i := range in {
		rest := make([]*BaseType, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]*BaseType{in[i]}, p...))
		}
	}
	return out
}

func TestClosestCommonSupertype(t *testing.T) {
	f := bindTOML(t, lattice)
	f.requireClean(t)
	b := f.ctx.Builtins()
	ty := func(name string) *BaseType { return f.typ(t, name) }

	tests := []struct {
		name  string
		types []*BaseType
		want  *BaseType
	}{
		{"parent and child", []*BaseType{ty("AB"), ty("ABC")}, ty("AB")},
		{"unrelated", []*BaseType{ty("A"), ty("C")}, b.Any},
		{"single", []*BaseType{ty("ABC")}, ty("ABC")},
		{"class and ancestor", []*BaseType{ty("Impl"), ty("A")}, ty("A")},
		{"three", []*BaseType{ty("Impl"), ty("ABC"), ty("AB")}, ty("AB")},
		{"two minimal candidates", []*BaseType{ty("Left"), ty("Right")}, b.Any},
		{"nothing ignored", []*BaseType{b.Nothing, ty("ABC")}, ty("ABC")},
		{"only nothing", []*BaseType{b.Nothing, b.Nothing}, b.Nothing},
		{"builtins", []*BaseType{b.S32, b.String}, b.Any},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range permutations(tt.types) {
				if got := ClosestCommonSupertype(p...); got != tt.want {
					t.Fatalf("ClosestCommonSupertype(%v) = %s, want %s", p, got, tt.want)
				}
			}
		})
	}
}

func TestClosestCommonSupertypeOnCycle(t *testing.T) {
	f := bindTOML(t, `
package = "cyc"

[[type]]
name = "P"
kind = "interface"
supertypes = "Q"

[[type]]
name = "Q"
kind = "interface"
supertypes = "P"
`)
	p, q := f.typ(t, "P"), f.typ(t, "Q")
	// both are ancestors of each other, so neither is more specific
	if got := ClosestCommonSupertype(p, q); got != f.ctx.Builtins().Any {
		t.Fatalf("got %s", got)
	}
}

func TestIsSubtypeOf(t *testing.T) {
	f := bindTOML(t, lattice)
	impl, a, c := f.typ(t, "Impl"), f.typ(t, "A"), f.typ(t, "C")
	if !impl.IsSubtypeOf(a) || !impl.IsSubtypeOf(impl) || impl.IsSubtypeOf(c) {
		t.Fatalf("unexpected subtype relation")
	}
	if !c.IsSubtypeOf(f.ctx.Builtins().Any) {
		t.Fatalf("every type is an Any")
	}
}

func TestClosestCommonSupertypeNeedsInput(t *testing.T) {
	expectICE(t, func() { ClosestCommonSupertype() })
}
