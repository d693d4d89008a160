package binding

import (
	"strings"

	"emerge/internal/cycle"
	"emerge/internal/source"
)

// TypeKind distinguishes the shapes a resolved type can take.
type TypeKind uint8

const (
	TypeNamed   TypeKind = iota + 1 // base type with arguments
	TypeGeneric                     // reference to a type parameter
	TypeError                       // unresolvable; assignable both ways
)

// Type is a resolved type reference. Types are immutable.
type Type struct {
	kind  TypeKind
	base  *BaseType
	args  []*Type
	param *TypeParameter
}

// ErrorType stands in for references that failed to resolve. It is
// assignable to and from everything so one bad reference reports once.
var ErrorType = &Type{kind: TypeError}

// Named builds the type base<args...>.
func Named(base *BaseType, args ...*Type) *Type {
	return &Type{kind: TypeNamed, base: base, args: args}
}

// TypeParameter is a type parameter declared on a base type.
type TypeParameter struct {
	Name  string
	Span  source.Span
	Owner *BaseType
	Index int
	typ   *Type
}

// Type is the reference to this parameter.
func (p *TypeParameter) Type() *Type {
	if p.typ == nil {
		p.typ = &Type{kind: TypeGeneric, param: p}
	}
	return p.typ
}

func (t *Type) Kind() TypeKind        { return t.kind }
func (t *Type) Base() *BaseType       { return t.base }
func (t *Type) Args() []*Type         { return t.args }
func (t *Type) Param() *TypeParameter { return t.param }
func (t *Type) IsError() bool         { return t.kind == TypeError }

func (t *Type) String() string {
	switch t.kind {
	case TypeGeneric:
		return t.param.Name
	case TypeError:
		return "<error>"
	}
	if len(t.args) == 0 {
		return t.base.name
	}
	parts := make([]string, len(t.args))
	for i, a := range t.args {
		parts[i] = a.String()
	}
	return t.base.name + "<" + strings.Join(parts, ", ") + ">"
}

// Equal is structural equality.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case TypeGeneric:
		return t.param == o.param
	case TypeError:
		return true
	}
	if t.base != o.base || len(t.args) != len(o.args) {
		return false
	}
	for i := range t.args {
		if !t.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// Bindings maps type parameters to the arguments they stand for.
type Bindings map[*TypeParameter]*Type

// Bindings returns the parameter bindings carried by a named type.
func (t *Type) Bindings() Bindings {
	if t.kind != TypeNamed || len(t.args) == 0 {
		return nil
	}
	b := make(Bindings, len(t.args))
	for i, tp := range t.base.typeParams {
		if i < len(t.args) {
			b[tp] = t.args[i]
		}
	}
	return b
}

// Substitute replaces bound type parameters.
func (t *Type) Substitute(b Bindings) *Type {
	if len(b) == 0 {
		return t
	}
	switch t.kind {
	case TypeGeneric:
		if r, ok := b[t.param]; ok {
			return r
		}
		return t
	case TypeNamed:
		if len(t.args) == 0 {
			return t
		}
		args := make([]*Type, len(t.args))
		changed := false
		for i, a := range t.args {
			args[i] = a.Substitute(b)
			changed = changed || args[i] != a
		}
		if !changed {
			return t
		}
		return Named(t.base, args...)
	}
	return t
}

// AssignableTo reports whether a value of t can be used where target is
// expected. Type arguments are invariant. The supertype walk tracks the
// current path, so cyclic hierarchies terminate.
func (t *Type) AssignableTo(target *Type) bool {
	return assignable(t, target, cycle.Set[*BaseType]{})
}

func assignable(src, dst *Type, visiting cycle.Set[*BaseType]) bool {
	if src.kind == TypeError || dst.kind == TypeError {
		return true
	}
	if src.kind == TypeNamed && src.base.isNothing() {
		return true
	}
	if dst.kind == TypeNamed && dst.base.isAny() {
		return true
	}
	if src.kind == TypeGeneric || dst.kind == TypeGeneric {
		return src.kind == dst.kind && src.param == dst.param
	}
	if src.base == dst.base {
		if len(src.args) != len(dst.args) {
			return false
		}
		for i := range src.args {
			if !argsMatch(src.args[i], dst.args[i]) {
				return false
			}
		}
		return true
	}
	if !visiting.Visit(src.base) {
		return false
	}
	defer delete(visiting, src.base)
	bindings := src.Bindings()
	for _, st := range src.base.supertypes.declaredTypes() {
		if assignable(st.Substitute(bindings), dst, visiting) {
			return true
		}
	}
	return false
}

func argsMatch(a, b *Type) bool {
	if a.kind == TypeError || b.kind == TypeError {
		return true
	}
	return a.Equal(b)
}

// Disjoint reports whether no value can have both types.
func Disjoint(a, b *Type) bool {
	if a.kind == TypeError || b.kind == TypeError {
		return false
	}
	return !a.AssignableTo(b) && !b.AssignableTo(a)
}
