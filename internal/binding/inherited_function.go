package binding

import (
	"fmt"

	"emerge/internal/decl"
	"emerge/internal/lazy"
	"emerge/internal/source"
)

// InheritedMemberFunction is a supertype's member function as seen from a
// subtype: type arguments of the inheritance clause are substituted and the
// receiver becomes the subtype.
type InheritedMemberFunction struct {
	wrapped  MemberFunction
	owner    *BaseType
	clause   *SupertypeDeclaration
	bindings Bindings

	params     lazy.Cell[[]*Type]
	ret        lazy.Cell[*Type]
	preclusion lazy.Cell[string]
}

func newInheritedMemberFunction(fn MemberFunction, owner *BaseType, clause *SupertypeDeclaration) *InheritedMemberFunction {
	return &InheritedMemberFunction{
		wrapped:  fn,
		owner:    owner,
		clause:   clause,
		bindings: clause.typ.Bindings(),
	}
}

func (f *InheritedMemberFunction) Name() string { return f.wrapped.Name() }
func (f *InheritedMemberFunction) CanonicalName() string {
	return f.owner.CanonicalName() + "." + f.wrapped.Name()
}
func (f *InheritedMemberFunction) Owner() *BaseType      { return f.owner }
func (f *InheritedMemberFunction) DeclaredOn() *BaseType { return f.wrapped.DeclaredOn() }

// Span is the span of the root declaration.
func (f *InheritedMemberFunction) Span() source.Span { return f.wrapped.Span() }

func (f *InheritedMemberFunction) ParamNames() []string                  { return f.wrapped.ParamNames() }
func (f *InheritedMemberFunction) HasReceiver() bool                     { return true }
func (f *InheritedMemberFunction) Virtual() bool                         { return f.wrapped.Virtual() }
func (f *InheritedMemberFunction) Abstract() bool                        { return f.wrapped.Abstract() }
func (f *InheritedMemberFunction) Nothrow() bool                         { return f.wrapped.Nothrow() }
func (f *InheritedMemberFunction) Accessor() decl.AccessorKind           { return f.wrapped.Accessor() }
func (f *InheritedMemberFunction) Overrides() []*InheritedMemberFunction { return nil }
func (f *InheritedMemberFunction) Root() *DeclaredMemberFunction         { return f.wrapped.Root() }
func (f *InheritedMemberFunction) Visibility() decl.Visibility           { return f.wrapped.Visibility() }

// Wrapped is the supertype's function this one was derived from.
func (f *InheritedMemberFunction) Wrapped() MemberFunction { return f.wrapped }

// Supertype is the clause the function was inherited through.
func (f *InheritedMemberFunction) Supertype() *SupertypeDeclaration { return f.clause }

func (f *InheritedMemberFunction) Params() []*Type {
	return f.params.GetOrCompute(func() []*Type {
		src := f.wrapped.Params()
		out := make([]*Type, len(src))
		for i, p := range src {
			out[i] = p.Substitute(f.bindings)
		}
		if len(out) > 0 {
			out[0] = f.owner.self
		}
		return out
	})
}

func (f *InheritedMemberFunction) ReturnType() *Type {
	return f.ret.GetOrCompute(func() *Type {
		return f.wrapped.ReturnType().Substitute(f.bindings)
	})
}

// Precluded reports whether the function cannot be called on the subtype
// because the supertype as declared does not satisfy the receiver type.
func (f *InheritedMemberFunction) Precluded() bool {
	return f.PreclusionReason() != ""
}

// PreclusionReason explains why the function is precluded, or is empty.
func (f *InheritedMemberFunction) PreclusionReason() string {
	return f.preclusion.GetOrCompute(func() string {
		src := f.wrapped.Params()
		if len(src) == 0 {
			return "function has no receiver"
		}
		recv := src[0].Substitute(f.bindings)
		if !f.clause.typ.AssignableTo(recv) {
			return fmt.Sprintf("supertype %s is not assignable to receiver type %s", f.clause.typ, recv)
		}
		return ""
	})
}

// Inherited functions are validated where they are declared.
func (f *InheritedMemberFunction) Phase1(*Diagnosis) {}
func (f *InheritedMemberFunction) Phase2(*Diagnosis) {}
func (f *InheritedMemberFunction) Phase3(*Diagnosis) {}
