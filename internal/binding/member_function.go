package binding

import (
	"emerge/internal/decl"
	"emerge/internal/source"
)

// MemberFunction is anything that can sit in an overload set: a declared
// function, a function inherited from a supertype, or an inherited abstract
// function satisfied through a mixin.
type MemberFunction interface {
	Name() string
	CanonicalName() string
	// Owner is the base type whose overload set holds the function.
	Owner() *BaseType
	// DeclaredOn is the base type of the declaration at the root of the
	// inheritance chain.
	DeclaredOn() *BaseType
	Span() source.Span
	// Params includes the receiver when there is one.
	Params() []*Type
	ParamNames() []string
	ReturnType() *Type
	HasReceiver() bool
	// Virtual reports eligibility for dynamic dispatch.
	Virtual() bool
	Abstract() bool
	Nothrow() bool
	Accessor() decl.AccessorKind
	// Visibility is the declared visibility capped at the declaring type's.
	Visibility() decl.Visibility
	// Overrides lists the inherited functions this one replaces.
	Overrides() []*InheritedMemberFunction
	// Root is the declaration at the bottom of the inheritance chain.
	Root() *DeclaredMemberFunction

	Phase1(d *Diagnosis)
	Phase2(d *Diagnosis)
	Phase3(d *Diagnosis)
}

var (
	_ MemberFunction = (*DeclaredMemberFunction)(nil)
	_ MemberFunction = (*InheritedMemberFunction)(nil)
	_ MemberFunction = (*MixinBackedFunction)(nil)
)

// valueParams drops the receiver.
func valueParams(fn MemberFunction) []*Type {
	ps := fn.Params()
	if fn.HasReceiver() && len(ps) > 0 {
		return ps[1:]
	}
	return ps
}

func bodyThrows(b *decl.Block) bool {
	if b == nil {
		return false
	}
	for _, st := range b.Stmts {
		if stmtThrows(st) {
			return true
		}
	}
	return false
}

func stmtThrows(st *decl.Stmt) bool {
	if st.Kind == decl.StmtThrow {
		return true
	}
	if st.Value != nil && st.Value.Throws {
		return true
	}
	return bodyThrows(st.Then) || bodyThrows(st.Else) || bodyThrows(st.Body)
}

// walkStmts visits every statement of b, nested ones included.
func walkStmts(b *decl.Block, visit func(*decl.Stmt)) {
	if b == nil {
		return
	}
	for _, st := range b.Stmts {
		visit(st)
		walkStmts(st.Then, visit)
		walkStmts(st.Else, visit)
		walkStmts(st.Body, visit)
	}
}
