package binding

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/phase"
	"emerge/internal/source"
	"emerge/internal/trace"
)

// BaseType is a class or interface after binding. It owns its supertype
// list, members, constructor, destructor, overload sets and field ids.
type BaseType struct {
	ctx     *Context
	decl    *decl.BaseTypeDecl
	pkg     string
	name    string
	kind    decl.Kind
	builtin bool
	helper  phase.Helper

	typeParams []*TypeParameter
	self       *Type

	supertypes  *SupertypeList
	variables   []*MemberVariable
	functions   []*DeclaredMemberFunction
	constructor *Constructor
	destructor  *Destructor

	overloadSets []*OverloadSet
	mixinBacked  []*MixinBackedFunction
	fields       []*Field
}

func newBaseType(ctx *Context, pkg string, d *decl.BaseTypeDecl) *BaseType {
	t := &BaseType{
		ctx:  ctx,
		decl: d,
		pkg:  pkg,
		name: d.Name,
		kind: d.Kind,
	}
	for i, tp := range d.TypeParams {
		t.typeParams = append(t.typeParams, &TypeParameter{Name: tp.Name, Span: tp.Span, Owner: t, Index: i})
	}
	args := make([]*Type, len(t.typeParams))
	for i, tp := range t.typeParams {
		args[i] = tp.Type()
	}
	t.self = Named(t, args...)
	t.supertypes = newSupertypeList(t, d.Supertypes)
	return t
}

func (t *BaseType) Name() string { return t.name }

// CanonicalName is the package-qualified name.
func (t *BaseType) CanonicalName() string {
	if t.pkg == "" {
		return t.name
	}
	return t.pkg + "." + t.name
}

func (t *BaseType) Kind() decl.Kind                  { return t.kind }
func (t *BaseType) Visibility() decl.Visibility      { return t.decl.Visibility.Resolved() }
func (t *BaseType) IsInterface() bool                { return t.kind == decl.KindInterface }
func (t *BaseType) Span() source.Span                { return t.decl.Span }
func (t *BaseType) Decl() *decl.BaseTypeDecl         { return t.decl }
func (t *BaseType) TypeParameters() []*TypeParameter { return t.typeParams }
func (t *BaseType) Supertypes() *SupertypeList       { return t.supertypes }
func (t *BaseType) MemberVariables() []*MemberVariable {
	return t.variables
}
func (t *BaseType) DeclaredFunctions() []*DeclaredMemberFunction { return t.functions }
func (t *BaseType) OverloadSets() []*OverloadSet                 { return t.overloadSets }
func (t *BaseType) MixinBackedFunctions() []*MixinBackedFunction { return t.mixinBacked }

// SelfType is the type as seen from inside its own declaration: the base
// type applied to its own parameters.
func (t *BaseType) SelfType() *Type { return t.self }

// Constructor is nil for interfaces.
func (t *BaseType) Constructor() *Constructor { return t.constructor }

// Destructor is nil for interfaces.
func (t *BaseType) Destructor() *Destructor { return t.destructor }

// HasCycle reports whether the type takes part in cyclic inheritance.
func (t *BaseType) HasCycle() bool { return t.supertypes.HasCycle() }

// InheritsCycle reports whether the type is cyclic or has a supertype that
// is. Such a type skips override, overload and mixin checks.
func (t *BaseType) InheritsCycle() bool { return t.supertypes.broken() }

// MemberFunctions lists every function in the overload sets.
func (t *BaseType) MemberFunctions() []MemberFunction {
	var out []MemberFunction
	for _, set := range t.overloadSets {
		out = append(out, set.overloads...)
	}
	return out
}

// MemberVariable looks up a member variable by name.
func (t *BaseType) MemberVariable(name string) (*MemberVariable, bool) {
	for _, v := range t.variables {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

func (t *BaseType) isAny() bool     { return t == t.ctx.builtins.Any }
func (t *BaseType) isNothing() bool { return t == t.ctx.builtins.Nothing }

func (t *BaseType) String() string { return t.CanonicalName() }

// Phase1 declares: supertype clauses, entries, default constructor and
// destructor, intra-type duplicates.
func (t *BaseType) Phase1(d *Diagnosis) {
	t.helper.Phase1(d, func() {
		span := t.ctx.beginSpan(trace.Site{Scope: trace.ScopeType, Name: "phase1", Type: t.CanonicalName()})
		defer span.End("")

		if !t.builtin {
			t.lintName(d)
		}
		t.checkTypeParameters(d)
		t.supertypes.Phase1(d)
		t.registerEntries(d)

		for _, v := range t.variables {
			v.Phase1(d)
		}
		for _, fn := range t.functions {
			fn.Phase1(d)
		}
		if t.constructor != nil {
			t.constructor.Phase1(d)
		}
		if t.destructor != nil {
			t.destructor.Phase1(d)
		}
	})
}

func (t *BaseType) lintName(d *Diagnosis) {
	r, _ := utf8.DecodeRuneInString(t.name)
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		diag.ReportWarning(d, diag.LntUnconventionalTypeName, t.decl.Span,
			fmt.Sprintf("Type name %s should start with an upper-case letter", t.name)).Emit()
	}
}

func (t *BaseType) checkTypeParameters(d *Diagnosis) {
	seen := make(map[string]*TypeParameter, len(t.typeParams))
	for _, tp := range t.typeParams {
		if first, dup := seen[tp.Name]; dup {
			diag.ReportError(d, diag.DclDuplicateTypeParameter, tp.Span,
				fmt.Sprintf("Type parameter %s is declared more than once", tp.Name)).
				WithNote(first.Span, "first declared here").Emit()
			continue
		}
		seen[tp.Name] = tp
	}
}

func (t *BaseType) registerEntries(d *Diagnosis) {
	seenVars := make(map[string]*MemberVariable)
	for _, e := range t.decl.Entries {
		if t.IsInterface() && e.Kind != decl.EntryMemberFunction {
			diag.ReportError(d, diag.BndEntryNotAllowedOnInterface, e.Span(),
				fmt.Sprintf("Interfaces cannot declare a %s", e.Kind)).Emit()
			continue
		}
		switch e.Kind {
		case decl.EntryMemberVariable:
			if first, dup := seenVars[e.Variable.Name]; dup {
				diag.ReportError(d, diag.BndDuplicateMemberVariable, e.Variable.Span,
					fmt.Sprintf("Member variable %s is declared more than once", e.Variable.Name)).
					WithNote(first.Span(), "first declared here").Emit()
				continue
			}
			v := newMemberVariable(t, e.Variable)
			seenVars[v.Name()] = v
			t.variables = append(t.variables, v)
		case decl.EntryMemberFunction:
			t.functions = append(t.functions, newDeclaredMemberFunction(t, e.Function))
		case decl.EntryConstructor:
			if t.constructor != nil {
				diag.ReportError(d, diag.BndMultipleConstructors, e.Constructor.Span,
					fmt.Sprintf("%s declares more than one constructor", t.name)).
					WithNote(t.constructor.Span(), "first constructor").Emit()
				continue
			}
			t.constructor = newConstructor(t, e.Constructor)
		case decl.EntryDestructor:
			if t.destructor != nil {
				diag.ReportError(d, diag.BndMultipleDestructors, e.Destructor.Span,
					fmt.Sprintf("%s declares more than one destructor", t.name)).
					WithNote(t.destructor.Span(), "first destructor").Emit()
				continue
			}
			t.destructor = newDestructor(t, e.Destructor)
		default:
			phase.ICE("unknown entry kind %d on %s", e.Kind, t.name)
		}
	}
	if t.IsInterface() {
		return
	}
	if t.constructor == nil {
		t.constructor = newConstructor(t, nil)
	}
	if t.destructor == nil {
		t.destructor = newDestructor(t, nil)
	}
}

// Phase2 validates types: inheritance cycles, member types, override links,
// overload sets.
func (t *BaseType) Phase2(d *Diagnosis) {
	t.helper.Phase2(d, func(pc *phase.Context) {
		span := t.ctx.beginSpan(trace.Site{Scope: trace.ScopeType, Name: "phase2", Type: t.CanonicalName()})
		defer span.End("")

		t.supertypes.Phase2(d)
		if t.supertypes.broken() {
			pc.MarkErroneous()
		}

		for _, v := range t.variables {
			v.Phase2(d)
		}
		if !t.supertypes.broken() {
			for _, fn := range t.functions {
				fn.Phase2(d)
			}
			t.buildOverloadSets(d)
			t.checkAccessorsClashWithVariables(d)
		}
		if t.constructor != nil {
			t.constructor.Phase2(d)
		}
		if t.destructor != nil {
			t.destructor.Phase2(d)
		}
	})
}

// Phase3 validates bodies: overrides, overload disjointness, accessors,
// mixin assignment, initialization, nothrow contracts. Types that are or
// inherit from a cyclic type stop here.
func (t *BaseType) Phase3(d *Diagnosis) {
	t.helper.Phase3(d, true, func() {
		if t.supertypes.broken() {
			return
		}
		span := t.ctx.beginSpan(trace.Site{Scope: trace.ScopeType, Name: "phase3", Type: t.CanonicalName()})
		defer span.End("")

		for _, fn := range t.functions {
			fn.Phase3(d)
		}
		for _, set := range t.overloadSets {
			set.Phase3(d)
		}
		t.checkAccessors(d)
		for _, v := range t.variables {
			v.Phase3(d)
		}
		if t.constructor != nil {
			t.constructor.Phase3(d)
		}
		if t.destructor != nil {
			t.destructor.Phase3(d)
		}
	})
}

// validated reports whether all three phases completed.
func (t *BaseType) validated() bool {
	return t.helper.Done(phase.ValidateBodies)
}
