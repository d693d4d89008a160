package binding

import (
	"fmt"
	"slices"
	"strings"

	"emerge/internal/cycle"
	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/phase"
	"emerge/internal/source"
	"emerge/internal/trace"
)

// DeclaredMemberFunction is a function written in the body of a base type.
type DeclaredMemberFunction struct {
	owner  *BaseType
	decl   *decl.FunctionDecl
	helper phase.Helper

	params    []*Type
	ret       *Type
	virtual   bool
	overrides []*InheritedMemberFunction
}

func newDeclaredMemberFunction(owner *BaseType, d *decl.FunctionDecl) *DeclaredMemberFunction {
	return &DeclaredMemberFunction{owner: owner, decl: d}
}

func (f *DeclaredMemberFunction) Name() string { return f.decl.Name }
func (f *DeclaredMemberFunction) CanonicalName() string {
	return f.owner.CanonicalName() + "." + f.decl.Name
}
func (f *DeclaredMemberFunction) Owner() *BaseType            { return f.owner }
func (f *DeclaredMemberFunction) DeclaredOn() *BaseType       { return f.owner }
func (f *DeclaredMemberFunction) Span() source.Span           { return f.decl.Span }
func (f *DeclaredMemberFunction) Params() []*Type             { return f.params }
func (f *DeclaredMemberFunction) ReturnType() *Type           { return f.ret }
func (f *DeclaredMemberFunction) HasReceiver() bool           { return f.decl.HasReceiver() }
func (f *DeclaredMemberFunction) Virtual() bool               { return f.virtual }
func (f *DeclaredMemberFunction) Abstract() bool              { return f.decl.Body == nil && !f.decl.External }
func (f *DeclaredMemberFunction) Nothrow() bool               { return f.decl.Nothrow }
func (f *DeclaredMemberFunction) Accessor() decl.AccessorKind { return f.decl.Accessor }
func (f *DeclaredMemberFunction) Decl() *decl.FunctionDecl    { return f.decl }
func (f *DeclaredMemberFunction) Root() *DeclaredMemberFunction {
	return f
}

func (f *DeclaredMemberFunction) Visibility() decl.Visibility {
	return f.decl.Visibility.AtMost(f.owner.Visibility())
}

// Overrides is known after phase 2.
func (f *DeclaredMemberFunction) Overrides() []*InheritedMemberFunction {
	return f.overrides
}

func (f *DeclaredMemberFunction) ParamNames() []string {
	out := make([]string, len(f.decl.Params))
	for i, p := range f.decl.Params {
		out[i] = p.Name
	}
	return out
}

// Phase1 resolves parameter and return types, virtuality and the static
// override check.
func (f *DeclaredMemberFunction) Phase1(d *Diagnosis) {
	f.helper.Phase1(d, func() {
		ctx := f.owner.ctx
		f.params = make([]*Type, len(f.decl.Params))
		for i, p := range f.decl.Params {
			if p.Type == nil && i == 0 && p.Name == decl.ReceiverName {
				f.params[i] = f.owner.self
				continue
			}
			f.params[i] = ctx.ResolveType(d, p.Type, f.owner)
		}
		f.ret = ctx.ResolveType(d, f.decl.Return, f.owner)
		f.determineVirtuality(d)

		if f.decl.Override && !f.HasReceiver() {
			diag.ReportError(d, diag.BndStaticFunctionDeclaredOverride, f.decl.Span,
				fmt.Sprintf("Function %s has no receiver and cannot override", f.decl.Name)).Emit()
		}
		walkStmts(f.decl.Body, func(st *decl.Stmt) {
			if st.Kind == decl.StmtMixin {
				diag.ReportError(d, diag.BndMixinNotAllowed, st.Span,
					"Mixins are only allowed in constructors").Emit()
			}
		})
	})
}

func (f *DeclaredMemberFunction) determineVirtuality(d *Diagnosis) {
	if !f.HasReceiver() {
		f.virtual = false
		return
	}
	recv := f.params[0]
	switch recv.Kind() {
	case TypeError:
		f.virtual = true
	case TypeNamed:
		f.virtual = recv.Base() == f.owner
		if !f.virtual {
			diag.ReportError(d, diag.BndNonVirtualReceiver, f.decl.Params[0].Span,
				fmt.Sprintf("The receiver type of %s must be %s", f.decl.Name, f.owner.name)).Emit()
		}
	default:
		f.virtual = false
		diag.ReportError(d, diag.BndNonVirtualReceiver, f.decl.Params[0].Span,
			fmt.Sprintf("The receiver type of %s must be %s, not the type parameter %s", f.decl.Name, f.owner.name, recv)).Emit()
	}
}

// Phase2 links the inherited functions this function overrides.
func (f *DeclaredMemberFunction) Phase2(d *Diagnosis) {
	f.helper.Phase2(d, func(*phase.Context) {
		if !f.HasReceiver() {
			return
		}
		f.overrides = f.determineOverride()
	})
}

// determineOverride returns inherited functions with the same name and
// arity whose value parameters are each assignable to this function's
// corresponding parameter. The receiver is not compared.
func (f *DeclaredMemberFunction) determineOverride() []*InheritedMemberFunction {
	own := valueParams(f)
	var out []*InheritedMemberFunction
	for _, inh := range f.owner.supertypes.InheritedMemberFunctions() {
		if inh.Name() != f.Name() || len(inh.Params()) != len(f.params) {
			continue
		}
		super := valueParams(inh)
		matches := true
		for i := range own {
			if !super[i].AssignableTo(own[i]) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, inh)
		}
	}
	return out
}

// Phase3 validates the override and the body.
func (f *DeclaredMemberFunction) Phase3(d *Diagnosis) {
	f.helper.Phase3(d, true, func() {
		if f.decl.External {
			diag.ReportError(d, diag.BndExternalMemberFunction, f.decl.Span,
				fmt.Sprintf("Member function %s cannot be external", f.decl.Name)).Emit()
		}
		if f.Abstract() && !f.owner.IsInterface() {
			diag.ReportError(d, diag.BndMissingFunctionBody, f.decl.Span,
				fmt.Sprintf("Member function %s of class %s needs a body", f.decl.Name, f.owner.name)).Emit()
		}
		if f.decl.Nothrow && bodyThrows(f.decl.Body) {
			diag.ReportError(d, diag.BndNothrowViolation, f.decl.Span,
				fmt.Sprintf("%s is declared nothrow but its body may throw", f.decl.Name)).Emit()
		}
		f.checkAccessorShape(d)
		if f.HasReceiver() {
			f.validateOverride(d)
		}
	})
}

func (f *DeclaredMemberFunction) validateOverride(d *Diagnosis) {
	span := f.owner.ctx.beginSpan(trace.Site{Scope: trace.ScopeStep, Name: "override", Type: f.owner.CanonicalName(), Member: f.decl.Name})
	defer span.End(fmt.Sprintf("%d candidates", len(f.overrides)))

	switch {
	case !f.decl.Override && len(f.overrides) > 0:
		diag.ReportError(d, diag.BndUndeclaredOverride, f.decl.Span,
			fmt.Sprintf("%s overrides %s but is not declared override", f.decl.Name, f.overrides[0].CanonicalName())).Emit()
	case !f.decl.Override:
		return
	case len(f.overrides) == 0:
		diag.ReportError(d, diag.BndDoesNotOverride, f.decl.Span,
			fmt.Sprintf("%s is declared override but does not override any inherited function", f.decl.Name)).Emit()
	case len(distinctRoots(f.overrides)) > 1:
		roots := distinctRoots(f.overrides)
		names := make([]string, len(roots))
		for i, r := range roots {
			names[i] = r.CanonicalName()
		}
		diag.ReportError(d, diag.BndAmbiguousOverride, f.decl.Span,
			fmt.Sprintf("%s overrides more than one inherited function: %s", f.decl.Name, strings.Join(names, ", "))).Emit()
	default:
		root := distinctRoots(f.overrides)[0]
		for _, o := range f.overrides {
			if o.Root() == root {
				f.validateOverrideOf(d, o)
				break
			}
		}
	}
}

func (f *DeclaredMemberFunction) validateOverrideOf(d *Diagnosis, super *InheritedMemberFunction) {
	if !f.ret.AssignableTo(super.ReturnType()) {
		diag.ReportError(d, diag.BndIncompatibleReturnOnOverride, f.decl.Span,
			fmt.Sprintf("%s returns %s, which is not assignable to %s returned by %s",
				f.decl.Name, f.ret, super.ReturnType(), super.Root().CanonicalName())).Emit()
	}
	if super.Nothrow() && !f.decl.Nothrow {
		diag.ReportError(d, diag.BndOverrideDropsNothrow, f.decl.Span,
			fmt.Sprintf("%s overrides the nothrow function %s and must be nothrow too", f.decl.Name, super.Root().CanonicalName())).Emit()
	}
	// a narrower visibility only counts when it was written, not when the
	// owner's visibility capped it
	if super.Visibility().BroaderThan(f.Visibility()) && f.owner.Visibility().BroaderThan(f.Visibility()) {
		diag.ReportError(d, diag.BndOverrideRestrictsVisibility, f.decl.Span,
			fmt.Sprintf("%s is %s but overrides %s, which is %s",
				f.decl.Name, f.Visibility(), super.Root().CanonicalName(), super.Visibility())).Emit()
	}
	if super.Accessor() != f.decl.Accessor {
		diag.ReportError(d, diag.BndOverrideAccessorKindMismatch, f.decl.Span,
			fmt.Sprintf("%s is accessor kind %s but overrides %s of accessor kind %s",
				f.decl.Name, f.decl.Accessor, super.Root().CanonicalName(), super.Accessor())).Emit()
	}
}

// checkAccessorShape enforces: a read accessor takes only the receiver and
// returns a value; a write accessor takes the receiver and one value and
// returns Unit.
func (f *DeclaredMemberFunction) checkAccessorShape(d *Diagnosis) {
	var problem string
	unit := f.owner.ctx.builtins.Unit
	returnsUnit := f.ret.Kind() == TypeNamed && f.ret.Base() == unit
	switch f.decl.Accessor {
	case decl.AccessorNone:
		return
	case decl.AccessorRead:
		switch {
		case !f.HasReceiver() || len(f.params) != 1:
			problem = "a read accessor takes only the receiver"
		case returnsUnit:
			problem = "a read accessor must return a value"
		}
	case decl.AccessorWrite:
		switch {
		case !f.HasReceiver() || len(f.params) != 2:
			problem = "a write accessor takes the receiver and exactly one value"
		case !returnsUnit && !f.ret.IsError():
			problem = "a write accessor must return Unit"
		}
	}
	if problem != "" {
		diag.ReportError(d, diag.BndAccessorContractViolated, f.decl.Span,
			fmt.Sprintf("%s: %s", f.decl.Name, problem)).Emit()
	}
}

// distinctRoots collapses functions reached through several inheritance
// paths to their declarations, in first-seen order. A declaration that
// another candidate's declaration overrides is dropped.
func distinctRoots(fns []*InheritedMemberFunction) []*DeclaredMemberFunction {
	var roots []*DeclaredMemberFunction
	for _, fn := range fns {
		if r := fn.Root(); !slices.Contains(roots, r) {
			roots = append(roots, r)
		}
	}
	out := roots[:0:0]
	for _, r := range roots {
		superseded := false
		for _, o := range roots {
			if o != r && supersedes(o, r) {
				superseded = true
				break
			}
		}
		if !superseded {
			out = append(out, r)
		}
	}
	return out
}

// supersedes reports whether a overrides b, directly or through a chain of
// overrides.
func supersedes(a, b *DeclaredMemberFunction) bool {
	visiting := cycle.Set[*DeclaredMemberFunction]{}
	var walk func(fn *DeclaredMemberFunction) bool
	walk = func(fn *DeclaredMemberFunction) bool {
		if !visiting.Visit(fn) {
			return false
		}
		for _, o := range fn.overrides {
			if r := o.Root(); r == b || walk(r) {
				return true
			}
		}
		return false
	}
	return walk(a)
}
