package binding

import (
	"fmt"
	"slices"
	"strings"

	"emerge/internal/cycle"
	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/lazy"
	"emerge/internal/phase"
	"emerge/internal/trace"
)

// SupertypeDeclaration is one inheritance clause as written.
type SupertypeDeclaration struct {
	list   *SupertypeList
	ref    *decl.TypeRef
	typ    *Type     // as declared, with the subtype's parameters
	base   *BaseType // nil unless the clause names a single base type
	legal  bool      // interface or Any, not a duplicate
	cyclic bool
}

func (c *SupertypeDeclaration) Ref() *decl.TypeRef { return c.ref }

// AsDeclared is the supertype with the arguments written in the clause.
func (c *SupertypeDeclaration) AsDeclared() *Type { return c.typ }
func (c *SupertypeDeclaration) Base() *BaseType   { return c.base }
func (c *SupertypeDeclaration) Cyclic() bool      { return c.cyclic }

// SupertypeList is the ordered set of inheritance clauses of a base type.
type SupertypeList struct {
	owner    *BaseType
	clauses  []*SupertypeDeclaration
	resolved []*SupertypeDeclaration // distinct named supertypes in clause order
	helper   phase.Helper
	cyclic   bool
	tainted  bool // some supertype is cyclic or tainted itself
	diamond  bool // an ancestor is reached with conflicting type arguments

	inherited lazy.Cell[[]*InheritedMemberFunction]
}

func newSupertypeList(owner *BaseType, refs []*decl.TypeRef) *SupertypeList {
	l := &SupertypeList{owner: owner}
	for _, r := range refs {
		l.clauses = append(l.clauses, &SupertypeDeclaration{list: l, ref: r})
	}
	return l
}

func (l *SupertypeList) Clauses() []*SupertypeDeclaration { return l.clauses }

// BaseTypes returns the distinct resolved supertypes in clause order.
func (l *SupertypeList) BaseTypes() []*BaseType {
	out := make([]*BaseType, 0, len(l.resolved))
	for _, c := range l.resolved {
		out = append(out, c.base)
	}
	return out
}

// HasCycle reports whether any clause closes an inheritance cycle.
func (l *SupertypeList) HasCycle() bool { return l.cyclic }

// broken reports whether the list is cyclic or inherits from a type that is.
// Checks that depend on inherited members are skipped for broken lists.
func (l *SupertypeList) broken() bool { return l.cyclic || l.tainted }

// declaredTypes returns the resolved supertypes as written. Empty before phase 1.
func (l *SupertypeList) declaredTypes() []*Type {
	out := make([]*Type, 0, len(l.resolved))
	for _, c := range l.resolved {
		out = append(out, c.typ)
	}
	return out
}

// Phase1 resolves every clause and rejects non-named and duplicate supertypes.
func (l *SupertypeList) Phase1(d *Diagnosis) {
	l.helper.Phase1(d, func() {
		seen := make(map[*BaseType]*SupertypeDeclaration, len(l.clauses))
		for _, c := range l.clauses {
			c.typ = l.owner.ctx.ResolveType(d, c.ref, l.owner)
			switch c.typ.Kind() {
			case TypeError:
				continue
			case TypeGeneric:
				diag.ReportError(d, diag.BndIllegalSupertype, c.ref.Span,
					fmt.Sprintf("Can only inherit from interfaces; %s is a type parameter", c.typ)).Emit()
				continue
			}
			c.base = c.typ.Base()
			if first, dup := seen[c.base]; dup {
				diag.ReportError(d, diag.BndDuplicateSupertype, c.ref.Span,
					fmt.Sprintf("%s is already a supertype of %s", c.base.name, l.owner.name)).
					WithNote(first.ref.Span, "first inherited here").Emit()
				continue
			}
			seen[c.base] = c
			l.resolved = append(l.resolved, c)
		}
	})
}

// Phase2 detects cycles, rejects non-interface supertypes and drives the
// supertypes through phase 2 along acyclic edges.
func (l *SupertypeList) Phase2(d *Diagnosis) {
	l.helper.Phase2(d, func(pc *phase.Context) {
		ctx := l.owner.ctx
		for _, c := range l.resolved {
			if path := pathTo(c.base, l.owner); path != nil {
				c.cyclic = true
				l.cyclic = true
				reportCycle(d, append([]*BaseType{l.owner}, path...))
				continue
			}
			if !c.base.IsInterface() && !c.base.isAny() {
				diag.ReportError(d, diag.BndSupertypeNotInterface, c.ref.Span,
					fmt.Sprintf("Can only inherit from interfaces; %s is a %s", c.base.name, c.base.kind)).Emit()
				continue
			}
			c.legal = true
			cycle.Handle(ctx.driving, c.base, func() struct{} {
				c.base.Phase2(d)
				return struct{}{}
			}, func() struct{} {
				// only reachable through an edge already reported as cyclic
				l.tainted = true
				return struct{}{}
			})
			if c.base.supertypes.broken() {
				l.tainted = true
			}
		}
		if l.broken() {
			pc.MarkErroneous()
			return
		}
		l.checkDiamonds(d)
	})
}

// checkDiamonds reports an ancestor inherited along two paths with
// different type arguments. A type below an already reported diamond stays
// quiet.
func (l *SupertypeList) checkDiamonds(d *Diagnosis) {
	for _, c := range l.resolved {
		if c.legal && c.base.supertypes.diamond {
			l.diamond = true
			return
		}
	}
	seen := map[*BaseType]*SupertypeDeclaration{}
	views := map[*BaseType]*Type{l.owner: l.owner.self}
	var walk func(t *Type, via *SupertypeDeclaration)
	walk = func(t *Type, via *SupertypeDeclaration) {
		if t.Kind() != TypeNamed {
			return
		}
		if prev, ok := views[t.base]; ok {
			if !l.diamond && !prev.Equal(t) {
				l.diamond = true
				diag.ReportError(d, diag.BndInconsistentDiamondTypeArguments, via.ref.Span,
					fmt.Sprintf("%s inherits %s as both %s and %s", l.owner.name, t.base.name, prev, t)).
					WithNote(seen[t.base].ref.Span, "first inherited through here").Emit()
			}
			return
		}
		views[t.base] = t
		seen[t.base] = via
		b := t.Bindings()
		for _, st := range t.base.supertypes.declaredTypes() {
			walk(st.Substitute(b), via)
		}
	}
	for _, c := range l.resolved {
		if c.legal {
			walk(c.typ, c)
		}
	}
}

// pathTo returns the supertype path from 'from' to target, inclusive of
// from and excluding target, or nil when target is not reachable.
func pathTo(from, target *BaseType) []*BaseType {
	visiting := cycle.Set[*BaseType]{}
	var walk func(t *BaseType) []*BaseType
	walk = func(t *BaseType) []*BaseType {
		if t == target {
			return []*BaseType{}
		}
		if !visiting.Visit(t) {
			return nil
		}
		for _, c := range t.supertypes.resolved {
			if rest := walk(c.base); rest != nil {
				return append([]*BaseType{t}, rest...)
			}
		}
		return nil
	}
	return walk(from)
}

// reportCycle reports the cycle in a canonical form: rotated to start at the
// smallest name and anchored at that type's clause. Finding the same cycle
// from another member produces an identical diagnostic.
func reportCycle(d *Diagnosis, members []*BaseType) {
	start := 0
	for i, m := range members {
		if m.CanonicalName() < members[start].CanonicalName() {
			start = i
		}
	}
	rotated := append(slices.Clone(members[start:]), members[:start]...)
	names := make([]string, 0, len(rotated)+1)
	for _, m := range rotated {
		names = append(names, m.name)
	}
	names = append(names, rotated[0].name)

	anchor := rotated[0]
	next := rotated[1%len(rotated)]
	span := anchor.decl.Span
	for _, c := range anchor.supertypes.resolved {
		if c.base == next {
			span = c.ref.Span
			break
		}
	}
	anchor.ctx.tracePoint(trace.Site{Scope: trace.ScopeStep, Name: "cycle", Type: anchor.CanonicalName()}, strings.Join(names, " -> "))
	diag.ReportError(d, diag.BndCyclicInheritance, span,
		"Cyclic inheritance: "+strings.Join(names, " -> ")).Emit()
}

// InheritedMemberFunctions returns every virtual function of every legal,
// acyclic supertype as seen through the owner, in clause order. The list is
// not deduplicated; overload set building does that.
func (l *SupertypeList) InheritedMemberFunctions() []*InheritedMemberFunction {
	l.helper.RequireDone(phase.ValidateTypes)
	return l.inherited.GetOrCompute(func() []*InheritedMemberFunction {
		var out []*InheritedMemberFunction
		for _, c := range l.resolved {
			if c.cyclic || !c.legal {
				continue
			}
			for _, fn := range c.base.MemberFunctions() {
				if !fn.HasReceiver() || !fn.Virtual() {
					continue
				}
				inh := newInheritedMemberFunction(fn, l.owner, c)
				if inh.Precluded() {
					continue
				}
				out = append(out, inh)
			}
		}
		return out
	})
}

// ancestors returns the owner and every transitive supertype (plus Any),
// each as seen from the owner with type arguments substituted.
func (l *SupertypeList) ancestors() map[*BaseType]*Type {
	out := map[*BaseType]*Type{}
	var walk func(t *Type)
	walk = func(t *Type) {
		if t.Kind() != TypeNamed {
			return
		}
		if _, seen := out[t.base]; seen {
			return
		}
		out[t.base] = t
		b := t.Bindings()
		for _, st := range t.base.supertypes.declaredTypes() {
			walk(st.Substitute(b))
		}
	}
	walk(l.owner.self)
	top := l.owner.ctx.builtins.Any
	if _, ok := out[top]; !ok {
		out[top] = top.self
	}
	return out
}

// viewOf returns how the owner sees the ancestor base, with arguments
// substituted, or nil when base is not an ancestor.
func (l *SupertypeList) viewOf(base *BaseType) *Type {
	return l.ancestors()[base]
}
