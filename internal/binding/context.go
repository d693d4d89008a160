// Package binding turns class and interface declarations into validated base
// types: supertypes and cycles, member variables, accessors, overload sets,
// overrides, mixins, constructors and destructors.
//
// Every bindable entity goes through Phase1, Phase2 and Phase3 (see package
// phase). Diagnostics are reported, never returned; invariant violations
// panic with *phase.InternalError.
package binding

import (
	"context"
	"fmt"

	"emerge/internal/cycle"
	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/trace"
)

// Diagnosis is the sink every phase reports into; it counts errors so the
// phase helpers can tell whether a phase failed.
type Diagnosis = diag.Counter

// NewDiagnosis wraps r so that repeated discoveries of the same problem are
// reported once.
func NewDiagnosis(r diag.Reporter) *Diagnosis {
	return diag.NewCounter(diag.NewDedupReporter(r))
}

// CorePackage is the package of the builtin types.
const CorePackage = "emerge.core"

// Builtins are the types every unit can refer to.
type Builtins struct {
	Any     *BaseType // top type
	Nothing *BaseType // bottom type
	Unit    *BaseType
	S32     *BaseType
	Bool    *BaseType
	String  *BaseType
}

// Context is the explicit compiler context threaded through every phase:
// type registry, memoized type resolution, tracing and re-entrancy guards.
type Context struct {
	tracer trace.Tracer
	// spans started by the binder hang below rootSpan; the running phase
	// becomes the parent of per-type spans.
	rootSpan  uint64
	phaseSpan uint64

	builtins Builtins
	types    map[string]*BaseType
	order    []*BaseType
	resolved map[*decl.TypeRef]*Type

	// driving guards the recursive phase-2 walk over supertypes.
	driving *cycle.Guard[*BaseType]
	// dropping guards the "may dropping a value of this type throw" walk.
	dropping *cycle.Guard[*BaseType]
}

// NewContext creates a context with the builtin types declared.
func NewContext(ctx context.Context) *Context {
	c := &Context{
		tracer:   trace.FromContext(ctx),
		rootSpan: trace.SpanFrom(ctx),
		types:    make(map[string]*BaseType),
		resolved: make(map[*decl.TypeRef]*Type),
		driving:  cycle.NewGuard[*BaseType](),
		dropping: cycle.NewGuard[*BaseType](),
	}
	core := func(name string, kind decl.Kind) *BaseType {
		t := newBaseType(c, CorePackage, &decl.BaseTypeDecl{Name: name, Kind: kind, Visibility: decl.VisibilityExport})
		t.builtin = true
		c.types[name] = t
		return t
	}
	c.builtins = Builtins{
		Any:     core("Any", decl.KindInterface),
		Nothing: core("Nothing", decl.KindClass),
		Unit:    core("Unit", decl.KindClass),
		S32:     core("S32", decl.KindClass),
		Bool:    core("Bool", decl.KindClass),
		String:  core("String", decl.KindClass),
	}
	return c
}

func (c *Context) Builtins() Builtins {
	return c.builtins
}

func (c *Context) Tracer() trace.Tracer {
	return c.tracer
}

// beginSpan opens a span below the running phase; phase spans hang below
// the caller's span.
func (c *Context) beginSpan(site trace.Site) *trace.Span {
	parent := c.phaseSpan
	if site.Scope <= trace.ScopePhase || parent == 0 {
		parent = c.rootSpan
	}
	return trace.Begin(c.tracer, site, parent)
}

func (c *Context) tracePoint(site trace.Site, detail string) {
	parent := c.phaseSpan
	if parent == 0 {
		parent = c.rootSpan
	}
	trace.Point(c.tracer, site, detail, parent)
}

// Declare registers the types of unit. Duplicate names are reported and the
// later declaration is kept out of the registry, but still bound.
func (c *Context) Declare(d *Diagnosis, unit *decl.Unit) []*BaseType {
	out := make([]*BaseType, 0, len(unit.Types))
	for _, td := range unit.Types {
		t := newBaseType(c, unit.Package, td)
		if prev, ok := c.types[td.Name]; ok {
			b := diag.ReportError(d, diag.DclDuplicateBaseType, td.Span, fmt.Sprintf("Type %s is declared more than once", td.Name))
			if !prev.builtin {
				b.WithNote(prev.decl.Span, "first declared here")
			}
			b.Emit()
		} else {
			c.types[td.Name] = t
		}
		c.order = append(c.order, t)
		out = append(out, t)
	}
	return out
}

// Types returns all declared non-builtin types in declaration order.
func (c *Context) Types() []*BaseType {
	return c.order
}

// ResolveBaseType looks up a base type by simple name.
func (c *Context) ResolveBaseType(name string) (*BaseType, bool) {
	t, ok := c.types[name]
	return t, ok
}

// ResolveType resolves ref in the scope of owner (whose type parameters are
// visible). Results are memoized per reference node, so every diagnostic
// about a reference is reported once.
func (c *Context) ResolveType(d *Diagnosis, ref *decl.TypeRef, owner *BaseType) *Type {
	if ref == nil {
		return c.builtins.Unit.SelfType()
	}
	if t, ok := c.resolved[ref]; ok {
		return t
	}
	t := c.resolveType(d, ref, owner)
	c.resolved[ref] = t
	return t
}

func (c *Context) resolveType(d *Diagnosis, ref *decl.TypeRef, owner *BaseType) *Type {
	if owner != nil {
		for _, tp := range owner.typeParams {
			if tp.Name != ref.Name {
				continue
			}
			if len(ref.Args) > 0 {
				diag.ReportError(d, diag.DclTypeArgumentCount, ref.Span,
					fmt.Sprintf("Type parameter %s does not take type arguments", tp.Name)).Emit()
				return ErrorType
			}
			return tp.Type()
		}
	}
	base, ok := c.types[ref.Name]
	if !ok {
		diag.ReportError(d, diag.DclUnknownType, ref.Span, fmt.Sprintf("Unknown type %s", ref.Name)).Emit()
		return ErrorType
	}
	if len(ref.Args) != len(base.typeParams) {
		diag.ReportError(d, diag.DclTypeArgumentCount, ref.Span,
			fmt.Sprintf("Type %s expects %d type arguments, got %d", base.name, len(base.typeParams), len(ref.Args))).Emit()
		return ErrorType
	}
	args := make([]*Type, len(ref.Args))
	for i, a := range ref.Args {
		args[i] = c.ResolveType(d, a, owner)
	}
	return Named(base, args...)
}
