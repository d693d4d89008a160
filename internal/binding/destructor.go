package binding

import (
	"fmt"

	"emerge/internal/cycle"
	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/phase"
	"emerge/internal/source"
)

// Destructor runs the user body, then drops member variables and mixins.
type Destructor struct {
	owner  *BaseType
	decl   *decl.DestructorDecl // nil for the default destructor
	helper phase.Helper

	mixinDrops []*MixinStatement
}

func newDestructor(owner *BaseType, d *decl.DestructorDecl) *Destructor {
	return &Destructor{owner: owner, decl: d}
}

func (x *Destructor) Owner() *BaseType { return x.owner }
func (x *Destructor) IsDefault() bool  { return x.decl == nil }

func (x *Destructor) Span() source.Span {
	if x.decl == nil {
		return x.owner.Span()
	}
	return x.decl.Span
}

func (x *Destructor) Nothrow() bool {
	return x.decl != nil && x.decl.Nothrow
}

func (x *Destructor) body() *decl.Block {
	if x.decl == nil {
		return nil
	}
	return x.decl.Body
}

// MixinDrops lists the mixins dropped after the member variables.
func (x *Destructor) MixinDrops() []*MixinStatement { return x.mixinDrops }

func (x *Destructor) registerMixinDrop(m *MixinStatement) {
	x.helper.RequireNotDone(phase.ValidateBodies)
	x.mixinDrops = append(x.mixinDrops, m)
}

func (x *Destructor) Phase1(d *Diagnosis) {
	x.helper.Phase1(d, func() {
		walkStmts(x.body(), func(st *decl.Stmt) {
			if st.Kind == decl.StmtMixin {
				diag.ReportError(d, diag.BndMixinNotAllowed, st.Span,
					"Mixins are only allowed in constructors").Emit()
			}
		})
	})
}

func (x *Destructor) Phase2(d *Diagnosis) {
	x.helper.Phase2(d, func(*phase.Context) {})
}

// Phase3 enforces nothrow: neither the body nor dropping any member or mixin
// may throw.
func (x *Destructor) Phase3(d *Diagnosis) {
	x.helper.Phase3(d, true, func() {
		if !x.Nothrow() {
			return
		}
		if bodyThrows(x.body()) {
			diag.ReportError(d, diag.BndNothrowViolation, x.decl.Span,
				fmt.Sprintf("The destructor of %s is declared nothrow but its body may throw", x.owner.name)).Emit()
		}
		ctx := x.owner.ctx
		for _, v := range x.owner.variables {
			if ctx.dropMayThrow(v.Type()) {
				diag.ReportError(d, diag.BndNothrowViolation, x.decl.Span,
					fmt.Sprintf("The destructor of %s is declared nothrow but dropping %s of type %s may throw",
						x.owner.name, v.Name(), v.Type())).
					WithNote(v.Span(), "member variable declared here").Emit()
			}
		}
		for _, m := range x.mixinDrops {
			if ctx.dropMayThrow(m.typ) {
				diag.ReportError(d, diag.BndNothrowViolation, x.decl.Span,
					fmt.Sprintf("The destructor of %s is declared nothrow but dropping the mixin of type %s may throw",
						x.owner.name, m.typ)).
					WithNote(m.stmt.Span, "mixin").Emit()
			}
		}
	})
}

// mayThrow reports whether running this destructor may throw.
func (x *Destructor) mayThrow() bool {
	if x.Nothrow() {
		return false
	}
	if bodyThrows(x.body()) {
		return true
	}
	ctx := x.owner.ctx
	for _, v := range x.owner.variables {
		if v.typ != nil && ctx.dropMayThrow(v.typ) {
			return true
		}
	}
	for _, m := range x.mixinDrops {
		if ctx.dropMayThrow(m.typ) {
			return true
		}
	}
	return false
}

// dropMayThrow reports whether dropping a value of static type t may throw.
// Only class types have a known destructor; a class reached again while its
// own drop is being examined contributes nothing.
func (c *Context) dropMayThrow(t *Type) bool {
	if t == nil || t.Kind() != TypeNamed || t.base.IsInterface() || t.base.destructor == nil {
		return false
	}
	return cycle.Handle(c.dropping, t.base, t.base.destructor.mayThrow, func() bool { return false })
}
