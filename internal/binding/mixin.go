package binding

import (
	"fmt"

	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/lazy"
	"emerge/internal/phase"
	"emerge/internal/source"
	"emerge/internal/trace"
)

// Repetition says how often a statement can run per constructor call.
type Repetition uint8

const (
	ExactlyOnce Repetition = iota
	ZeroOrOnce             // inside a conditional
	ZeroOrMore             // inside a loop
)

func (r Repetition) String() string {
	switch r {
	case ExactlyOnce:
		return "exactly once"
	case ZeroOrOnce:
		return "zero or one time"
	default:
		return "zero or more times"
	}
}

// nest combines the repetition of an enclosing construct with an inner one.
func (r Repetition) nest(inner Repetition) Repetition {
	return max(r, inner)
}

// MixinStatement is a `mixin <expr>` statement in a constructor.
type MixinStatement struct {
	ctor       *Constructor
	stmt       *decl.Stmt
	index      int
	repetition Repetition
	typ        *Type

	used          bool
	registrations []*MixinRegistration
	field         lazy.Cell[*Field]
}

func (m *MixinStatement) Span() source.Span      { return m.stmt.Span }
func (m *MixinStatement) Repetition() Repetition { return m.repetition }

// Type is the type of the mixed-in value; known after phase 2.
func (m *MixinStatement) Type() *Type { return m.typ }

// Used reports whether the mixin implements at least one function.
func (m *MixinStatement) Used() bool { return m.used }

// Registrations lists the functions this mixin implements.
func (m *MixinStatement) Registrations() []*MixinRegistration { return m.registrations }

func (m *MixinStatement) legal() bool {
	return m.repetition == ExactlyOnce && m.typ != nil && !m.typ.IsError()
}

// AssureFieldAllocated returns the field holding the mixed-in value.
func (m *MixinStatement) AssureFieldAllocated() *Field {
	return m.field.GetOrCompute(func() *Field {
		return m.ctor.owner.AllocateField(m.typ, fmt.Sprintf("$mixin%d", m.index))
	})
}

// MixinRegistration records that a mixin implements an inherited abstract
// function, seen as Target from the class.
type MixinRegistration struct {
	Mixin    *MixinStatement
	Function *MixinBackedFunction
	Target   *Type
}

// collectMixins finds the mixin statements of a constructor body together
// with how often each can execute.
func collectMixins(c *Constructor, b *decl.Block) []*MixinStatement {
	var out []*MixinStatement
	var walk func(b *decl.Block, rep Repetition)
	walk = func(b *decl.Block, rep Repetition) {
		if b == nil {
			return
		}
		for _, st := range b.Stmts {
			switch st.Kind {
			case decl.StmtMixin:
				out = append(out, &MixinStatement{ctor: c, stmt: st, index: len(out), repetition: rep})
			case decl.StmtIf:
				walk(st.Then, rep.nest(ZeroOrOnce))
				walk(st.Else, rep.nest(ZeroOrOnce))
			case decl.StmtLoop:
				walk(st.Body, rep.nest(ZeroOrMore))
			}
		}
	}
	walk(b, ExactlyOnce)
	return out
}

// assignMixins gives every mixin-backed function of the class the first
// legal mixin, in constructor order, whose type is assignable to the
// function's declaring supertype. Used mixins are dropped by the destructor.
func (c *Constructor) assignMixins(d *Diagnosis) {
	t := c.owner
	span := t.ctx.beginSpan(trace.Site{Scope: trace.ScopeStep, Name: "mixins", Type: t.CanonicalName()})
	defer span.End(fmt.Sprintf("%d functions, %d mixins", len(t.mixinBacked), len(c.mixins)))

	for _, fn := range t.mixinBacked {
		target := t.supertypes.viewOf(fn.Root().DeclaredOn())
		if target == nil {
			phase.ICE("%s is not an ancestor of %s", fn.Root().DeclaredOn(), t)
		}
		var chosen *MixinStatement
		for _, m := range c.mixins {
			if m.legal() && m.typ.AssignableTo(target) {
				chosen = m
				break
			}
		}
		if chosen == nil {
			diag.ReportError(d, diag.BndAbstractFunctionNotImplement, spanIn(t, fn),
				fmt.Sprintf("%s does not implement the abstract function %s and no mixin of type %s provides it",
					t.name, fn.Root().CanonicalName(), target)).Emit()
			continue
		}
		reg := &MixinRegistration{Mixin: chosen, Function: fn, Target: target}
		fn.assignMixin(reg)
		chosen.used = true
		chosen.registrations = append(chosen.registrations, reg)
	}

	for _, m := range c.mixins {
		if !m.legal() {
			continue
		}
		if !m.used {
			diag.ReportError(d, diag.BndUnusedMixin, m.stmt.Span,
				fmt.Sprintf("Mixin of type %s does not implement any function", m.typ)).Emit()
			continue
		}
		if t.destructor != nil {
			t.destructor.registerMixinDrop(m)
		}
	}
}

// ObtainField returns the field the function delegates through.
func (r *MixinRegistration) ObtainField() *Field {
	return r.Mixin.AssureFieldAllocated()
}
