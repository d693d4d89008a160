package binding

import (
	"fmt"

	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/phase"
	"emerge/internal/source"
)

// Constructor is the constructor of a class; classes without one get a
// default constructor with an empty body.
type Constructor struct {
	owner  *BaseType
	decl   *decl.ConstructorDecl // nil for the default constructor
	helper phase.Helper

	mixins     []*MixinStatement
	valueTypes map[*decl.Stmt]*Type
}

func newConstructor(owner *BaseType, d *decl.ConstructorDecl) *Constructor {
	return &Constructor{owner: owner, decl: d, valueTypes: make(map[*decl.Stmt]*Type)}
}

func (c *Constructor) Owner() *BaseType { return c.owner }

// Visibility is the declared visibility capped at the owner's; the default
// constructor shares the owner's.
func (c *Constructor) Visibility() decl.Visibility {
	if c.decl == nil {
		return c.owner.Visibility()
	}
	return c.decl.Visibility.AtMost(c.owner.Visibility())
}

// IsDefault reports whether the constructor was synthesized.
func (c *Constructor) IsDefault() bool { return c.decl == nil }

func (c *Constructor) Span() source.Span {
	if c.decl == nil {
		return c.owner.Span()
	}
	return c.decl.Span
}

func (c *Constructor) body() *decl.Block {
	if c.decl == nil {
		return nil
	}
	return c.decl.Body
}

// Params are the constructor-initialized member variables in declaration
// order.
func (c *Constructor) Params() []*MemberVariable {
	var out []*MemberVariable
	for _, v := range c.owner.variables {
		if v.IsCtorParam() {
			out = append(out, v)
		}
	}
	return out
}

// Mixins lists the mixin statements in body order.
func (c *Constructor) Mixins() []*MixinStatement { return c.mixins }

func (c *Constructor) Phase1(d *Diagnosis) {
	c.helper.Phase1(d, func() {
		c.mixins = collectMixins(c, c.body())
	})
}

// Phase2 types assignments and mixins and rejects mixins that may run other
// than exactly once.
func (c *Constructor) Phase2(d *Diagnosis) {
	c.helper.Phase2(d, func(*phase.Context) {
		walkStmts(c.body(), func(st *decl.Stmt) {
			if st.Kind == decl.StmtAssign {
				c.checkAssignment(d, st)
			}
		})
		for _, m := range c.mixins {
			m.typ = c.owner.ctx.ResolveType(d, m.stmt.Value.Type, c.owner)
			if m.repetition != ExactlyOnce {
				diag.ReportError(d, diag.BndIllegalMixinRepetition, m.stmt.Span,
					fmt.Sprintf("A mixin must run exactly once, this one runs %s", m.repetition)).Emit()
			}
		}
	})
}

func (c *Constructor) checkAssignment(d *Diagnosis, st *decl.Stmt) {
	v, ok := c.owner.MemberVariable(st.Member)
	if !ok {
		diag.ReportError(d, diag.DclUnknownMember, st.Span,
			fmt.Sprintf("%s has no member variable %s", c.owner.name, st.Member)).Emit()
		return
	}
	valueType := c.owner.ctx.ResolveType(d, st.Value.Type, c.owner)
	c.valueTypes[st] = valueType
	if !valueType.AssignableTo(v.Type()) {
		diag.ReportError(d, diag.BndTypeMismatch, st.Value.Span,
			fmt.Sprintf("Cannot assign a value of type %s to %s of type %s", valueType, v.Name(), v.Type())).Emit()
	}
}

// Phase3 checks that every member variable is initialized on every normal
// exit and assigns mixins to abstract inherited functions.
func (c *Constructor) Phase3(d *Diagnosis) {
	c.helper.Phase3(d, true, func() {
		if c.decl != nil && c.decl.Nothrow {
			diag.ReportError(d, diag.BndConstructorDeclaredNothrow, c.decl.Span,
				"Constructors cannot be declared nothrow").Emit()
		}
		c.checkInitialization(d)
		c.assignMixins(d)
	})
}

func (c *Constructor) checkInitialization(d *Diagnosis) {
	entry := make(map[string]bool)
	for _, v := range c.owner.variables {
		if v.IsCtorParam() || v.HasInitializer() {
			entry[v.Name()] = true
		}
	}
	a := &initAnalysis{owner: c.owner, d: d}
	final := a.run(c.body(), reachable(entry))
	for _, v := range c.owner.variables {
		if final.has(v.Name()) {
			continue
		}
		diag.ReportError(d, diag.BndMemberVariableNotInitialized, v.Span(),
			fmt.Sprintf("Member variable %s is not initialized by the constructor of %s", v.Name(), c.owner.name)).
			WithNote(c.Span(), "constructor").Emit()
	}
}
