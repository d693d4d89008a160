package binding

import (
	"fmt"

	"emerge/internal/decl"
	"emerge/internal/diag"
	"emerge/internal/lazy"
	"emerge/internal/phase"
	"emerge/internal/source"
)

// MemberVariable is a variable declared in a class body.
type MemberVariable struct {
	owner  *BaseType
	decl   *decl.MemberVariableDecl
	helper phase.Helper

	typ      *Type
	initType *Type
	field    lazy.Cell[*Field]
}

func newMemberVariable(owner *BaseType, d *decl.MemberVariableDecl) *MemberVariable {
	return &MemberVariable{owner: owner, decl: d}
}

func (v *MemberVariable) Name() string                   { return v.decl.Name }
func (v *MemberVariable) Span() source.Span              { return v.decl.Span }
func (v *MemberVariable) Owner() *BaseType               { return v.owner }
func (v *MemberVariable) Decl() *decl.MemberVariableDecl { return v.decl }
func (v *MemberVariable) IsCtorParam() bool              { return v.decl.Init == decl.InitCtorParam }
func (v *MemberVariable) HasInitializer() bool           { return v.decl.Init == decl.InitExpr }
func (v *MemberVariable) Reassignable() bool             { return v.decl.Reassignable }
func (v *MemberVariable) Visibility() decl.Visibility {
	return v.decl.Visibility.AtMost(v.owner.Visibility())
}

// Type is resolved in phase 2.
func (v *MemberVariable) Type() *Type {
	v.helper.RequireDone(phase.ValidateTypes)
	return v.typ
}

func (v *MemberVariable) Phase1(d *Diagnosis) {
	v.helper.Phase1(d, func() {
		if v.decl.Init == decl.InitExpr && v.decl.InitExpr == nil {
			phase.ICE("member variable %s has an initializer kind without an expression", v.decl.Name)
		}
	})
}

// Phase2 resolves the declared type and checks the initializer against it.
func (v *MemberVariable) Phase2(d *Diagnosis) {
	v.helper.Phase2(d, func(*phase.Context) {
		v.typ = v.owner.ctx.ResolveType(d, v.decl.Type, v.owner)
		if v.decl.Decorated && v.decl.Init != decl.InitCtorParam {
			diag.ReportError(d, diag.BndDecoratedMemberNotCtorInit, v.decl.Span,
				fmt.Sprintf("Decorated member variable %s must be a constructor parameter", v.decl.Name)).Emit()
		}
		if v.decl.Init != decl.InitExpr {
			return
		}
		v.initType = v.owner.ctx.ResolveType(d, v.decl.InitExpr.Type, v.owner)
		if !v.initType.AssignableTo(v.typ) {
			diag.ReportError(d, diag.BndTypeMismatch, v.decl.InitExpr.Span,
				fmt.Sprintf("Cannot initialize %s of type %s with a value of type %s", v.decl.Name, v.typ, v.initType)).Emit()
		}
	})
}

func (v *MemberVariable) Phase3(d *Diagnosis) {
	v.helper.Phase3(d, true, func() {})
}

// AssureFieldAllocated returns the variable's field, allocating it on the
// first call. The owner must be fully validated.
func (v *MemberVariable) AssureFieldAllocated() *Field {
	return v.field.GetOrCompute(func() *Field {
		return v.owner.AllocateField(v.Type(), v.decl.Name)
	})
}
