package binding

import (
	"emerge/internal/decl"
	"emerge/internal/ir"
	"emerge/internal/phase"
)

// ToIR lowers a fully validated type. Fields are allocated here: member
// variables in declaration order, then used mixins in constructor order.
func (t *BaseType) ToIR() ir.BaseType {
	if !t.validated() || t.supertypes.broken() {
		phase.ICE("%s lowered before successful validation (%s)", t.name, t.helper.String())
	}
	out := ir.BaseType{
		Name:       t.CanonicalName(),
		Kind:       t.kind.String(),
		Visibility: t.Visibility().String(),
	}
	for _, tp := range t.typeParams {
		out.TypeParams = append(out.TypeParams, tp.Name)
	}
	for _, st := range t.supertypes.declaredTypes() {
		out.Supertypes = append(out.Supertypes, st.String())
	}
	if !t.IsInterface() {
		for _, v := range t.variables {
			v.AssureFieldAllocated()
		}
		for _, m := range t.constructor.mixins {
			if m.used {
				m.AssureFieldAllocated()
			}
		}
		for _, f := range t.fields {
			out.Fields = append(out.Fields, ir.Field{ID: f.ID, Name: f.Name, Type: f.Type.String()})
		}
		for _, v := range t.variables {
			out.MemberVariables = append(out.MemberVariables, ir.MemberVariable{
				Name:       v.Name(),
				Type:       v.Type().String(),
				Field:      v.AssureFieldAllocated().ID,
				Init:       initName(v.decl.Init),
				Visibility: v.Visibility().String(),
			})
		}
	}
	for _, set := range t.overloadSets {
		g := ir.OverloadGroup{Name: set.name, Arity: set.arity}
		for _, fn := range set.overloads {
			g.Functions = append(g.Functions, t.functionIR(fn))
		}
		out.OverloadGroups = append(out.OverloadGroups, g)
	}
	if !t.IsInterface() {
		out.Constructor = t.constructor.toIR()
		out.Destructor = t.destructor.toIR()
	}
	return out
}

func initName(k decl.InitKind) string {
	switch k {
	case decl.InitCtorParam:
		return "ctor"
	case decl.InitExpr:
		return "expr"
	default:
		return "body"
	}
}

func (t *BaseType) functionIR(fn MemberFunction) ir.Function {
	out := ir.Function{
		CanonicalName: fn.CanonicalName(),
		DeclaredOn:    fn.DeclaredOn().CanonicalName(),
		Returns:       fn.ReturnType().String(),
		Receiver:      fn.HasReceiver(),
		Virtual:       fn.Virtual(),
		Abstract:      fn.Abstract(),
		Nothrow:       fn.Nothrow(),
		Visibility:    fn.Visibility().String(),
		MixinField:    ir.NoField,
	}
	if fn.Accessor() != decl.AccessorNone {
		out.Accessor = fn.Accessor().String()
	}
	names := fn.ParamNames()
	for i, p := range fn.Params() {
		out.Params = append(out.Params, ir.Param{Name: names[i], Type: p.String()})
	}
	for _, o := range fn.Overrides() {
		out.Overrides = append(out.Overrides, o.Root().CanonicalName())
	}
	switch f := fn.(type) {
	case *DeclaredMemberFunction:
		out.Kind = ir.FunctionDeclared
		out.Body = t.lowerBlock(f.decl.Body, nil)
	case *InheritedMemberFunction:
		out.Kind = ir.FunctionInherited
	case *MixinBackedFunction:
		out.Kind = ir.FunctionMixin
		if f.registration != nil {
			out.MixinField = f.registration.ObtainField().ref()
		}
	}
	return out
}

// lowerBlock turns statements into IR; mixins maps mixin statements of a
// constructor to their fields.
func (t *BaseType) lowerBlock(b *decl.Block, mixins map[*decl.Stmt]*MixinStatement) []ir.Stmt {
	if b == nil {
		return nil
	}
	var out []ir.Stmt
	for _, st := range b.Stmts {
		s := ir.Stmt{Op: stmtOp(st.Kind), Field: ir.NoField}
		if st.Value != nil {
			s.Value = st.Value.Text
		}
		switch st.Kind {
		case decl.StmtAssign:
			if v, ok := t.MemberVariable(st.Member); ok {
				s.Field = v.AssureFieldAllocated().ref()
			}
		case decl.StmtMixin:
			if m, ok := mixins[st]; ok && m.used {
				s.Field = m.AssureFieldAllocated().ref()
			}
		case decl.StmtIf:
			s.Then = t.lowerBlock(st.Then, mixins)
			s.Else = t.lowerBlock(st.Else, mixins)
		case decl.StmtLoop:
			s.Body = t.lowerBlock(st.Body, mixins)
		}
		out = append(out, s)
	}
	return out
}

func stmtOp(k decl.StmtKind) ir.Op {
	switch k {
	case decl.StmtAssign:
		return ir.OpAssign
	case decl.StmtMixin:
		return ir.OpMixin
	case decl.StmtIf:
		return ir.OpIf
	case decl.StmtLoop:
		return ir.OpLoop
	case decl.StmtThrow:
		return ir.OpThrow
	case decl.StmtReturn:
		return ir.OpReturn
	default:
		return ir.OpEval
	}
}

// toIR: allocate, store parameters and initializers, then the user body.
func (c *Constructor) toIR() *ir.Constructor {
	out := &ir.Constructor{Default: c.IsDefault(), Visibility: c.Visibility().String(), Params: []ir.Param{}}
	out.Body = append(out.Body, ir.Stmt{Op: ir.OpAlloc, Field: ir.NoField})
	for _, v := range c.owner.variables {
		if v.IsCtorParam() {
			out.Params = append(out.Params, ir.Param{Name: v.Name(), Type: v.Type().String()})
			out.Body = append(out.Body, ir.Stmt{Op: ir.OpInit, Field: v.AssureFieldAllocated().ref(), Value: v.Name()})
		}
	}
	for _, v := range c.owner.variables {
		if v.HasInitializer() {
			out.Body = append(out.Body, ir.Stmt{Op: ir.OpInit, Field: v.AssureFieldAllocated().ref(), Value: v.decl.InitExpr.Text})
		}
	}
	mixins := make(map[*decl.Stmt]*MixinStatement, len(c.mixins))
	for _, m := range c.mixins {
		mixins[m.stmt] = m
	}
	out.Body = append(out.Body, c.owner.lowerBlock(c.body(), mixins)...)
	return out
}

// toIR: user body, member drops in declaration order, mixin drops, dealloc.
func (x *Destructor) toIR() *ir.Destructor {
	out := &ir.Destructor{Default: x.IsDefault(), Nothrow: x.Nothrow()}
	out.Body = append(out.Body, x.owner.lowerBlock(x.body(), nil)...)
	for _, v := range x.owner.variables {
		out.Body = append(out.Body, ir.Stmt{Op: ir.OpDrop, Field: v.AssureFieldAllocated().ref(), Value: v.Name()})
	}
	for _, m := range x.mixinDrops {
		out.Body = append(out.Body, ir.Stmt{Op: ir.OpDropMixin, Field: m.AssureFieldAllocated().ref()})
	}
	out.Body = append(out.Body, ir.Stmt{Op: ir.OpDealloc, Field: ir.NoField})
	return out
}
