package binding

import (
	"emerge/internal/decl"
	"emerge/internal/phase"
	"emerge/internal/source"
)

// MixinBackedFunction stands for an abstract function a class inherits
// without overriding it. A mixin in the constructor has to supply it.
type MixinBackedFunction struct {
	inherited    *InheritedMemberFunction
	registration *MixinRegistration
}

func newMixinBackedFunction(inh *InheritedMemberFunction) *MixinBackedFunction {
	return &MixinBackedFunction{inherited: inh}
}

func (f *MixinBackedFunction) Name() string                          { return f.inherited.Name() }
func (f *MixinBackedFunction) CanonicalName() string                 { return f.inherited.CanonicalName() }
func (f *MixinBackedFunction) Owner() *BaseType                      { return f.inherited.Owner() }
func (f *MixinBackedFunction) DeclaredOn() *BaseType                 { return f.inherited.DeclaredOn() }
func (f *MixinBackedFunction) Span() source.Span                     { return f.inherited.Span() }
func (f *MixinBackedFunction) Params() []*Type                       { return f.inherited.Params() }
func (f *MixinBackedFunction) ParamNames() []string                  { return f.inherited.ParamNames() }
func (f *MixinBackedFunction) ReturnType() *Type                     { return f.inherited.ReturnType() }
func (f *MixinBackedFunction) HasReceiver() bool                     { return true }
func (f *MixinBackedFunction) Virtual() bool                         { return true }
func (f *MixinBackedFunction) Nothrow() bool                         { return f.inherited.Nothrow() }
func (f *MixinBackedFunction) Accessor() decl.AccessorKind           { return f.inherited.Accessor() }
func (f *MixinBackedFunction) Overrides() []*InheritedMemberFunction { return nil }
func (f *MixinBackedFunction) Root() *DeclaredMemberFunction         { return f.inherited.Root() }
func (f *MixinBackedFunction) Visibility() decl.Visibility           { return f.inherited.Visibility() }

// Abstract stays true until a mixin is assigned.
func (f *MixinBackedFunction) Abstract() bool { return f.registration == nil }

func (f *MixinBackedFunction) Inherited() *InheritedMemberFunction { return f.inherited }

// Registration is the mixin that implements the function, or nil.
func (f *MixinBackedFunction) Registration() *MixinRegistration { return f.registration }

func (f *MixinBackedFunction) assignMixin(reg *MixinRegistration) {
	if f.registration != nil {
		phase.ICE("mixin for %s assigned twice", f.CanonicalName())
	}
	f.registration = reg
}

// Mixin assignment happens in the constructor's phase 3.
func (f *MixinBackedFunction) Phase1(*Diagnosis) {}
func (f *MixinBackedFunction) Phase2(*Diagnosis) {}
func (f *MixinBackedFunction) Phase3(*Diagnosis) {}
