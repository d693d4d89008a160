package binding

import (
	"fmt"
	"slices"

	"emerge/internal/diag"
	"emerge/internal/phase"
	"emerge/internal/source"
)

// OverloadSet groups the member functions of a type that share a name and a
// parameter count (receiver included).
type OverloadSet struct {
	owner     *BaseType
	name      string
	arity     int
	overloads []MemberFunction
	helper    phase.Helper
}

func (s *OverloadSet) Name() string                { return s.name }
func (s *OverloadSet) ParameterCount() int         { return s.arity }
func (s *OverloadSet) Overloads() []MemberFunction { return s.overloads }

// Phase1 checks that either all overloads have a receiver or none has.
func (s *OverloadSet) Phase1(d *Diagnosis) {
	s.helper.Phase1(d, func() {
		first := s.overloads[0]
		for _, fn := range s.overloads[1:] {
			if fn.HasReceiver() == first.HasReceiver() {
				continue
			}
			diag.ReportError(d, diag.BndInconsistentReceiverPresence, spanIn(s.owner, fn),
				fmt.Sprintf("Overloads of %s must either all have a receiver or all have none", s.name)).
				WithNote(spanIn(s.owner, first), "first overload").Emit()
			return
		}
	})
}

func (s *OverloadSet) Phase2(d *Diagnosis) {
	s.helper.Phase2(d, func(*phase.Context) {})
}

// Phase3 checks that every pair of overloads differs in at least one
// parameter position by disjoint types.
func (s *OverloadSet) Phase3(d *Diagnosis) {
	s.helper.Phase3(d, false, func() {
		for i, a := range s.overloads {
			for _, b := range s.overloads[i+1:] {
				if a.HasReceiver() != b.HasReceiver() || hasErrorParam(a) || hasErrorParam(b) {
					continue
				}
				if overloadsDisjoint(a, b) {
					continue
				}
				diag.ReportError(d, diag.BndOverloadsNotDisjoint, spanIn(s.owner, b),
					fmt.Sprintf("Overloads of %s cannot be told apart by their parameter types", s.name)).
					WithNote(spanIn(s.owner, a), "conflicts with this overload").Emit()
			}
		}
	})
}

func overloadsDisjoint(a, b MemberFunction) bool {
	pa, pb := valueParams(a), valueParams(b)
	for i := range pa {
		if Disjoint(pa[i], pb[i]) {
			return true
		}
	}
	return false
}

func hasErrorParam(fn MemberFunction) bool {
	for _, p := range fn.Params() {
		if p.IsError() {
			return true
		}
	}
	return false
}

// spanIn locates fn within t: its declaration when t declares it, otherwise
// the inheritance clause it came through.
func spanIn(t *BaseType, fn MemberFunction) source.Span {
	switch f := fn.(type) {
	case *InheritedMemberFunction:
		return f.clause.ref.Span
	case *MixinBackedFunction:
		return f.inherited.clause.ref.Span
	}
	if fn.Owner() == t {
		return fn.Span()
	}
	return t.Span()
}

type overloadKey struct {
	name  string
	arity int
}

// buildOverloadSets groups declared functions and the inherited functions
// they do not override. Sets appear in order of first appearance, declared
// functions before inherited ones. An inherited function reached along
// several paths is kept once, and one whose declaration is overridden by
// another inherited declaration is dropped. On classes, inherited abstract
// functions become mixin-backed.
func (t *BaseType) buildOverloadSets(d *Diagnosis) {
	index := make(map[overloadKey]*OverloadSet)
	add := func(fn MemberFunction) {
		k := overloadKey{name: fn.Name(), arity: len(fn.Params())}
		set, ok := index[k]
		if !ok {
			set = &OverloadSet{owner: t, name: k.name, arity: k.arity}
			index[k] = set
			t.overloadSets = append(t.overloadSets, set)
		}
		set.overloads = append(set.overloads, fn)
	}

	overridden := make(map[*InheritedMemberFunction]bool)
	for _, fn := range t.functions {
		for _, o := range fn.Overrides() {
			overridden[o] = true
		}
		add(fn)
	}
	inherited := t.supertypes.InheritedMemberFunctions()
	kept := distinctRoots(inherited)
	seenRoots := make(map[*DeclaredMemberFunction]bool)
	for _, inh := range inherited {
		root := inh.Root()
		if overridden[inh] || seenRoots[root] || !slices.Contains(kept, root) {
			continue
		}
		seenRoots[root] = true
		if inh.Abstract() && !t.IsInterface() {
			mb := newMixinBackedFunction(inh)
			t.mixinBacked = append(t.mixinBacked, mb)
			add(mb)
			continue
		}
		add(inh)
	}

	for _, set := range t.overloadSets {
		set.Phase1(d)
		set.Phase2(d)
	}
}
