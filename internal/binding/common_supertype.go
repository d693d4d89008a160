package binding

import "emerge/internal/phase"

// ClosestCommonSupertype returns the most specific base type every input is
// a subtype of. When several unrelated candidates are equally specific the
// result is Any. Nothing inputs are ignored unless all inputs are Nothing.
// The result does not depend on argument order.
func ClosestCommonSupertype(types ...*BaseType) *BaseType {
	if len(types) == 0 {
		phase.ICE("closest common supertype of no types")
	}
	builtins := types[0].ctx.builtins

	var common map[*BaseType]bool
	for _, t := range types {
		if t.isNothing() {
			continue
		}
		anc := t.supertypes.ancestors()
		if common == nil {
			common = make(map[*BaseType]bool, len(anc))
			for b := range anc {
				common[b] = true
			}
			continue
		}
		for b := range common {
			if _, ok := anc[b]; !ok {
				delete(common, b)
			}
		}
	}
	if common == nil {
		return builtins.Nothing
	}

	var minimal []*BaseType
	for c := range common {
		if !hasMoreSpecific(c, common) {
			minimal = append(minimal, c)
		}
	}
	if len(minimal) == 1 {
		return minimal[0]
	}
	return builtins.Any
}

// hasMoreSpecific reports whether some other candidate is a subtype of c.
func hasMoreSpecific(c *BaseType, candidates map[*BaseType]bool) bool {
	for o := range candidates {
		if o == c {
			continue
		}
		if _, ok := o.supertypes.ancestors()[c]; ok {
			return true
		}
	}
	return false
}

// IsSubtypeOf reports whether t inherits from super, directly or not. Every
// type is a subtype of itself and of Any.
func (t *BaseType) IsSubtypeOf(super *BaseType) bool {
	_, ok := t.supertypes.ancestors()[super]
	return ok
}
