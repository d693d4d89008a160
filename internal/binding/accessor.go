package binding

import (
	"fmt"

	"emerge/internal/decl"
	"emerge/internal/diag"
)

type accessorGroup struct {
	name   string
	reads  []MemberFunction
	writes []MemberFunction
}

// accessorGroups collects accessor functions by property name in overload
// set order.
func (t *BaseType) accessorGroups() []*accessorGroup {
	var groups []*accessorGroup
	byName := make(map[string]*accessorGroup)
	for _, fn := range t.MemberFunctions() {
		if fn.Accessor() == decl.AccessorNone {
			continue
		}
		g, ok := byName[fn.Name()]
		if !ok {
			g = &accessorGroup{name: fn.Name()}
			byName[fn.Name()] = g
			groups = append(groups, g)
		}
		if fn.Accessor() == decl.AccessorRead {
			g.reads = append(g.reads, fn)
		} else {
			g.writes = append(g.writes, fn)
		}
	}
	return groups
}

// checkAccessorsClashWithVariables rejects accessors named like a member
// variable of the same type.
func (t *BaseType) checkAccessorsClashWithVariables(d *Diagnosis) {
	for _, g := range t.accessorGroups() {
		v, ok := t.MemberVariable(g.name)
		if !ok {
			continue
		}
		var fn MemberFunction
		if len(g.reads) > 0 {
			fn = g.reads[0]
		} else {
			fn = g.writes[0]
		}
		diag.ReportError(d, diag.BndAccessorClashesWithMemberVariable, spanIn(t, fn),
			fmt.Sprintf("Accessor %s has the same name as a member variable", g.name)).
			WithNote(v.Span(), "member variable declared here").Emit()
	}
}

// checkAccessors allows one write accessor per property, whose value type
// must equal the read accessor's return type.
func (t *BaseType) checkAccessors(d *Diagnosis) {
	for _, g := range t.accessorGroups() {
		if len(g.writes) > 1 {
			diag.ReportError(d, diag.BndMultipleWriteAccessors, spanIn(t, g.writes[1]),
				fmt.Sprintf("Property %s has more than one write accessor", g.name)).
				WithNote(spanIn(t, g.writes[0]), "first write accessor").Emit()
		}
		if len(g.reads) != 1 || len(g.writes) == 0 {
			continue
		}
		read, write := g.reads[0], g.writes[0]
		if len(read.Params()) != 1 || len(write.Params()) != 2 {
			// shape already reported on the declaration
			continue
		}
		got, want := write.Params()[1], read.ReturnType()
		if got.IsError() || want.IsError() || got.Equal(want) {
			continue
		}
		diag.ReportError(d, diag.BndAccessorTypeMismatch, spanIn(t, write),
			fmt.Sprintf("Write accessor %s takes %s but the read accessor returns %s", g.name, got, want)).
			WithNote(spanIn(t, read), "read accessor").Emit()
	}
}
