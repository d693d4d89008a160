package binding

import (
	"fmt"
	"maps"

	"emerge/internal/decl"
	"emerge/internal/diag"
)

// initState is the set of member variables certainly initialized at a
// program point. A bottom state is unreachable: every variable counts as
// initialized there.
type initState struct {
	bottom bool
	vars   map[string]bool
}

func reachable(vars map[string]bool) initState {
	return initState{vars: vars}
}

func (s initState) has(name string) bool {
	return s.bottom || s.vars[name]
}

func (s initState) with(name string) initState {
	if s.bottom {
		return s
	}
	vars := maps.Clone(s.vars)
	vars[name] = true
	return initState{vars: vars}
}

// meet is the state after two control flow paths join.
func meet(a, b initState) initState {
	switch {
	case a.bottom:
		return b
	case b.bottom:
		return a
	}
	vars := make(map[string]bool)
	for name := range a.vars {
		if b.vars[name] {
			vars[name] = true
		}
	}
	return initState{vars: vars}
}

// initAnalysis tracks member variable initialization through a constructor
// body.
type initAnalysis struct {
	owner *BaseType
	d     *Diagnosis
	exits []initState
	quiet bool // no reports or exits; used to measure a loop iteration
}

func (a *initAnalysis) block(b *decl.Block, s initState) initState {
	if b == nil {
		return s
	}
	for _, st := range b.Stmts {
		s = a.stmt(st, s)
	}
	return s
}

func (a *initAnalysis) stmt(st *decl.Stmt, s initState) initState {
	switch st.Kind {
	case decl.StmtAssign:
		v, ok := a.owner.MemberVariable(st.Member)
		if !ok {
			return s
		}
		if !a.quiet && !s.bottom && s.has(v.Name()) && !v.Reassignable() {
			diag.ReportError(a.d, diag.BndMemberVariableInitializedTwice, st.Span,
				fmt.Sprintf("Member variable %s may already be initialized and cannot be reassigned", v.Name())).
				WithNote(v.Span(), "declared here").Emit()
		}
		return s.with(v.Name())
	case decl.StmtIf:
		return meet(a.block(st.Then, s), a.block(st.Else, s))
	case decl.StmtLoop:
		a.block(st.Body, a.loopEntry(st.Body, s))
		return s
	case decl.StmtThrow:
		return initState{bottom: true}
	case decl.StmtReturn:
		if !a.quiet {
			a.exits = append(a.exits, s)
		}
		return initState{bottom: true}
	}
	return s
}

// loopEntry is the state at the head of a loop body that may run more than
// once: anything the body assigns on a path back to the head may already be
// initialized there.
func (a *initAnalysis) loopEntry(body *decl.Block, s initState) initState {
	if s.bottom {
		return s
	}
	quiet := a.quiet
	a.quiet = true
	after := a.block(body, s)
	a.quiet = quiet
	if after.bottom {
		return s
	}
	for _, name := range assignedIn(body, nil) {
		if _, ok := a.owner.MemberVariable(name); ok {
			s = s.with(name)
		}
	}
	return s
}

func assignedIn(b *decl.Block, names []string) []string {
	if b == nil {
		return names
	}
	for _, st := range b.Stmts {
		switch st.Kind {
		case decl.StmtAssign:
			names = append(names, st.Member)
		case decl.StmtIf:
			names = assignedIn(st.Else, assignedIn(st.Then, names))
		case decl.StmtLoop:
			names = assignedIn(st.Body, names)
		}
	}
	return names
}

// run returns the state on every normal exit of b combined.
func (a *initAnalysis) run(b *decl.Block, entry initState) initState {
	final := a.block(b, entry)
	for _, e := range a.exits {
		final = meet(final, e)
	}
	return final
}
