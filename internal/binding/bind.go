package binding

import (
	"fmt"

	"emerge/internal/decl"
	"emerge/internal/ir"
	"emerge/internal/observ"
	"emerge/internal/trace"
)

// BindUnits declares the types of every unit and binds them as one
// compilation unit.
func (c *Context) BindUnits(d *Diagnosis, timer *observ.Timer, units ...*decl.Unit) []*BaseType {
	var out []*BaseType
	timer.Measure("declare", func() {
		for _, u := range units {
			out = append(out, c.Declare(d, u)...)
		}
	})
	c.Bind(d, timer)
	return out
}

// Bind runs phase 1 on every type, then phase 2 on every type, then phase 3.
// Builtins go first. Phases reached earlier through supertype walks are not
// repeated.
func (c *Context) Bind(d *Diagnosis, timer *observ.Timer) {
	all := c.all()
	c.runPhase(timer, "phase1", all, func(t *BaseType) { t.Phase1(d) })
	c.runPhase(timer, "phase2", all, func(t *BaseType) { t.Phase2(d) })
	c.runPhase(timer, "phase3", all, func(t *BaseType) { t.Phase3(d) })
}

func (c *Context) runPhase(timer *observ.Timer, name string, types []*BaseType, run func(*BaseType)) {
	span := c.beginSpan(trace.Site{Scope: trace.ScopePhase, Name: name})
	c.phaseSpan = span.ID()
	idx := timer.Begin(name)
	for _, t := range types {
		run(t)
	}
	note := fmt.Sprintf("%d types", len(types))
	timer.End(idx, note)
	span.End(note)
	c.phaseSpan = 0
}

func (c *Context) all() []*BaseType {
	b := c.builtins
	out := []*BaseType{b.Any, b.Nothing, b.Unit, b.S32, b.Bool, b.String}
	return append(out, c.order...)
}

// Packages lists the packages of the declared types in declaration order.
func (c *Context) Packages() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range c.order {
		if !seen[t.pkg] {
			seen[t.pkg] = true
			out = append(out, t.pkg)
		}
	}
	return out
}

// Snapshot lowers every type declared in pkg. Call it only after a binding
// that reported no errors.
func (c *Context) Snapshot(pkg string) *ir.Snapshot {
	s := &ir.Snapshot{Package: pkg}
	for _, t := range c.order {
		if t.pkg == pkg {
			s.Types = append(s.Types, t.ToIR())
		}
	}
	return s
}
