// Package phase implements the three-step analysis state machine every
// bindable entity goes through: declare, validate types, validate bodies.
package phase

import (
	"fmt"
	"strings"
)

// Phase identifies one of the three analysis steps.
type Phase uint8

const (
	Declare        Phase = iota + 1 // register declarations, resolve names
	ValidateTypes                   // resolve types, inheritance, cycles
	ValidateBodies                  // overrides, mixins, initialization
)

// Prerequisites maps each phase to the phase that must be complete before it.
var Prerequisites = map[Phase]Phase{
	ValidateTypes:  Declare,
	ValidateBodies: ValidateTypes,
}

func (p Phase) String() string {
	switch p {
	case Declare:
		return "phase1"
	case ValidateTypes:
		return "phase2"
	case ValidateBodies:
		return "phase3"
	default:
		return "unknown"
	}
}

// InternalError is raised (as a panic) on binder invariant violations.
// It never describes a problem in user declarations.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Msg
}

// ICE panics with an *InternalError.
func ICE(format string, args ...any) {
	panic(&InternalError{Msg: fmt.Sprintf(format, args...)})
}

// ErrorCounter is the part of a diagnostics sink the Helper needs.
type ErrorCounter interface {
	Errors() int
}

type status uint8

const (
	pending status = iota
	running
	done
	skipped
)

// Context is handed to phase-2 implementations.
type Context struct {
	erroneous bool
}

// MarkErroneous flags phase 2 as failed even when it reported nothing, so a
// phase 3 that must not run after errors is skipped.
func (c *Context) MarkErroneous() {
	c.erroneous = true
}

// Helper holds the per-entity phase state. The zero value is ready to use.
type Helper struct {
	status    [3]status
	hadErrors [3]bool
}

// Phase1 runs impl once. Later calls return immediately.
func (h *Helper) Phase1(d ErrorCounter, impl func()) {
	h.run(Declare, d, func() bool {
		impl()
		return false
	})
}

// Phase2 runs impl once, after Phase1.
func (h *Helper) Phase2(d ErrorCounter, impl func(*Context)) {
	h.RequireDone(Declare)
	h.run(ValidateTypes, d, func() bool {
		ctx := &Context{}
		impl(ctx)
		return ctx.erroneous
	})
}

// Phase3 runs impl once, after Phase2. When runIfErrorsPreviously is false and
// an earlier phase failed, impl is not run and phase 3 stays incomplete.
func (h *Helper) Phase3(d ErrorCounter, runIfErrorsPreviously bool, impl func()) {
	h.RequireDone(ValidateTypes)
	if !runIfErrorsPreviously && (h.hadErrors[0] || h.hadErrors[1]) {
		if h.status[2] == pending {
			h.status[2] = skipped
		}
		return
	}
	h.run(ValidateBodies, d, func() bool {
		impl()
		return false
	})
}

func (h *Helper) run(p Phase, d ErrorCounter, impl func() bool) {
	i := p - 1
	switch h.status[i] {
	case done:
		return
	case running:
		// re-entered through a recursive graph walk; the outer call finishes the work
		return
	}
	before := d.Errors()
	h.status[i] = running
	marked := impl()
	h.status[i] = done
	h.hadErrors[i] = marked || d.Errors() > before
}

// Done reports whether p has completed.
func (h *Helper) Done(p Phase) bool {
	return h.status[p-1] == done
}

// HadErrors reports whether p completed with errors.
func (h *Helper) HadErrors(p Phase) bool {
	return h.hadErrors[p-1]
}

// RequireDone panics with an ICE unless p and its prerequisites completed.
func (h *Helper) RequireDone(p Phase) {
	for cur, ok := p, true; ok; cur, ok = Prerequisites[cur] {
		if h.status[cur-1] != done && h.status[cur-1] != running {
			ICE("semantic analysis %s is required but hasn't been done yet", cur)
		}
	}
}

// RequireNotDone panics with an ICE when p already ran.
func (h *Helper) RequireNotDone(p Phase) {
	if h.status[p-1] == done || h.status[p-1] == running {
		ICE("semantic analysis %s must not have been done yet", p)
	}
}

func (h *Helper) String() string {
	var sb strings.Builder
	sb.WriteString("phases[")
	for i, st := range h.status {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", i+1)
		switch {
		case st == done && h.hadErrors[i]:
			sb.WriteString("✗")
		case st == done:
			sb.WriteString("✓")
		case st == skipped:
			sb.WriteString("-")
		default:
			sb.WriteString("?")
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
