package trace

import "time"

type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event; coarser scopes compare lower.
type Scope uint8

const (
	// ScopeDriver covers a whole check.
	ScopeDriver Scope = iota + 1
	// ScopePhase covers one binder phase over a compilation unit.
	ScopePhase
	// ScopeType covers one phase of one base type.
	ScopeType
	ScopeStep // single resolution step (override, mixin, cycle)
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePhase:
		return "phase"
	case ScopeType:
		return "type"
	case ScopeStep:
		return "step"
	default:
		return "unknown"
	}
}

// Site says what an event is about.
type Site struct {
	Scope Scope
	// Name is the operation: "check", "phase2", "override", "cycle".
	Name string
	// Type is the canonical name of the base type concerned, if any.
	Type string
	// Member is a member function or variable of Type, if any.
	Member string
}

// Subject joins Type and Member.
func (s Site) Subject() string {
	switch {
	case s.Type != "" && s.Member != "":
		return s.Type + "." + s.Member
	case s.Type != "":
		return s.Type
	default:
		return s.Member
	}
}

type Event struct {
	Site
	Kind   Kind
	Seq    uint64 // assigned by the sink in recording order
	Span   uint64
	Parent uint64 // 0 at the root
	Detail string
	// Elapsed is set on KindEnd.
	Elapsed time.Duration
}
