package trace

import (
	"sync/atomic"
	"time"
)

var lastSpan atomic.Uint64

// Span is an open interval of binder work. The zero Span (returned when the
// tracer drops the scope) ignores End.
type Span struct {
	tracer  Tracer
	site    Site
	id      uint64
	parent  uint64
	started time.Time
}

// Begin records the start of site below parent.
func Begin(t Tracer, site Site, parent uint64) *Span {
	if !Records(t, site.Scope) {
		return &Span{}
	}
	s := &Span{tracer: t, site: site, id: lastSpan.Add(1), parent: parent, started: time.Now()}
	t.Record(Event{Site: site, Kind: KindBegin, Span: s.id, Parent: parent})
	return s
}

// End records the end of the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	elapsed := time.Since(s.started)
	s.tracer.Record(Event{Site: s.site, Kind: KindEnd, Span: s.id, Parent: s.parent, Detail: detail, Elapsed: elapsed})
	return elapsed
}

// ID is 0 for a span that is not recorded.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point records an instant event below parent.
func Point(t Tracer, site Site, detail string, parent uint64) {
	if !Records(t, site.Scope) {
		return
	}
	t.Record(Event{Site: site, Kind: KindPoint, Span: lastSpan.Add(1), Parent: parent, Detail: detail})
}
