package trace

import (
	"io"
	"sync"
)

// Tail keeps the last events in a ring and writes them on Close.
type Tail struct {
	mu     sync.Mutex
	w      io.Writer // nil keeps events in memory only
	level  Level
	format Format
	ring   []Event
	next   int
	seq    uint64
}

// NewTail keeps up to size events (4096 when size is not positive).
func NewTail(w io.Writer, size int, level Level, format Format) *Tail {
	if size <= 0 {
		size = 4096
	}
	return &Tail{w: w, level: level, format: format, ring: make([]Event, 0, size)}
}

func (t *Tail) Record(ev Event) {
	if !t.level.Allows(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	ev.Seq = t.seq
	if len(t.ring) < cap(t.ring) {
		t.ring = append(t.ring, ev)
		return
	}
	t.ring[t.next] = ev
	t.next = (t.next + 1) % len(t.ring)
}

// Events returns the kept events, oldest first.
func (t *Tail) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, len(t.ring))
	out = append(out, t.ring[t.next:]...)
	return append(out, t.ring[:t.next]...)
}

func (t *Tail) Level() Level { return t.level }

// Close writes the kept events and closes the output.
func (t *Tail) Close() error {
	if t.w == nil {
		return nil
	}
	for _, ev := range t.Events() {
		if _, err := t.w.Write(FormatEvent(&ev, t.format)); err != nil {
			return err
		}
	}
	return closeOutput(t.w)
}
