package trace

import (
	"io"
	"os"
	"sync"
)

// Stream writes each event as it is recorded.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	seq    uint64
}

func NewStream(w io.Writer, level Level, format Format) *Stream {
	return &Stream{w: w, level: level, format: format}
}

func (t *Stream) Record(ev Event) {
	if !t.level.Allows(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	ev.Seq = t.seq
	// best effort: a failing trace output must not fail binding
	_, _ = t.w.Write(FormatEvent(&ev, t.format))
}

func (t *Stream) Level() Level { return t.level }

// Close closes the output unless it is stderr or stdout.
func (t *Stream) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return closeOutput(t.w)
}

func closeOutput(w io.Writer) error {
	if w == os.Stderr || w == os.Stdout {
		return nil
	}
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
