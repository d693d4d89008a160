package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events. Record must be safe for concurrent use.
type Tracer interface {
	Record(ev Event)
	Level() Level
	// Close writes out anything held back and releases the output.
	Close() error
}

// Records reports whether t keeps events of scope.
func Records(t Tracer, scope Scope) bool {
	return t != nil && t.Level().Allows(scope)
}

type nopTracer struct{}

func (nopTracer) Record(Event) {}
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Close() error { return nil }

// Nop drops everything.
var Nop Tracer = nopTracer{}

// Mode selects the sink.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // write each event as it happens
	ModeTail                   // write the last events on Close
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeTail:
		return "tail"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream", "":
		return ModeStream, nil
	case "tail":
		return ModeTail, nil
	default:
		return 0, fmt.Errorf("invalid trace mode: %q (expected: stream|tail)", s)
	}
}

type Config struct {
	Level Level
	Mode  Mode
	// Format defaults to NDJSON for .ndjson and .jsonl outputs, text otherwise.
	Format Format
	// Output wins over OutputPath; "-" or "" means stderr.
	Output     io.Writer
	OutputPath string
	// TailSize is the number of events ModeTail keeps (default 4096).
	TailSize int
}

// New builds the tracer cfg describes. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			format = FormatNDJSON
		}
	}
	switch cfg.Mode {
	case ModeStream, ModeTail:
	default:
		return nil, fmt.Errorf("unknown trace mode %v", cfg.Mode)
	}
	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Mode == ModeTail {
		return NewTail(w, cfg.TailSize, cfg.Level, format), nil
	}
	return NewStream(w, cfg.Level, format), nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
