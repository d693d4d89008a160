package ui

import (
	"strings"
	"testing"

	"emerge/internal/driver"
)

func TestProgressFollowsEvents(t *testing.T) {
	files := []string{"a/shapes.toml", "b/broken.toml"}
	m := NewProgressModel("check", files, nil).(*progressModel)

	steps := []driver.Event{
		{File: "a/shapes.toml", Stage: driver.StageParse, Status: driver.StatusWorking},
		{File: "b/broken.toml", Stage: driver.StageParse, Status: driver.StatusError},
		{Stage: driver.StageBind, Status: driver.StatusWorking},
		{File: "a/shapes.toml", Stage: driver.StageBind, Status: driver.StatusWorking},
		{File: "unknown.toml", Stage: driver.StageBind, Status: driver.StatusWorking},
	}
	for _, ev := range steps {
		m.Update(eventMsg(ev))
	}
	if got := m.items[0].status; got != "binding" {
		t.Fatalf("shapes status = %q", got)
	}
	if got := m.items[1].status; got != "error" {
		t.Fatalf("broken status = %q", got)
	}
	if m.stageLabel != "binding" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	if got, want := m.percent(), (0.6+1.0)/2; got != want {
		t.Fatalf("percent = %v, want %v", got, want)
	}

	view := m.View()
	for _, want := range []string{"check (binding)", "a/shapes.toml", "error"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}

	m.Update(doneMsg{})
	if !m.done || !strings.HasPrefix(stripped(m.View()), "done: check") {
		t.Fatalf("finished view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.toml", 20, "short.toml"},
		{"very/long/path/name.toml", 10, "very/lo..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

// stripped drops ANSI escape sequences.
func stripped(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
