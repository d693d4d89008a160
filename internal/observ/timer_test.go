package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "2 files")
	tm.Measure("phase1", func() {})
	tm.End(42, "ignored")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Note != "2 files" || report.Phases[1].Name != "phase1" {
		t.Fatalf("unexpected report %+v", report)
	}
	if s := tm.Summary(); !strings.Contains(s, "// 2 files") || !strings.Contains(s, "total") {
		t.Fatalf("unexpected summary:\n%s", s)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Measure("x", func() {})
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Fatalf("nil timer must report nothing")
	}
}
