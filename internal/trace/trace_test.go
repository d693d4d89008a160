package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelAllowsScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeType, false},
		{LevelDetail, ScopeType, true},
		{LevelDetail, ScopeStep, false},
		{LevelDebug, ScopeStep, true},
	}
	for _, tt := range tests {
		if got := tt.level.Allows(tt.scope); got != tt.want {
			t.Errorf("%s/%s: got %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	if l, err := ParseLevel(" Detail "); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %s, %v", l, err)
	}
	if _, err := ParseLevel("error"); err == nil {
		t.Fatalf("unknown level accepted")
	}
	if m, err := ParseMode("TAIL"); err != nil || m != ModeTail {
		t.Fatalf("ParseMode = %s, %v", m, err)
	}
	if _, err := ParseMode("ring"); err == nil {
		t.Fatalf("unknown mode accepted")
	}
}

func TestTailKeepsLastEvents(t *testing.T) {
	var out bytes.Buffer
	tail := NewTail(&out, 2, LevelDebug, FormatText)
	span := Begin(tail, Site{Scope: ScopePhase, Name: "phase1"}, 0)
	Point(tail, Site{Scope: ScopeStep, Name: "cycle", Type: "p.A"}, "A -> A", span.ID())
	span.End("3 types")

	events := tail.Events()
	if len(events) != 2 {
		t.Fatalf("a tail of 2 kept %d events", len(events))
	}
	if events[0].Kind != KindPoint || events[1].Kind != KindEnd {
		t.Fatalf("kinds = %s, %s", events[0].Kind, events[1].Kind)
	}
	if events[0].Seq != 2 || events[0].Parent != span.ID() {
		t.Fatalf("point = %+v", events[0])
	}
	if out.Len() != 0 {
		t.Fatalf("tail wrote before Close:\n%s", out.String())
	}
	if err := tail.Close(); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if strings.Contains(text, "> phase1") || !strings.Contains(text, "* cycle p.A: A -> A") || !strings.Contains(text, "< phase1: 3 types") {
		t.Fatalf("tail output:\n%s", text)
	}
}

func TestStreamFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	st := NewStream(&buf, LevelPhase, FormatText)
	Begin(st, Site{Scope: ScopePhase, Name: "phase2"}, 0).End("done")
	Begin(st, Site{Scope: ScopeType, Name: "phase2", Type: "p.Foo"}, 0).End("")

	out := buf.String()
	if !strings.Contains(out, "> phase2") || !strings.Contains(out, "< phase2: done") {
		t.Fatalf("missing phase events:\n%s", out)
	}
	if strings.Contains(out, "p.Foo") {
		t.Fatalf("type scope leaked at phase level:\n%s", out)
	}
}

func TestNDJSONCarriesSubject(t *testing.T) {
	ev := Event{Site: Site{Scope: ScopeStep, Name: "override", Type: "p.Square", Member: "area"}, Kind: KindPoint}
	data := FormatEvent(&ev, FormatNDJSON)
	for _, want := range []string{`"kind":"point"`, `"type":"p.Square"`, `"member":"area"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Fatalf("%s lacks %s", data, want)
		}
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Fatalf("ndjson line not terminated")
	}
}

func TestSubject(t *testing.T) {
	for _, tt := range []struct {
		site Site
		want string
	}{
		{Site{}, ""},
		{Site{Type: "p.T"}, "p.T"},
		{Site{Type: "p.T", Member: "f"}, "p.T.f"},
	} {
		if got := tt.site.Subject(); got != tt.want {
			t.Errorf("Subject(%+v) = %q, want %q", tt.site, got, tt.want)
		}
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop by default")
	}
	if SpanFrom(context.Background()) != 0 {
		t.Fatalf("empty context carries a span")
	}
	tail := NewTail(nil, 4, LevelDebug, FormatText)
	ctx := WithSpan(WithTracer(context.Background(), tail), 7)
	if FromContext(ctx) != Tracer(tail) {
		t.Fatalf("tracer not propagated")
	}
	Begin(FromContext(ctx), Site{Scope: ScopeType, Name: "phase1", Type: "p.Foo"}, SpanFrom(ctx)).End("")
	if events := tail.Events(); len(events) != 2 || events[0].Parent != 7 {
		t.Fatalf("parent not taken from context: %+v", events)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	if Records(tr, ScopeDriver) {
		t.Fatalf("Nop records")
	}
}
