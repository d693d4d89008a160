package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

// FormatEvent renders one event as a line.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Seq       uint64  `json:"seq"`
	Kind      string  `json:"kind"`
	Scope     string  `json:"scope"`
	Name      string  `json:"name"`
	Type      string  `json:"type,omitempty"`
	Member    string  `json:"member,omitempty"`
	Span      uint64  `json:"span"`
	Parent    uint64  `json:"parent,omitempty"`
	Detail    string  `json:"detail,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Name:      ev.Name,
		Type:      ev.Type,
		Member:    ev.Member,
		Span:      ev.Span,
		Parent:    ev.Parent,
		Detail:    ev.Detail,
		ElapsedMS: float64(ev.Elapsed.Microseconds()) / 1000,
	})
	if err != nil {
		return []byte(fmt.Sprintf("{\"error\":%q}\n", err.Error()))
	}
	return append(data, '\n')
}

// formatText renders "seq scope > name subject: detail (elapsed)", with
// '>' for begin, '<' for end and '*' for a point, indented by scope.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%5d %-6s ", ev.Seq, ev.Scope)
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}
	switch ev.Kind {
	case KindBegin:
		sb.WriteString("> ")
	case KindEnd:
		sb.WriteString("< ")
	default:
		sb.WriteString("* ")
	}
	sb.WriteString(ev.Name)
	if subject := ev.Subject(); subject != "" {
		sb.WriteString(" " + subject)
	}
	if ev.Detail != "" {
		sb.WriteString(": " + ev.Detail)
	}
	if ev.Kind == KindEnd {
		fmt.Fprintf(&sb, " (%s)", ev.Elapsed.Round(time.Microsecond))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
