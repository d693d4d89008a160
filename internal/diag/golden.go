package diag

import (
	"fmt"
	"sort"
	"strings"

	"emerge/internal/source"
)

type lineDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatLines renders diagnostics one per line as
// "severity CODE path:line:col message", sorted by location.
// Tests compare against this form.
func FormatLines(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]lineDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendDiagnostic(rendered, &diags[i], fs, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []lineDiagnostic, d *Diagnostic, fs *source.FileSet, includeNotes bool) []lineDiagnostic {
	path, start := locate(fs, d.Primary)
	out = append(out, lineDiagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Path:     path,
		Line:     start.Line,
		Column:   start.Col,
		Message:  sanitizeMessage(d.Message),
	})
	if includeNotes {
		for _, note := range d.Notes {
			npath, nstart := locate(fs, note.Span)
			out = append(out, lineDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Path:     npath,
				Line:     nstart.Line,
				Column:   nstart.Col,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}
	return out
}

func locate(fs *source.FileSet, span source.Span) (string, source.LineCol) {
	if fs == nil {
		return fmt.Sprintf("file%d", span.File), source.LineCol{Line: 1, Col: span.Start + 1}
	}
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>", source.LineCol{Line: 1, Col: 1}
	}
	start, _ := fs.Resolve(span)
	return f.Path, start
}

func sanitizeMessage(msg string) string {
	return strings.ReplaceAll(msg, "\n", " ")
}
