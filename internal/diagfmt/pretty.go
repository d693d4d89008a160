package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"emerge/internal/diag"
	"emerge/internal/source"
)

type palette struct {
	err, warn, info, note, code, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgCyan),
		code:   color.New(color.Bold),
		path:   color.New(color.FgBlue),
		gutter: color.New(color.FgBlue, color.Bold),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty prints every diagnostic of bag (sort it first) as
//
//	error[BND3001]: message
//	  --> path:line:col
//	   |
//	 3 | source line
//	   |     ^^^^
//
// followed by notes and a summary line.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	errs, warns := 0, 0
	for i := range bag.Items() {
		d := &bag.Items()[i]
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
		prettyOne(w, p, d, fs, opts)
	}
	if errs+warns > 0 {
		fmt.Fprintln(w, summary(errs, warns))
	}
}

func prettyOne(w io.Writer, p palette, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	fmt.Fprintf(w, "%s%s: %s\n",
		p.severity(d.Severity).Sprint(d.Severity.Label()),
		p.code.Sprintf("[%s]", d.Code.ID()),
		d.Message)
	if !located(d, fs) {
		if d.Code == diag.ObsTimings && opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("= note:"), n.Msg)
			}
		}
		return
	}

	f := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	line := f.Line(start.Line)
	num := strconv.FormatUint(uint64(start.Line), 10)
	pad := strings.Repeat(" ", len(num))

	fmt.Fprintf(w, "%s%s %s\n", pad, p.gutter.Sprint("-->"), p.path.Sprintf("%s:%d:%d", formatPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col))
	fmt.Fprintf(w, "%s %s\n", pad, p.gutter.Sprint("|"))
	fmt.Fprintf(w, "%s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), clip(line, opts.Width))
	fmt.Fprintf(w, "%s %s %s\n", pad, p.gutter.Sprint("|"), p.caret.Sprint(underline(line, start, end)))

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if nf := fs.Get(n.Span.File); nf != nil {
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "%s %s %s: %s\n", pad, p.note.Sprint("= note:"),
				p.path.Sprintf("%s:%d:%d", formatPath(nf, opts.PathMode, opts.BaseDir), ns.Line, ns.Col), n.Msg)
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n", pad, p.note.Sprint("= note:"), n.Msg)
	}
}

// underline places carets under the columns start..end of line, measured in
// display cells. A span that continues past the line is underlined to its end.
func underline(line string, start, end source.LineCol) string {
	lead := prefixByBytes(line, int(start.Col)-1)
	var marked string
	if end.Line == start.Line && end.Col > start.Col {
		marked = prefixByBytes(line[len(lead):], int(end.Col-start.Col))
	} else if end.Line > start.Line {
		marked = line[len(lead):]
	}
	width := max(1, runewidth.StringWidth(marked))
	return indentFor(lead) + strings.Repeat("^", width)
}

func prefixByBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n >= len(s) {
		return s
	}
	return s[:n]
}

// indentFor keeps tabs so the carets line up with the printed source line.
func indentFor(lead string) string {
	var b strings.Builder
	for _, r := range lead {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func clip(line string, width int) string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}

func summary(errs, warns int) string {
	plural := func(n int, word string) string {
		if n == 1 {
			return "1 " + word
		}
		return fmt.Sprintf("%d %ss", n, word)
	}
	switch {
	case errs > 0 && warns > 0:
		return plural(errs, "error") + ", " + plural(warns, "warning")
	case errs > 0:
		return plural(errs, "error")
	default:
		return plural(warns, "warning")
	}
}

// Short prints one line per diagnostic: "severity CODE path:line:col message".
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) {
	var items []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Code != diag.ObsTimings {
			items = append(items, d)
		}
	}
	if out := diag.FormatLines(items, fs, includeNotes); out != "" {
		fmt.Fprintln(w, out)
	}
}
