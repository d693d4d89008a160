package decl

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"emerge/internal/source"
)

// ParseTypeRef parses "Name" or "Name<Arg, ...>". at is the span of the
// whole text inside its file; argument spans are derived from it.
func ParseTypeRef(text string, at source.Span) (*TypeRef, error) {
	p := refParser{text: text, at: at}
	p.skipSpace()
	ref, err := p.ref()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.text) {
		return nil, fmt.Errorf("unexpected %q at offset %d in type %q", p.text[p.pos:], p.pos, text)
	}
	return ref, nil
}

type refParser struct {
	text string
	pos  int
	at   source.Span
}

func (p *refParser) span(start, end int) source.Span {
	if p.at.Empty() {
		return p.at
	}
	return source.Span{File: p.at.File, Start: p.at.Start + uint32(start), End: p.at.Start + uint32(end)} // #nosec G115 -- offsets bounded by the file length
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.text) && (p.text[p.pos] == ' ' || p.text[p.pos] == '\t') {
		p.pos++
	}
}

func (p *refParser) ref() (*TypeRef, error) {
	start := p.pos
	for p.pos < len(p.text) {
		r, size := utf8.DecodeRuneInString(p.text[p.pos:])
		if !isIdentRune(r, p.pos == start) {
			break
		}
		p.pos += size
	}
	if p.pos == start {
		return nil, fmt.Errorf("expected type name at offset %d in %q", start, p.text)
	}
	ref := &TypeRef{Name: normalizeIdent(p.text[start:p.pos])}
	p.skipSpace()
	if p.pos < len(p.text) && p.text[p.pos] == '<' {
		p.pos++
		for {
			p.skipSpace()
			arg, err := p.ref()
			if err != nil {
				return nil, err
			}
			ref.Args = append(ref.Args, arg)
			p.skipSpace()
			if p.pos >= len(p.text) {
				return nil, fmt.Errorf("unclosed '<' in type %q", p.text)
			}
			if p.text[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.text[p.pos] == '>' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("unexpected %q in type %q", p.text[p.pos], p.text)
		}
	}
	ref.Span = p.span(start, p.pos)
	return ref, nil
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}
