package decl

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"emerge/internal/source"
)

// locator recovers byte spans for decoded values by searching the raw file
// text in document order. Decoders for both formats drop positions.
type locator struct {
	file    source.FileID
	content []byte
	cursor  int
}

// find returns the span of the first whole-word occurrence of word at or
// after from. A zero-width span at from is returned when there is none.
func (l *locator) find(from int, word string) source.Span {
	from = min(max(from, 0), len(l.content))
	if word != "" {
		needle := []byte(word)
		for off := from; off <= len(l.content); {
			i := bytes.Index(l.content[off:], needle)
			if i < 0 {
				break
			}
			start := off + i
			end := start + len(needle)
			if l.boundary(start, end) {
				return l.span(start, end)
			}
			off = start + 1
		}
	}
	return l.span(from, from)
}

func (l *locator) boundary(start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRune(l.content[:start])
		if isIdentRune(r, false) {
			return false
		}
	}
	if end < len(l.content) {
		r, _ := utf8.DecodeRune(l.content[end:])
		if isIdentRune(r, false) {
			return false
		}
	}
	return true
}

func (l *locator) span(start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("span start overflow: %w", err))
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("span end overflow: %w", err))
	}
	return source.Span{File: l.file, Start: s, End: e}
}

// anchor finds word from the cursor and moves the cursor past it.
func (l *locator) anchor(word string) source.Span {
	sp := l.find(l.cursor, word)
	l.cursor = int(sp.End)
	return sp
}

type builder struct {
	loc locator
}

func (b *builder) unit(doc *unitDoc) (*Unit, error) {
	unit := &Unit{Package: normalizeIdent(doc.Package)}
	for i := range doc.Types {
		t, err := b.baseType(&doc.Types[i])
		if err != nil {
			return nil, err
		}
		unit.Types = append(unit.Types, t)
	}
	return unit, nil
}

func (b *builder) baseType(doc *typeDoc) (*BaseTypeDecl, error) {
	name := normalizeIdent(doc.Name)
	if name == "" {
		return nil, fmt.Errorf("type without a name")
	}
	t := &BaseTypeDecl{Name: name, Span: b.loc.anchor(name)}

	switch doc.Kind {
	case "class", "":
		t.Kind = KindClass
	case "interface":
		t.Kind = KindInterface
	default:
		return nil, fmt.Errorf("type %s: unknown kind %q", name, doc.Kind)
	}
	vis, err := parseVisibility(doc.Visibility)
	if err != nil {
		return nil, fmt.Errorf("type %s: %w", name, err)
	}
	t.Visibility = vis

	for _, tp := range doc.TypeParams {
		tpName := normalizeIdent(tp)
		t.TypeParams = append(t.TypeParams, TypeParam{Name: tpName, Span: b.loc.find(int(t.Span.End), tpName)})
	}
	from := int(t.Span.End)
	for _, st := range doc.Supertypes {
		ref, err := b.typeRef(from, st)
		if err != nil {
			return nil, fmt.Errorf("type %s: supertype: %w", name, err)
		}
		if !ref.Span.Empty() {
			from = int(ref.Span.End)
		}
		t.Supertypes = append(t.Supertypes, ref)
	}
	for i := range doc.Members {
		e, err := b.entry(&doc.Members[i])
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		t.Entries = append(t.Entries, e)
	}
	return t, nil
}

func (b *builder) typeRef(from int, text string) (*TypeRef, error) {
	if text == "" {
		return nil, nil
	}
	head := text
	if i := strings.IndexByte(text, '<'); i > 0 {
		head = text[:i]
	}
	at := b.loc.find(from, strings.TrimSpace(head))
	if !at.Empty() {
		end := int(at.Start) + len(text)
		if end <= len(b.loc.content) && string(b.loc.content[at.Start:end]) == text {
			at = b.loc.span(int(at.Start), end)
		} else {
			// written differently in the file; keep only the position
			at.End = at.Start
		}
	}
	return ParseTypeRef(text, at)
}

func (b *builder) entry(doc *entryDoc) (*Entry, error) {
	vis, err := parseVisibility(doc.Visibility)
	if err != nil {
		return nil, err
	}
	switch doc.Kind {
	case "var", "variable":
		return b.variable(doc, vis)
	case "fn", "function":
		return b.function(doc, vis)
	case "constructor":
		sp := b.loc.anchor("constructor")
		body, err := b.block(int(sp.End), doc.Body)
		if err != nil {
			return nil, err
		}
		return ConstructorEntry(&ConstructorDecl{Span: sp, Nothrow: doc.Nothrow, Visibility: vis, Body: body}), nil
	case "destructor":
		sp := b.loc.anchor("destructor")
		body, err := b.block(int(sp.End), doc.Body)
		if err != nil {
			return nil, err
		}
		return DestructorEntry(&DestructorDecl{Span: sp, Nothrow: doc.Nothrow, Body: body}), nil
	default:
		return nil, fmt.Errorf("unknown member kind %q", doc.Kind)
	}
}

func (b *builder) variable(doc *entryDoc, vis Visibility) (*Entry, error) {
	name := normalizeIdent(doc.Name)
	if name == "" {
		return nil, fmt.Errorf("member variable without a name")
	}
	sp := b.loc.anchor(name)
	typ, err := b.typeRef(int(sp.End), doc.Type)
	if err != nil {
		return nil, fmt.Errorf("member variable %s: %w", name, err)
	}
	if typ == nil {
		return nil, fmt.Errorf("member variable %s: missing type", name)
	}
	v := &MemberVariableDecl{
		Name:         name,
		Span:         sp,
		Type:         typ,
		Decorated:    doc.Decorated,
		Reassignable: doc.Reassignable,
		Visibility:   vis,
	}
	switch doc.Init {
	case "", "none":
		v.Init = InitNone
	case "ctor", "init":
		v.Init = InitCtorParam
	case "expr":
		v.Init = InitExpr
		valueType := typ
		if doc.ValueType != "" {
			if valueType, err = b.typeRef(int(sp.End), doc.ValueType); err != nil {
				return nil, fmt.Errorf("member variable %s: %w", name, err)
			}
		}
		v.InitExpr = &Expr{Span: b.loc.find(int(sp.End), doc.Value), Text: doc.Value, Type: valueType, Throws: doc.Throws}
	default:
		return nil, fmt.Errorf("member variable %s: unknown init %q", name, doc.Init)
	}
	return VariableEntry(v), nil
}

func (b *builder) function(doc *entryDoc, vis Visibility) (*Entry, error) {
	name := normalizeIdent(doc.Name)
	if name == "" {
		return nil, fmt.Errorf("member function without a name")
	}
	sp := b.loc.anchor(name)
	fn := &FunctionDecl{
		Name:       name,
		Span:       sp,
		Override:   doc.Override,
		Nothrow:    doc.Nothrow,
		External:   doc.External,
		Visibility: vis,
	}
	switch doc.Accessor {
	case "":
		fn.Accessor = AccessorNone
	case "get":
		fn.Accessor = AccessorRead
	case "set":
		fn.Accessor = AccessorWrite
	default:
		return nil, fmt.Errorf("function %s: unknown accessor %q", name, doc.Accessor)
	}
	from := int(sp.End)
	for _, p := range doc.Params {
		pName := normalizeIdent(p.Name)
		param := &Param{Name: pName, Span: b.loc.find(from, pName)}
		from = int(param.Span.End)
		ref, err := b.typeRef(from, p.Type)
		if err != nil {
			return nil, fmt.Errorf("function %s: parameter %s: %w", name, pName, err)
		}
		if ref == nil && pName != ReceiverName {
			return nil, fmt.Errorf("function %s: parameter %s has no type", name, pName)
		}
		param.Type = ref
		fn.Params = append(fn.Params, param)
	}
	ret, err := b.typeRef(int(sp.End), doc.Returns)
	if err != nil {
		return nil, fmt.Errorf("function %s: return type: %w", name, err)
	}
	fn.Return = ret
	if !doc.Abstract {
		body, err := b.block(int(sp.End), doc.Body)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		fn.Body = body
	}
	return FunctionEntry(fn), nil
}

func (b *builder) block(from int, docs []stmtDoc) (*Block, error) {
	block := &Block{}
	cursor := from
	for i := range docs {
		st, next, err := b.stmt(cursor, &docs[i])
		if err != nil {
			return nil, err
		}
		cursor = next
		block.Stmts = append(block.Stmts, st)
	}
	return block, nil
}

func (b *builder) stmt(from int, doc *stmtDoc) (*Stmt, int, error) {
	st := &Stmt{}
	anchor := doc.Member
	if anchor == "" {
		anchor = doc.Value
	}
	if anchor == "" {
		anchor = doc.Op
	}
	st.Span = b.loc.find(from, normalizeIdent(anchor))
	next := int(st.Span.End)

	value := func() (*Expr, error) {
		ref, err := b.typeRef(next, doc.Type)
		if err != nil {
			return nil, err
		}
		return &Expr{Span: b.loc.find(from, doc.Value), Text: doc.Value, Type: ref, Throws: doc.Throws}, nil
	}

	var err error
	switch doc.Op {
	case "assign", "set":
		st.Kind = StmtAssign
		st.Member = normalizeIdent(doc.Member)
		st.Value, err = value()
	case "mixin":
		st.Kind = StmtMixin
		st.Value, err = value()
		if err == nil && st.Value.Type == nil {
			err = fmt.Errorf("mixin %q has no type", doc.Value)
		}
	case "call":
		st.Kind = StmtCall
		st.Value, err = value()
	case "throw":
		st.Kind = StmtThrow
	case "return":
		st.Kind = StmtReturn
	case "if":
		st.Kind = StmtIf
		if st.Then, err = b.block(next, doc.Then); err == nil {
			st.Else, err = b.block(next, doc.Else)
		}
	case "loop", "while", "for":
		st.Kind = StmtLoop
		st.Body, err = b.block(next, doc.Body)
	default:
		err = fmt.Errorf("unknown statement %q", doc.Op)
	}
	if err != nil {
		return nil, 0, err
	}
	return st, next, nil
}

func parseVisibility(s string) (Visibility, error) {
	switch s {
	case "":
		return VisibilityDefault, nil
	case "private":
		return VisibilityPrivate, nil
	case "module":
		return VisibilityModule, nil
	case "export":
		return VisibilityExport, nil
	default:
		return VisibilityDefault, fmt.Errorf("unknown visibility %q", s)
	}
}
