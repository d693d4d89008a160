package ir

import (
	"fmt"
	"io"
	"strings"
)

// Printer writes IR in a line-oriented text form for inspection and tests.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Dump writes the whole snapshot.
func Dump(w io.Writer, s *Snapshot) error {
	p := NewPrinter(w)
	return p.PrintSnapshot(s)
}

// Sprint returns the text form of a single base type.
func Sprint(t *BaseType) string {
	var sb strings.Builder
	p := NewPrinter(&sb)
	_ = p.PrintBaseType(t)
	return sb.String()
}

func (p *Printer) PrintSnapshot(s *Snapshot) error {
	if s.Package != "" {
		p.line("package %s", s.Package)
		p.line("")
	}
	for i := range s.Types {
		if i > 0 {
			p.line("")
		}
		if err := p.PrintBaseType(&s.Types[i]); err != nil {
			return err
		}
	}
	return p.err
}

func (p *Printer) PrintBaseType(t *BaseType) error {
	head := visibilityMark(t.Visibility) + t.Kind + " " + t.Name
	if len(t.TypeParams) > 0 {
		head += "<" + strings.Join(t.TypeParams, ", ") + ">"
	}
	if len(t.Supertypes) > 0 {
		head += " : " + strings.Join(t.Supertypes, ", ")
	}
	p.line("%s", head)
	p.indent++
	defer func() { p.indent-- }()

	for _, f := range t.Fields {
		p.line("field #%d %s: %s", f.ID, f.Name, f.Type)
	}
	for _, v := range t.MemberVariables {
		p.line("%svar %s: %s = field #%d (%s)", visibilityMark(v.Visibility), v.Name, v.Type, v.Field, v.Init)
	}
	for _, g := range t.OverloadGroups {
		p.line("group %s/%d", g.Name, g.Arity)
		p.indent++
		for i := range g.Functions {
			p.printFunction(&g.Functions[i])
		}
		p.indent--
	}
	if c := t.Constructor; c != nil {
		p.line("%s%sconstructor(%s)", visibilityMark(c.Visibility), defaultMark(c.Default), formatParams(c.Params))
		p.printBlock(c.Body)
	}
	if d := t.Destructor; d != nil {
		attrs := ""
		if d.Nothrow {
			attrs = " nothrow"
		}
		p.line("%sdestructor%s", defaultMark(d.Default), attrs)
		p.printBlock(d.Body)
	}
	return p.err
}

func (p *Printer) printFunction(f *Function) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %sfn %s(%s) -> %s", f.Kind, visibilityMark(f.Visibility), f.CanonicalName, formatParams(f.Params), f.Returns)
	for _, flag := range []struct {
		on   bool
		name string
	}{
		{f.Virtual, "virtual"},
		{f.Abstract, "abstract"},
		{f.Nothrow, "nothrow"},
	} {
		if flag.on {
			sb.WriteString(" " + flag.name)
		}
	}
	if f.Accessor != "" {
		sb.WriteString(" accessor=" + f.Accessor)
	}
	if f.DeclaredOn != "" && f.Kind != FunctionDeclared {
		sb.WriteString(" from " + f.DeclaredOn)
	}
	if len(f.Overrides) > 0 {
		sb.WriteString(" overrides " + strings.Join(f.Overrides, ", "))
	}
	if f.MixinField != NoField {
		fmt.Fprintf(&sb, " via #%d", f.MixinField)
	}
	p.line("%s", sb.String())
	p.printBlock(f.Body)
}

func (p *Printer) printBlock(stmts []Stmt) {
	p.indent++
	defer func() { p.indent-- }()
	for i := range stmts {
		p.printStmt(&stmts[i])
	}
}

func (p *Printer) printStmt(s *Stmt) {
	text := string(s.Op)
	if s.Field != NoField {
		text += fmt.Sprintf(" #%d", s.Field)
	}
	if s.Value != "" {
		text += " " + s.Value
	}
	p.line("%s", text)
	switch s.Op {
	case OpIf:
		p.printBlock(s.Then)
		if len(s.Else) > 0 {
			p.line("else")
			p.printBlock(s.Else)
		}
	case OpLoop:
		p.printBlock(s.Body)
	}
}

func (p *Printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	if format == "" {
		_, p.err = io.WriteString(p.w, "\n")
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func formatParams(ps []Param) string {
	parts := make([]string, len(ps))
	for i, prm := range ps {
		parts[i] = prm.Name + ": " + prm.Type
	}
	return strings.Join(parts, ", ")
}

func defaultMark(isDefault bool) string {
	if isDefault {
		return "default "
	}
	return ""
}

// visibilityMark prints private and export; module is the unmarked default.
func visibilityMark(v string) string {
	if v == "" || v == "module" {
		return ""
	}
	return v + " "
}
