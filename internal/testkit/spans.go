// Package testkit holds checks shared by tests of packages that consume the
// declaration tree.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"emerge/internal/decl"
	"emerge/internal/source"
)

// CheckSpanInvariants verifies the spans a loader attached to unit:
// 1) every span points into sf and lies within its content
// 2) anchored spans (types and entries) never move backwards
// 3) a non-empty anchored span covers exactly the declared word
func CheckSpanInvariants(unit *decl.Unit, sf *source.File) error {
	if unit == nil || sf == nil {
		return fmt.Errorf("nil unit or file")
	}
	if unit.File != sf.ID {
		return fmt.Errorf("unit belongs to file %d, want %d", unit.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	inFile := func(what string, sp source.Span) error {
		if sp.File != sf.ID {
			return fmt.Errorf("%s: span file mismatch: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.Start > sp.End || sp.End > lenContent {
			return fmt.Errorf("%s: span %v outside content of %d bytes", what, sp, lenContent)
		}
		return nil
	}
	var last uint32
	anchored := func(what, word string, sp source.Span) error {
		if err := inFile(what, sp); err != nil {
			return err
		}
		if sp.Start < last {
			return fmt.Errorf("%s: span %v starts before the previous anchor at %d", what, sp, last)
		}
		last = sp.Start
		if !sp.Empty() && string(sf.Content[sp.Start:sp.End]) != word {
			return fmt.Errorf("%s: span %v covers %q", what, sp, sf.Content[sp.Start:sp.End])
		}
		return nil
	}

	for _, t := range unit.Types {
		if err := anchored("type "+t.Name, t.Name, t.Span); err != nil {
			return err
		}
		for _, tp := range t.TypeParams {
			if err := inFile("type parameter "+tp.Name, tp.Span); err != nil {
				return err
			}
		}
		for _, ref := range t.Supertypes {
			if err := checkRef("supertype of "+t.Name, ref, inFile); err != nil {
				return err
			}
		}
		for _, e := range t.Entries {
			if err := checkEntry(t.Name, e, anchored, inFile); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkEntry(owner string, e *decl.Entry, anchored func(what, word string, sp source.Span) error, inFile func(string, source.Span) error) error {
	switch e.Kind {
	case decl.EntryMemberVariable:
		v := e.Variable
		if err := anchored(owner+"."+v.Name, v.Name, v.Span); err != nil {
			return err
		}
		if err := checkRef(owner+"."+v.Name, v.Type, inFile); err != nil {
			return err
		}
		if v.InitExpr != nil {
			return inFile(owner+"."+v.Name+" initializer", v.InitExpr.Span)
		}
	case decl.EntryMemberFunction:
		f := e.Function
		if err := anchored(owner+"."+f.Name, f.Name, f.Span); err != nil {
			return err
		}
		for _, p := range f.Params {
			if err := inFile(owner+"."+f.Name+" parameter "+p.Name, p.Span); err != nil {
				return err
			}
			if err := checkRef(owner+"."+f.Name, p.Type, inFile); err != nil {
				return err
			}
		}
		if err := checkRef(owner+"."+f.Name+" return", f.Return, inFile); err != nil {
			return err
		}
		return checkBlock(owner+"."+f.Name, f.Body, inFile)
	case decl.EntryConstructor:
		if err := anchored(owner+" constructor", "constructor", e.Constructor.Span); err != nil {
			return err
		}
		return checkBlock(owner+" constructor", e.Constructor.Body, inFile)
	case decl.EntryDestructor:
		if err := anchored(owner+" destructor", "destructor", e.Destructor.Span); err != nil {
			return err
		}
		return checkBlock(owner+" destructor", e.Destructor.Body, inFile)
	default:
		return fmt.Errorf("%s: unknown entry kind %d", owner, e.Kind)
	}
	return nil
}

func checkRef(what string, ref *decl.TypeRef, inFile func(string, source.Span) error) error {
	if ref == nil {
		return nil
	}
	if err := inFile(what+" "+ref.String(), ref.Span); err != nil {
		return err
	}
	for _, a := range ref.Args {
		if err := checkRef(what, a, inFile); err != nil {
			return err
		}
	}
	return nil
}

func checkBlock(what string, b *decl.Block, inFile func(string, source.Span) error) error {
	if b == nil {
		return nil
	}
	for _, st := range b.Stmts {
		if err := inFile(what+" "+st.Kind.String(), st.Span); err != nil {
			return err
		}
		if st.Value != nil {
			if err := inFile(what+" "+st.Kind.String()+" value", st.Value.Span); err != nil {
				return err
			}
		}
		for _, nested := range []*decl.Block{st.Then, st.Else, st.Body} {
			if err := checkBlock(what, nested, inFile); err != nil {
				return err
			}
		}
	}
	return nil
}
