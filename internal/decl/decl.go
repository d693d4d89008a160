// Package decl is the declaration tree consumed by the binder: one Unit per
// declaration file, one BaseTypeDecl per class or interface.
package decl

import (
	"strings"

	"emerge/internal/source"
)

// Kind distinguishes classes from interfaces.
type Kind uint8

const (
	KindClass Kind = iota + 1
	KindInterface
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	default:
		return "unknown"
	}
}

type Visibility uint8

const (
	VisibilityDefault Visibility = iota
	VisibilityPrivate
	VisibilityModule
	VisibilityExport
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityModule:
		return "module"
	case VisibilityExport:
		return "export"
	default:
		return ""
	}
}

// Resolved replaces an unspecified visibility with VisibilityModule.
func (v Visibility) Resolved() Visibility {
	if v == VisibilityDefault {
		return VisibilityModule
	}
	return v
}

// BroaderThan orders private < module < export.
func (v Visibility) BroaderThan(o Visibility) bool {
	return v.Resolved() > o.Resolved()
}

// AtMost caps v at limit.
func (v Visibility) AtMost(limit Visibility) Visibility {
	if v.BroaderThan(limit) {
		return limit.Resolved()
	}
	return v.Resolved()
}

// Unit is the content of one declaration file.
type Unit struct {
	File    source.FileID
	Package string
	Types   []*BaseTypeDecl
}

// TypeRef is a type as written: a name with optional type arguments.
type TypeRef struct {
	Name string
	Args []*TypeRef
	Span source.Span
}

func (r *TypeRef) String() string {
	if r == nil {
		return "<nil>"
	}
	if len(r.Args) == 0 {
		return r.Name
	}
	parts := make([]string, len(r.Args))
	for i, a := range r.Args {
		parts[i] = a.String()
	}
	return r.Name + "<" + strings.Join(parts, ", ") + ">"
}

type TypeParam struct {
	Name string
	Span source.Span
}

// BaseTypeDecl is a class or interface as written.
type BaseTypeDecl struct {
	Name       string
	Span       source.Span
	Kind       Kind
	Visibility Visibility
	TypeParams []TypeParam
	Supertypes []*TypeRef
	Entries    []*Entry
}

// EntryKind is the closed set of things a base type body can contain.
type EntryKind uint8

const (
	EntryMemberVariable EntryKind = iota + 1
	EntryMemberFunction
	EntryConstructor
	EntryDestructor
)

func (k EntryKind) String() string {
	switch k {
	case EntryMemberVariable:
		return "member variable"
	case EntryMemberFunction:
		return "member function"
	case EntryConstructor:
		return "constructor"
	case EntryDestructor:
		return "destructor"
	default:
		return "unknown entry"
	}
}

// Entry is a tagged union; exactly the field matching Kind is set.
type Entry struct {
	Kind        EntryKind
	Variable    *MemberVariableDecl
	Function    *FunctionDecl
	Constructor *ConstructorDecl
	Destructor  *DestructorDecl
}

// Span is the span of whichever declaration the entry holds.
func (e *Entry) Span() source.Span {
	switch e.Kind {
	case EntryMemberVariable:
		return e.Variable.Span
	case EntryMemberFunction:
		return e.Function.Span
	case EntryConstructor:
		return e.Constructor.Span
	case EntryDestructor:
		return e.Destructor.Span
	}
	return source.Span{}
}

func VariableEntry(v *MemberVariableDecl) *Entry {
	return &Entry{Kind: EntryMemberVariable, Variable: v}
}

func FunctionEntry(f *FunctionDecl) *Entry {
	return &Entry{Kind: EntryMemberFunction, Function: f}
}

func ConstructorEntry(c *ConstructorDecl) *Entry {
	return &Entry{Kind: EntryConstructor, Constructor: c}
}

func DestructorEntry(d *DestructorDecl) *Entry {
	return &Entry{Kind: EntryDestructor, Destructor: d}
}

// InitKind says how a member variable receives its first value.
type InitKind uint8

const (
	InitNone      InitKind = iota // assigned in the constructor block
	InitCtorParam                 // constructor parameter
	InitExpr                      // initializer expression
)

type MemberVariableDecl struct {
	Name         string
	Span         source.Span
	Type         *TypeRef
	Init         InitKind
	InitExpr     *Expr
	Decorated    bool
	Reassignable bool
	Visibility   Visibility
}

// AccessorKind marks a member function as a property accessor.
type AccessorKind uint8

const (
	AccessorNone AccessorKind = iota
	AccessorRead
	AccessorWrite
)

func (k AccessorKind) String() string {
	switch k {
	case AccessorRead:
		return "get"
	case AccessorWrite:
		return "set"
	default:
		return "none"
	}
}

// ReceiverName is the parameter name that marks a function as a member function.
const ReceiverName = "self"

type Param struct {
	Name string
	Span source.Span
	// Type may be nil only on the receiver; it then means the declaring type.
	Type *TypeRef
}

type FunctionDecl struct {
	Name       string
	Span       source.Span
	Params     []*Param
	Return     *TypeRef // nil means Unit
	Override   bool
	Nothrow    bool
	External   bool
	Accessor   AccessorKind
	Visibility Visibility
	Body       *Block // nil when the function has no body
}

// HasReceiver reports whether the first parameter is the receiver.
func (f *FunctionDecl) HasReceiver() bool {
	return len(f.Params) > 0 && f.Params[0].Name == ReceiverName
}

type ConstructorDecl struct {
	Span       source.Span
	Nothrow    bool
	Visibility Visibility
	Body       *Block
}

type DestructorDecl struct {
	Span    source.Span
	Nothrow bool
	Body    *Block
}

// Block is a sequence of statements.
type Block struct {
	Stmts []*Stmt
}

type StmtKind uint8

const (
	StmtAssign StmtKind = iota + 1 // member = value
	StmtMixin                      // mixin value
	StmtIf                         // if { Then } else { Else }
	StmtLoop                       // while/for { Body }
	StmtCall                       // expression statement
	StmtThrow
	StmtReturn
)

func (k StmtKind) String() string {
	switch k {
	case StmtAssign:
		return "assign"
	case StmtMixin:
		return "mixin"
	case StmtIf:
		return "if"
	case StmtLoop:
		return "loop"
	case StmtCall:
		return "call"
	case StmtThrow:
		return "throw"
	case StmtReturn:
		return "return"
	default:
		return "unknown"
	}
}

type Stmt struct {
	Kind   StmtKind
	Span   source.Span
	Member string // StmtAssign target
	Value  *Expr
	Then   *Block
	Else   *Block
	Body   *Block
}

// Expr is an opaque, already type-checked expression.
type Expr struct {
	Span   source.Span
	Text   string
	Type   *TypeRef
	Throws bool
}
