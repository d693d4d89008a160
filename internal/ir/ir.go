// Package ir is the binder's output: one BaseType per bound class or
// interface, ready for code generation. Types are referenced by their
// printed form.
package ir

// Op is the operation of a constructor or destructor statement.
type Op string

const (
	OpAlloc     Op = "alloc"      // allocate the instance
	OpInit      Op = "init"       // store a parameter or initializer into a field
	OpAssign    Op = "assign"     // user assignment to a member variable
	OpMixin     Op = "mixin"      // store a mixin value into its field
	OpEval      Op = "eval"       // evaluate an expression for effect
	OpIf        Op = "if"
	OpLoop      Op = "loop"
	OpThrow     Op = "throw"
	OpReturn    Op = "return"
	OpDrop      Op = "drop"       // release a member variable's value
	OpDropMixin Op = "drop-mixin" // release a mixin's value
	OpDealloc   Op = "dealloc"
)

// NoField marks a statement that does not touch a field.
const NoField int32 = -1

// Snapshot is a whole compilation unit.
type Snapshot struct {
	Package string     `msgpack:"package"`
	Types   []BaseType `msgpack:"types"`
}

type BaseType struct {
	Name            string           `msgpack:"name"`
	Kind            string           `msgpack:"kind"`
	Visibility      string           `msgpack:"visibility"`
	TypeParams      []string         `msgpack:"type_params,omitempty"`
	Supertypes      []string         `msgpack:"supertypes,omitempty"`
	Fields          []Field          `msgpack:"fields,omitempty"`
	MemberVariables []MemberVariable `msgpack:"member_variables,omitempty"`
	OverloadGroups  []OverloadGroup  `msgpack:"overload_groups,omitempty"`
	Constructor     *Constructor     `msgpack:"constructor,omitempty"`
	Destructor      *Destructor      `msgpack:"destructor,omitempty"`
}

// Field is a storage slot; ID equals its index in BaseType.Fields.
type Field struct {
	ID   uint32 `msgpack:"id"`
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
}

// MemberVariable is accessed directly through its field.
type MemberVariable struct {
	Name       string `msgpack:"name"`
	Type       string `msgpack:"type"`
	Field      uint32 `msgpack:"field"`
	Init       string `msgpack:"init"` // "ctor", "expr" or "body"
	Visibility string `msgpack:"visibility"`
}

type OverloadGroup struct {
	Name      string     `msgpack:"name"`
	Arity     int        `msgpack:"arity"`
	Functions []Function `msgpack:"functions"`
}

// FunctionKind tells how a function came to be in an overload group.
type FunctionKind string

const (
	FunctionDeclared  FunctionKind = "declared"
	FunctionInherited FunctionKind = "inherited"
	FunctionMixin     FunctionKind = "mixin"
)

type Function struct {
	CanonicalName string       `msgpack:"canonical_name"`
	Kind          FunctionKind `msgpack:"kind"`
	DeclaredOn    string       `msgpack:"declared_on"`
	Params        []Param      `msgpack:"params"`
	Returns       string       `msgpack:"returns"`
	Receiver      bool         `msgpack:"receiver"`
	Virtual       bool         `msgpack:"virtual"`
	Abstract      bool         `msgpack:"abstract"`
	Nothrow       bool         `msgpack:"nothrow"`
	Accessor      string       `msgpack:"accessor,omitempty"`
	Visibility    string       `msgpack:"visibility"`
	Overrides     []string     `msgpack:"overrides,omitempty"`
	// MixinField is the field a mixin-backed function delegates through.
	MixinField    int32        `msgpack:"mixin_field"`
	Body          []Stmt       `msgpack:"body,omitempty"`
}

type Param struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
}

// Stmt is one step of a constructor, destructor or function body.
type Stmt struct {
	Op    Op     `msgpack:"op"`
	Field int32  `msgpack:"field"`
	Value string `msgpack:"value,omitempty"`
	Then  []Stmt `msgpack:"then,omitempty"`
	Else  []Stmt `msgpack:"else,omitempty"`
	Body  []Stmt `msgpack:"body,omitempty"`
}

type Constructor struct {
	Default    bool    `msgpack:"default"`
	Visibility string  `msgpack:"visibility"`
	Params     []Param `msgpack:"params"`
	Body       []Stmt  `msgpack:"body"`
}

type Destructor struct {
	Default bool   `msgpack:"default"`
	Nothrow bool   `msgpack:"nothrow"`
	Body    []Stmt `msgpack:"body"`
}
