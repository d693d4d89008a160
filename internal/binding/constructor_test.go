package binding

import (
	"strings"
	"testing"

	"emerge/internal/diag"
)

const pointVars = `
  [[type.member]]
  kind = "var"
  name = "x"
  type = "S32"
  init = "ctor"
`

func pointWith(members string) string {
	return `
package = "ctor"

[[type]]
name = "Point"
kind = "class"
` + pointVars + members
}

func TestDefaultConstructorInitializesEverything(t *testing.T) {
	f := bindTOML(t, pointWith(`
  [[type.member]]
  kind = "var"
  name = "y"
  type = "S32"
  init = "expr"
  value = "0"
`))
	f.requireClean(t)
	ctor := f.typ(t, "Point").Constructor()
	params := ctor.Params()
	if !ctor.IsDefault() || len(params) != 1 || params[0].Name() != "x" {
		t.Fatalf("constructor params = %v", params)
	}
}

func TestUninitializedVariableReportedOnce(t *testing.T) {
	f := bindTOML(t, pointWith(`
  [[type.member]]
  kind = "var"
  name = "y"
  type = "S32"
`))
	f.requireOnly(t, diag.BndMemberVariableNotInitialized)
	if msg := f.messages(diag.BndMemberVariableNotInitialized)[0]; !strings.Contains(msg, " y ") {
		t.Fatalf("diagnostic does not name y: %q", msg)
	}
}

func assign(member, value string) string {
	return `
    [[type.member.body]]
    op = "assign"
    member = "` + member + `"
    value = "` + value + `"
    type = "S32"
`
}

func TestConstructorFlow(t *testing.T) {
	const yVar = `
  [[type.member]]
  kind = "var"
  name = "y"
  type = "S32"
`
	tests := []struct {
		name string
		body string
		want []diag.Code
	}{
		{
			name: "assigned in body",
			body: assign("y", "1"),
		},
		{
			name: "both branches",
			body: `
    [[type.member.body]]
    op = "if"

      [[type.member.body.then]]
      op = "assign"
      member = "y"
      value = "1"
      type = "S32"

      [[type.member.body.else]]
      op = "assign"
      member = "y"
      value = "2"
      type = "S32"
`,
		},
		{
			name: "one branch",
			body: `
    [[type.member.body]]
    op = "if"

      [[type.member.body.then]]
      op = "assign"
      member = "y"
      value = "1"
      type = "S32"
`,
			want: []diag.Code{diag.BndMemberVariableNotInitialized},
		},
		{
			name: "other branch throws",
			body: `
    [[type.member.body]]
    op = "if"

      [[type.member.body.then]]
      op = "assign"
      member = "y"
      value = "1"
      type = "S32"

      [[type.member.body.else]]
      op = "throw"
`,
		},
		{
			name: "early return",
			body: `
    [[type.member.body]]
    op = "if"

      [[type.member.body.then]]
      op = "return"
` + assign("y", "1"),
			want: []diag.Code{diag.BndMemberVariableNotInitialized},
		},
		{
			name: "only in loop",
			body: `
    [[type.member.body]]
    op = "loop"

      [[type.member.body.body]]
      op = "assign"
      member = "y"
      value = "1"
      type = "S32"
`,
			want: []diag.Code{diag.BndMemberVariableNotInitialized, diag.BndMemberVariableInitializedTwice},
		},
		{
			name: "conditionally in loop",
			body: `
    [[type.member.body]]
    op = "loop"

      [[type.member.body.body]]
      op = "if"

        [[type.member.body.body.then]]
        op = "assign"
        member = "y"
        value = "1"
        type = "S32"
`,
			want: []diag.Code{diag.BndMemberVariableNotInitialized, diag.BndMemberVariableInitializedTwice},
		},
		{
			name: "loop body always returns",
			body: `
    [[type.member.body]]
    op = "loop"

      [[type.member.body.body]]
      op = "assign"
      member = "y"
      value = "1"
      type = "S32"

      [[type.member.body.body]]
      op = "return"
`,
			want: []diag.Code{diag.BndMemberVariableNotInitialized},
		},
		{
			name: "assigned twice",
			body: assign("y", "1") + assign("x", "2"),
			want: []diag.Code{diag.BndMemberVariableInitializedTwice},
		},
		{
			name: "unknown member",
			body: assign("y", "1") + assign("z", "1"),
			want: []diag.Code{diag.DclUnknownMember},
		},
		{
			name: "value type",
			body: `
    [[type.member.body]]
    op = "assign"
    member = "y"
    value = "\"one\""
    type = "String"
`,
			want: []diag.Code{diag.BndTypeMismatch},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := bindTOML(t, pointWith(yVar+`
  [[type.member]]
  kind = "constructor"
`+tt.body))
			f.requireOnly(t, tt.want...)
		})
	}
}

func TestConstructorNothrow(t *testing.T) {
	f := bindTOML(t, pointWith(`
  [[type.member]]
  kind = "constructor"
  nothrow = true
`))
	f.requireOnly(t, diag.BndConstructorDeclaredNothrow)
}

func TestDestructorNothrow(t *testing.T) {
	const types = `
package = "dtor"

[[type]]
name = "Resource"
kind = "class"

  [[type.member]]
  kind = "destructor"

    [[type.member.body]]
    op = "throw"

[[type]]
name = "Quiet"
kind = "class"

[[type]]
name = "Holder"
kind = "class"

  [[type.member]]
  kind = "var"
  name = "held"
  type = "%s"
  init = "ctor"

  [[type.member]]
  kind = "destructor"
  nothrow = true
`
	tests := []struct {
		held string
		want []diag.Code
	}{
		{held: "Resource", want: []diag.Code{diag.BndNothrowViolation}},
		{held: "Quiet"},
		{held: "Any"},
	}
	for _, tt := range tests {
		t.Run(tt.held, func(t *testing.T) {
			f := bindTOML(t, strings.Replace(types, "%s", tt.held, 1))
			f.requireOnly(t, tt.want...)
		})
	}
}

func TestDestructorRejectsMixins(t *testing.T) {
	f := bindTOML(t, pointWith(`
  [[type.member]]
  kind = "destructor"
`+mixinStmt("thing", "S32")))
	f.requireOnly(t, diag.BndMixinNotAllowed)
}
