package binding

import (
	"fmt"

	"fortio.org/safecast"

	"emerge/internal/phase"
)

// Field is a storage slot of a class instance. Ids are dense per type and
// start at zero.
type Field struct {
	ID    uint32
	Name  string
	Type  *Type
	Owner *BaseType
}

func (f *Field) String() string {
	return fmt.Sprintf("#%d %s: %s", f.ID, f.Name, f.Type)
}

// AllocateField appends a field to t. Only validated classes have fields.
func (t *BaseType) AllocateField(typ *Type, name string) *Field {
	if !t.validated() {
		phase.ICE("field %s allocated on %s before validation", name, t.name)
	}
	if t.IsInterface() {
		phase.ICE("field %s allocated on interface %s", name, t.name)
	}
	id, err := safecast.Conv[uint32](len(t.fields))
	if err != nil {
		panic(fmt.Errorf("len(fields) overflow: %w", err))
	}
	f := &Field{ID: id, Name: name, Type: typ, Owner: t}
	t.fields = append(t.fields, f)
	return f
}

// Fields returns the fields allocated so far in id order.
func (t *BaseType) Fields() []*Field {
	return t.fields
}

// ref is the field id as an IR field reference.
func (f *Field) ref() int32 {
	id, err := safecast.Conv[int32](f.ID)
	if err != nil {
		panic(fmt.Errorf("field id overflow: %w", err))
	}
	return id
}
