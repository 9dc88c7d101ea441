package layout

import "fmt"

// Table is a named slot x field table stored in one flat slice. All access
// is routed through the table's Layout.
type Table[T any] struct {
	name   string
	layout Layout
	slots  int
	fields int
	data   []T
}

// NewTable allocates a zeroed table.
func NewTable[T any](name string, l Layout, slots, fields int) *Table[T] {
	return &Table[T]{
		name:   name,
		layout: l,
		slots:  slots,
		fields: fields,
		data:   make([]T, slots*fields),
	}
}

// Wrap views existing storage as a table. The slice length must equal
// slots*fields.
func Wrap[T any](name string, l Layout, slots, fields int, data []T) (*Table[T], error) {
	if slots < 0 || fields < 0 {
		return nil, fmt.Errorf("table %q: negative shape %dx%d", name, slots, fields)
	}
	if len(data) != slots*fields {
		return nil, fmt.Errorf("table %q: storage holds %d values, shape %dx%d needs %d",
			name, len(data), slots, fields, slots*fields)
	}
	return &Table[T]{name: name, layout: l, slots: slots, fields: fields, data: data}, nil
}

func (t *Table[T]) Name() string   { return t.name }
func (t *Table[T]) Layout() Layout { return t.layout }
func (t *Table[T]) Slots() int     { return t.slots }
func (t *Table[T]) Fields() int    { return t.fields }
func (t *Table[T]) Len() int       { return len(t.data) }

// Data exposes the backing slice in physical order. Callers that need
// logical access must use At/Set.
func (t *Table[T]) Data() []T { return t.data }

// offset panics on an out-of-range pair; a bad field index could otherwise
// alias a valid slot in the other layout.
func (t *Table[T]) offset(slot, field int) int {
	if slot < 0 || slot >= t.slots || field < 0 || field >= t.fields {
		panic(fmt.Sprintf("table %q: index (%d,%d) out of range %dx%d", t.name, slot, field, t.slots, t.fields))
	}
	return t.layout.Index(slot, field, t.slots, t.fields)
}

// At returns the value stored at (slot, field).
func (t *Table[T]) At(slot, field int) T {
	return t.data[t.offset(slot, field)]
}

// Set stores v at (slot, field).
func (t *Table[T]) Set(slot, field int, v T) {
	t.data[t.offset(slot, field)] = v
}

// Row appends the fields of slot to dst and returns it.
func (t *Table[T]) Row(dst []T, slot int) []T {
	for f := 0; f < t.fields; f++ {
		dst = append(dst, t.At(slot, f))
	}
	return dst
}

// Relayout returns a copy of the table stored in layout l.
func (t *Table[T]) Relayout(l Layout) *Table[T] {
	out := NewTable[T](t.name, l, t.slots, t.fields)
	for s := 0; s < t.slots; s++ {
		for f := 0; f < t.fields; f++ {
			out.Set(s, f, t.At(s, f))
		}
	}
	return out
}
