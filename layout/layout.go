// Package layout maps logical (slot, field) pairs onto flat offsets.
//
// Every multi-field table in the geometry is stored in a single flat slice.
// Whether the fields of one slot sit next to each other (SlotMajor, an
// array of structures) or the values of one field are contiguous across all
// slots (FieldMajor, a structure of arrays) is decided once by configuration.
// Code that reads or writes tables goes through Index or Table and never
// computes offsets itself.
package layout

import (
	"fmt"
	"strings"
)

// Layout selects the physical ordering of a slot x field table.
type Layout uint8

const (
	FieldMajor Layout = iota // all slots of field 0, then field 1, ...
	SlotMajor                // all fields of slot 0, then slot 1, ...
)

// String returns the config name of the layout.
func (l Layout) String() string {
	switch l {
	case FieldMajor:
		return "field_major"
	case SlotMajor:
		return "slot_major"
	default:
		return fmt.Sprintf("layout(%d)", uint8(l))
	}
}

// Parse converts a config value into a Layout. The short forms "soa" and
// "aos" are accepted as aliases.
func Parse(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "field_major", "soa":
		return FieldMajor, nil
	case "slot_major", "aos":
		return SlotMajor, nil
	default:
		return 0, fmt.Errorf("unknown layout %q (want field_major or slot_major)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Index returns the flat offset of (slot, field) in a table holding nSlots
// slots of nFields fields each.
func (l Layout) Index(slot, field, nSlots, nFields int) int {
	if l == FieldMajor {
		return slot + field*nSlots
	}
	return slot*nFields + field
}
