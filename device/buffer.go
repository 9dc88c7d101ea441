// Package device models the memory substrate that geometry tables live in:
// named, typed buffers in a host or a device space, a blocking deep copy
// between them, and a dispatch helper for the consumers of those tables.
//
// The device space is backed by ordinary Go memory. A real accelerator
// backend replaces Alloc and DeepCopy; the rest of the repository only sees
// Buffer and Mirror.
package device

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	ErrSizeMismatch     = errors.New("device: buffer sizes differ")
	ErrWrongSpace       = errors.New("device: wrong memory space")
	ErrAlreadyPublished = errors.New("device: mirror already published")
	ErrNotPublished     = errors.New("device: mirror not published")
)

// Space identifies where a buffer resides.
type Space uint8

const (
	Host Space = iota
	Device
)

func (s Space) String() string {
	switch s {
	case Host:
		return "host"
	case Device:
		return "device"
	default:
		return fmt.Sprintf("space(%d)", uint8(s))
	}
}

// Buffer is a fixed-size typed allocation in one memory space.
type Buffer[T any] struct {
	label string
	space Space
	data  []T
}

// Alloc allocates a zeroed buffer of n elements in space.
func Alloc[T any](space Space, label string, n int) *Buffer[T] {
	if n < 0 {
		panic(fmt.Sprintf("device: negative size %d for %q", n, label))
	}
	return &Buffer[T]{label: label, space: space, data: make([]T, n)}
}

func (b *Buffer[T]) Label() string { return b.label }
func (b *Buffer[T]) Space() Space  { return b.space }
func (b *Buffer[T]) Len() int      { return len(b.data) }

// Data returns the buffer contents. For device buffers this is only valid
// for consumers running in the device space.
func (b *Buffer[T]) Data() []T { return b.data }

// Bytes returns the allocation size in bytes.
func (b *Buffer[T]) Bytes() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero)) * uint64(len(b.data))
}

// DeepCopy copies all of src into dst. It blocks until the copy completes.
func DeepCopy[T any](dst, src *Buffer[T]) error {
	if dst.Len() != src.Len() {
		return fmt.Errorf("copy %q (%d) -> %q (%d): %w", src.label, src.Len(), dst.label, dst.Len(), ErrSizeMismatch)
	}
	copy(dst.data, src.data)
	return nil
}
