package device

import "fmt"

// Mirror owns a host staging buffer and the device buffer derived from it.
// The host side is filled through Stage, then Publish performs exactly one
// full host-to-device copy. After publishing the host buffer is released
// and only the device buffer remains readable.
type Mirror[T any] struct {
	host      *Buffer[T]
	dev       *Buffer[T]
	published bool
}

// NewMirror allocates a host/device pair of n elements. The host buffer is
// labelled with an "_h" suffix.
func NewMirror[T any](label string, n int) *Mirror[T] {
	return &Mirror[T]{
		host: Alloc[T](Host, label+"_h", n),
		dev:  Alloc[T](Device, label, n),
	}
}

// Len returns the element count of either side.
func (m *Mirror[T]) Len() int { return m.dev.Len() }

// Published reports whether Publish has completed.
func (m *Mirror[T]) Published() bool { return m.published }

// Stage returns the host buffer for writing.
func (m *Mirror[T]) Stage() ([]T, error) {
	if m.published {
		return nil, fmt.Errorf("stage %q: %w", m.dev.label, ErrAlreadyPublished)
	}
	return m.host.data, nil
}

// Publish copies the host buffer to the device buffer. It may be called
// once.
func (m *Mirror[T]) Publish() error {
	if m.published {
		return fmt.Errorf("publish %q: %w", m.dev.label, ErrAlreadyPublished)
	}
	if m.host.space != Host || m.dev.space != Device {
		return fmt.Errorf("publish %q from %s to %s: %w", m.dev.label, m.host.space, m.dev.space, ErrWrongSpace)
	}
	if err := DeepCopy(m.dev, m.host); err != nil {
		return err
	}
	m.published = true
	m.host = nil
	return nil
}

// View returns the published device buffer.
func (m *Mirror[T]) View() (*Buffer[T], error) {
	if !m.published {
		return nil, fmt.Errorf("view %q: %w", m.dev.label, ErrNotPublished)
	}
	return m.dev, nil
}

// Bytes returns the combined size of the live allocations.
func (m *Mirror[T]) Bytes() uint64 {
	n := m.dev.Bytes()
	if m.host != nil {
		n += m.host.Bytes()
	}
	return n
}
