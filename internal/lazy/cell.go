// Package lazy holds memoized values computed on first access.
package lazy

import "fmt"

type state uint8

const (
	uncomputed state = iota
	computing
	computed
)

// Cell is either Uncomputed or Computed(value). The zero Cell is Uncomputed.
type Cell[T any] struct {
	value T
	state state
}

// Of returns a Cell that is already computed.
func Of[T any](v T) Cell[T] {
	return Cell[T]{value: v, state: computed}
}

// GetOrCompute returns the cached value, running compute exactly once on the
// first call. Asking for the value while compute is still running panics.
func (c *Cell[T]) GetOrCompute(compute func() T) T {
	switch c.state {
	case computed:
		return c.value
	case computing:
		panic(fmt.Errorf("lazy: recursive computation of %T", c.value))
	}
	c.state = computing
	v := compute()
	c.value = v
	c.state = computed
	return v
}

// Get returns the value and whether it has been computed.
func (c *Cell[T]) Get() (T, bool) {
	if c.state != computed {
		var zero T
		return zero, false
	}
	return c.value, true
}

// MustGet returns the computed value and panics when it is still missing.
func (c *Cell[T]) MustGet() T {
	if c.state != computed {
		panic(fmt.Errorf("lazy: %T read before it was computed", c.value))
	}
	return c.value
}

// Set stores v. Setting a computed cell panics.
func (c *Cell[T]) Set(v T) {
	if c.state != uncomputed {
		panic(fmt.Errorf("lazy: %T assigned twice", c.value))
	}
	c.value = v
	c.state = computed
}

func (c *Cell[T]) IsComputed() bool {
	return c.state == computed
}
