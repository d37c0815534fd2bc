// Copyright 2026 Peter Edge
//
// All rights reserved.

package tictlaggregate

// Common reduces a stream of values to their single common value.
//
// Every value counts, including the zero value: a blank ticker next to a
// non-blank one is a disagreement. Get reports a value only while every
// value seen so far is equal.
type Common[T comparable] struct {
	value    T
	seen     bool
	conflict bool
}

// Add observes a value.
func (c *Common[T]) Add(value T) {
	if c.conflict {
		return
	}
	if !c.seen {
		c.value = value
		c.seen = true
		return
	}
	if c.value != value {
		var zero T
		c.conflict = true
		c.value = zero
	}
}

// Get returns the common value, or false if none was seen or values disagreed.
func (c *Common[T]) Get() (T, bool) {
	return c.value, c.seen && !c.conflict
}

// Conflict reports whether two distinct values were seen.
func (c *Common[T]) Conflict() bool {
	return c.conflict
}

// OrZero returns the common value, or the zero value.
func (c *Common[T]) OrZero() T {
	value, _ := c.Get()
	return value
}
