// Package opt provides an optional value type.
package opt

import "fmt"

// Maybe is a simple implementation of an optional value type.
type Maybe[V any] struct {
	defined bool
	value   V
}

// Some returns a Maybe that has a defined value.
func Some[V any](value V) Maybe[V] {
	return Maybe[V]{defined: true, value: value}
}

// None returns a Maybe with no value.
func None[V any]() Maybe[V] { return Maybe[V]{} }

// IsDefined returns true if the Maybe has a value.
func (m Maybe[V]) IsDefined() bool { return m.defined }

// Value returns the value if a value is defined, or the zero value for the type otherwise.
func (m Maybe[V]) Value() V { return m.value }

// String returns "[none]" if undefined, or else a "%v" representation of the value.
func (m Maybe[V]) String() string {
	if m.defined {
		return fmt.Sprintf("%v", m.value)
	}
	return "[none]"
}
