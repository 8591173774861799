// Package reflist implements the append-only argument vector used to build the
// player command line before the process image is replaced.
//
// Growth is explicit: capacity starts at InitialCapacity and doubles when the
// list is full, and a growth request beyond the configured ceiling is reported
// as ErrAllocation instead of being hidden by the runtime. Lists are owned by a
// single goroutine.
package reflist

import (
	"errors"
	"fmt"
	"math"
)

// InitialCapacity is the number of slots reserved by a new list.
const InitialCapacity = 8

// DefaultLimit caps the number of slots (sentinel included). execve takes an
// int argc, so nothing larger could be handed to the kernel anyway.
const DefaultLimit = math.MaxInt32

var (
	// ErrAllocation reports that the backing storage could not grow.
	ErrAllocation = errors.New("reflist: allocation failed")
	// ErrTerminated reports a push after the sentinel was appended.
	ErrTerminated = errors.New("reflist: list already terminated")
)

// List is an ordered, growable sequence of string references.
type List struct {
	items      []string
	size       int
	capacity   int
	limit      int
	terminated bool
}

// Option customizes a List.
type Option func(*List)

// WithLimit sets the slot ceiling. Values below InitialCapacity are raised to
// InitialCapacity.
func WithLimit(limit int) Option {
	return func(l *List) {
		if limit < InitialCapacity {
			limit = InitialCapacity
		}
		l.limit = limit
	}
}

// New returns an empty list with InitialCapacity slots.
func New(opts ...Option) *List {
	l := &List{limit: DefaultLimit}
	for _, opt := range opts {
		opt(l)
	}
	l.capacity = InitialCapacity
	l.items = make([]string, 0, l.capacity)
	return l
}

// Push appends item, doubling the capacity when the list is full.
func (l *List) Push(item string) error {
	if l.terminated {
		return ErrTerminated
	}
	if err := l.reserve(); err != nil {
		return err
	}
	l.items = append(l.items, item)
	l.size++
	return nil
}

// Terminate appends the end-of-vector sentinel. It consumes one slot and
// closes the list for further pushes.
func (l *List) Terminate() error {
	if l.terminated {
		return ErrTerminated
	}
	if err := l.reserve(); err != nil {
		return err
	}
	l.size++
	l.terminated = true
	return nil
}

func (l *List) reserve() error {
	if l.size < l.capacity {
		return nil
	}
	if l.capacity > l.limit/2 {
		return fmt.Errorf("%w: capacity %d cannot double past limit %d", ErrAllocation, l.capacity, l.limit)
	}
	next := l.capacity * 2
	grown := make([]string, len(l.items), next)
	copy(grown, l.items)
	l.items = grown
	l.capacity = next
	return nil
}

// Len reports the number of occupied slots, the sentinel included.
func (l *List) Len() int { return l.size }

// Cap reports the number of reserved slots.
func (l *List) Cap() int { return l.capacity }

// Terminated reports whether the sentinel has been appended.
func (l *List) Terminated() bool { return l.terminated }

// Strings returns the pushed items without the sentinel. The returned slice
// shares storage with the list.
func (l *List) Strings() []string {
	return l.items[:len(l.items):len(l.items)]
}
