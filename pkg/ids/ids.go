// Package ids allocates the monotonically-increasing identifiers circuitcore
// attaches to every IR element: a uid (stable unique identity) and a guid
// (stable group tag shared by Assigns created together as one bus-group).
package ids

import "sync/atomic"

// ID is a 64-bit identifier. Zero is never issued by Counter.Next.
type ID uint64

// Counter is the sole shared mutable state in the core (spec §5): a single
// atomic uint64. Safe for concurrent use even though the core itself never
// calls it from more than one goroutine today.
type Counter struct {
	next uint64
}

// Next returns a fresh, previously-unissued ID.
func (c *Counter) Next() ID {
	return ID(atomic.AddUint64(&c.next, 1))
}

// NewCounter returns a Counter ready to issue IDs starting at 1.
func NewCounter() *Counter {
	return &Counter{}
}
