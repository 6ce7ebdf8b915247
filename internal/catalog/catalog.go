// Package catalog holds the static slot catalog: the fixed, ordered list of
// bookable time windows and the seat capacity shared by all of them.  The
// catalog is built once at startup and is read-only afterwards, so it is safe
// to share between goroutines without locking.
package catalog

// DefaultSlots is the shipped cafeteria schedule: eighteen half-hour windows
// between 9:00 AM and 6:00 PM.  Deployments can override the list through
// configuration, but the labels are treated as opaque keys either way.
var DefaultSlots = []string{
	"9:00 AM - 9:30 AM", "9:30 AM - 10:00 AM", "10:00 AM - 10:30 AM",
	"10:30 AM - 11:00 AM", "11:00 AM - 11:30 AM", "11:30 AM - 12:00 PM",
	"12:00 PM - 12:30 PM", "12:30 PM - 1:00 PM", "1:00 PM - 1:30 PM",
	"1:30 PM - 2:00 PM", "2:00 PM - 2:30 PM", "2:30 PM - 3:00 PM",
	"3:00 PM - 3:30 PM", "3:30 PM - 4:00 PM", "4:00 PM - 4:30 PM",
	"4:30 PM - 5:00 PM", "5:00 PM - 5:30 PM", "5:30 PM - 6:00 PM",
}

// Catalog is the immutable slot list plus the per-slot seat capacity and the
// row width used when projecting seats into a grid.
type Catalog struct {
	slots    []string
	ordinal  map[string]int
	capacity uint32
	rowWidth int
}

// New builds a catalog from the given labels.  Duplicate labels keep their
// first ordinal.  capacity and rowWidth must be positive; New falls back to
// the historical defaults (100 seats, rows of 10) when they are not.
func New(labels []string, capacity uint32, rowWidth int) *Catalog {
	if len(labels) == 0 {
		labels = DefaultSlots
	}
	if capacity == 0 {
		capacity = 100
	}
	if rowWidth <= 0 {
		rowWidth = 10
	}
	c := &Catalog{
		slots:    make([]string, 0, len(labels)),
		ordinal:  make(map[string]int, len(labels)),
		capacity: capacity,
		rowWidth: rowWidth,
	}
	for _, l := range labels {
		if _, dup := c.ordinal[l]; dup {
			continue
		}
		c.ordinal[l] = len(c.slots)
		c.slots = append(c.slots, l)
	}
	return c
}

// Slots returns the labels in catalog order.  The returned slice is a copy;
// callers may not mutate catalog state.
func (c *Catalog) Slots() []string {
	out := make([]string, len(c.slots))
	copy(out, c.slots)
	return out
}

// Contains reports whether label is a catalog entry.
func (c *Catalog) Contains(label string) bool {
	_, ok := c.ordinal[label]
	return ok
}

// Ordinal returns the zero-based position of label in the catalog.
func (c *Catalog) Ordinal(label string) (int, bool) {
	n, ok := c.ordinal[label]
	return n, ok
}

// Capacity returns the fixed number of seats per slot.
func (c *Catalog) Capacity() uint32 { return c.capacity }

// RowWidth returns the display grid width W.
func (c *Catalog) RowWidth() int { return c.rowWidth }

// Len returns the number of slots.
func (c *Catalog) Len() int { return len(c.slots) }
