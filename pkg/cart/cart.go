// Package cart is the in-memory shopping cart. Every mutation returns an
// immutable Snapshot; derived values are computed from the snapshot on read.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Item is what the menu hands to the cart.
type Item struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Image string
}

type Line struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Snapshot struct {
	lines []Line
}

// Lines returns a copy of the cart lines in insertion order.
func (s Snapshot) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s Snapshot) Len() int { return len(s.lines) }

func (s Snapshot) IsEmpty() bool { return len(s.lines) == 0 }

func (s Snapshot) Line(id string) (Line, bool) {
	for _, l := range s.lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

// ItemCount is the sum of quantities.
func (s Snapshot) ItemCount() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s Snapshot) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range s.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Store owns the current cart. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Store {
	return &Store{}
}

func (c *Store) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Store) ItemCount() int {
	return c.Snapshot().ItemCount()
}

// Add increments the quantity of an existing line or appends a new one.
func (c *Store) Add(item Item) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return c.snapshotLocked()
	}
	c.lines = append(c.lines, Line{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Image:    item.Image,
		Quantity: 1,
	})
	return c.snapshotLocked()
}

// UpdateQuantity sets the quantity exactly. Anything below 1 removes the line.
func (c *Store) UpdateQuantity(id string, quantity int) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	switch {
	case i < 0:
	case quantity < 1:
		c.removeLocked(i)
	default:
		c.lines[i].Quantity = quantity
	}
	return c.snapshotLocked()
}

func (c *Store) Remove(id string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(id); i >= 0 {
		c.removeLocked(i)
	}
	return c.snapshotLocked()
}

func (c *Store) Clear() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	return Snapshot{}
}

func (c *Store) indexLocked(id string) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Store) removeLocked(i int) {
	next := make([]Line, 0, len(c.lines)-1)
	next = append(next, c.lines[:i]...)
	c.lines = append(next, c.lines[i+1:]...)
}

func (c *Store) snapshotLocked() Snapshot {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return Snapshot{lines: out}
}
