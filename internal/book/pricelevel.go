package book

import "cmp"

// PriceLevel is the FIFO queue of resting orders sharing one (side, price).
// Head = earliest arrival, per spec.md §3/§4.2. Grounded on the teacher's
// PriceLevel (internal/engine/orderbook.go), which stored orders as a plain
// slice and advanced the head by reslicing rather than by a linked list —
// the same shape is kept here, generalized over the Order capability.
type PriceLevel[T comparable, P cmp.Ordered, N Quantity] struct {
	price  P
	orders []Order[T, P, N]
}

// NewPriceLevel creates an empty level pinned at price.
func NewPriceLevel[T comparable, P cmp.Ordered, N Quantity](price P) *PriceLevel[T, P, N] {
	return &PriceLevel[T, P, N]{price: price}
}

func (l *PriceLevel[T, P, N]) Price() P { return l.price }

// PushBack appends an order to the tail — the sole representation of time
// priority within the level.
func (l *PriceLevel[T, P, N]) PushBack(o Order[T, P, N]) {
	l.orders = append(l.orders, o)
}

// Front returns the earliest-arrived order, if any.
func (l *PriceLevel[T, P, N]) Front() (Order[T, P, N], bool) {
	if len(l.orders) == 0 {
		var zero Order[T, P, N]
		return zero, false
	}
	return l.orders[0], true
}

// PopFront removes the earliest-arrived order. Amortized O(1): like the
// teacher's level-sweep, this reslices rather than copying the backing
// array down.
func (l *PriceLevel[T, P, N]) PopFront() {
	if len(l.orders) == 0 {
		return
	}
	l.orders[0] = nil
	l.orders = l.orders[1:]
}

// RemoveByID removes the order with the given id, wherever it sits in the
// queue (used by Cancel, which need not target the head). O(k) in the
// level's length.
func (l *PriceLevel[T, P, N]) RemoveByID(id T) bool {
	for i, o := range l.orders {
		if o.ID() == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the order with the given id within this level, if present.
// The returned value aliases the same reference held in the queue, so
// calling Fill on it mutates the order the level actually holds.
func (l *PriceLevel[T, P, N]) Find(id T) (Order[T, P, N], bool) {
	for _, o := range l.orders {
		if o.ID() == id {
			return o, true
		}
	}
	var zero Order[T, P, N]
	return zero, false
}

func (l *PriceLevel[T, P, N]) IsEmpty() bool { return len(l.orders) == 0 }

func (l *PriceLevel[T, P, N]) Len() int { return len(l.orders) }

// Orders returns the level's orders in insertion order. The returned slice
// aliases the level's internal storage and must be treated as read-only by
// callers outside this package.
func (l *PriceLevel[T, P, N]) Orders() []Order[T, P, N] { return l.orders }
