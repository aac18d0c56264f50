// Package engine implements the matching core: the eval/apply split over
// the two-sided, price-time-priority book from spec.md §1. It is the
// generalization of the teacher's internal/engine package (originally a
// single float-priced, directly-mutating OrderBook.Match/handleLimit
// sweep) into a polymorphic, pure-eval-then-apply design.
package engine

import (
	"cmp"

	"lobforge/internal/book"
)

// OrderBook owns the two side books and the order index for one
// instrument. It is not safe for concurrent use (spec.md §5): the caller
// must not interleave Eval calls with stale Apply calls, and must not call
// into the same OrderBook from more than one goroutine at a time.
type OrderBook[T comparable, P cmp.Ordered, N book.Quantity] struct {
	bids     *book.SideBook[T, P, N]
	asks     *book.SideBook[T, P, N]
	index    *book.OrderIndex[T, P]
	poisoned bool
}

// New constructs an empty order book.
func New[T comparable, P cmp.Ordered, N book.Quantity]() *OrderBook[T, P, N] {
	return &OrderBook[T, P, N]{
		bids:  book.NewSideBook[T, P, N](true),
		asks:  book.NewSideBook[T, P, N](false),
		index: book.NewOrderIndex[T, P](),
	}
}

func (ob *OrderBook[T, P, N]) sideOf(isBuy bool) *book.SideBook[T, P, N] {
	if isBuy {
		return ob.bids
	}
	return ob.asks
}

// Eval evaluates ops against the current book without mutating it. See the
// package-level Eval function for the error policy.
func (ob *OrderBook[T, P, N]) Eval(ops []Op[T, P, N]) ([]Match[T, P, N], []Instruction[T, P, N], error) {
	return Eval(ob, ops)
}

// Apply commits an instruction log produced by Eval. See the package-level
// Apply function for the fatal/poisoning behavior.
func (ob *OrderBook[T, P, N]) Apply(instrs []Instruction[T, P, N]) error {
	return Apply(ob, instrs)
}

// Process evaluates and immediately applies ops, returning only the
// matches — the convenience wrapper spec.md §4.7 allows.
func (ob *OrderBook[T, P, N]) Process(ops []Op[T, P, N]) ([]Match[T, P, N], error) {
	matches, instrs, err := ob.Eval(ops)
	if err != nil {
		return matches, err
	}
	if err := ob.Apply(instrs); err != nil {
		return matches, err
	}
	return matches, nil
}

// BestBid returns the highest resting buy price, if any.
func (ob *OrderBook[T, P, N]) BestBid() (P, bool) { return ob.bids.BestPrice() }

// BestAsk returns the lowest resting sell price, if any.
func (ob *OrderBook[T, P, N]) BestAsk() (P, bool) { return ob.asks.BestPrice() }

// Bids returns every bid-side price level, ordered best (highest) to worst.
func (ob *OrderBook[T, P, N]) Bids() []*book.PriceLevel[T, P, N] { return ob.bids.Levels() }

// Asks returns every ask-side price level, ordered best (lowest) to worst.
func (ob *OrderBook[T, P, N]) Asks() []*book.PriceLevel[T, P, N] { return ob.asks.Levels() }

// Poisoned reports whether a fatal Apply inconsistency has disabled this
// book.
func (ob *OrderBook[T, P, N]) Poisoned() bool { return ob.poisoned }
