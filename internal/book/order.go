// Package book holds the resting-order data structures: the Order
// capability, the per-price FIFO queue, the price-indexed side book, and the
// id-to-locator index. None of these mutate on their own initiative — the
// engine package drives them.
package book

import "cmp"

// Order is the capability a caller's concrete order type must satisfy to
// rest in a book. T is the id type, P the price type, N the quantity type.
//
// Implementations are expected to behave as reference types: Fill mutates
// shared state observed by every holder of the same order, the same way the
// teacher's *Order pointers were shared between a PriceLevel and any trade
// report built from it. Clone must return an independent value unaffected
// by later Fill calls on the original — the evaluator relies on it to
// simulate fills without ever mutating a resting order that the live book
// (or the caller) still references.
type Order[T comparable, P cmp.Ordered, N Quantity] interface {
	ID() T
	IsBuy() bool
	Price() P
	Quantity() N
	Remaining() N
	// Fill reduces Remaining by n. Precondition: n <= Remaining().
	Fill(n N)
	Clone() Order[T, P, N]
}
