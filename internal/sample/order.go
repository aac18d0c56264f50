// Package sample provides a concrete Order implementation satisfying
// book.Order[string, int64, uint64] — ids are UUID strings, prices are
// integer ticks, and quantities are plain counts. It plays the role the
// teacher's internal/common.Order played (the one domain order type the
// rest of the module, and its tests, build on), adapted to the spec's
// ban on floating-point prices: prices here are int64 ticks, not float64.
package sample

import (
	"fmt"

	"github.com/google/uuid"

	"lobforge/internal/book"
)

// Side mirrors the teacher's common.Side for readability at call sites;
// the book core itself only ever sees Order.IsBuy().
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Order is a single resting or aggressing order: a side, a tick price, an
// original quantity and how much of it remains unfilled.
type Order struct {
	UUID      string
	Side      Side
	TickPrice int64
	Qty       uint64
	Rem       uint64
	Owner     string
}

// New builds a fresh order with remaining set to the full quantity, a
// fresh UUID, per the teacher's NewOrderMessage.Order() idiom
// (internal/net/messages.go).
func New(side Side, tickPrice int64, qty uint64, owner string) *Order {
	return &Order{
		UUID:      uuid.NewString(),
		Side:      side,
		TickPrice: tickPrice,
		Qty:       qty,
		Rem:       qty,
		Owner:     owner,
	}
}

func (o *Order) ID() string      { return o.UUID }
func (o *Order) IsBuy() bool     { return o.Side == Buy }
func (o *Order) Price() int64    { return o.TickPrice }
func (o *Order) Quantity() uint64 { return o.Qty }
func (o *Order) Remaining() uint64 { return o.Rem }

// Fill subtracts n from Rem. Precondition: n <= Rem, matching book.Order's
// contract; a violation here is an engine bug, so it panics loudly rather
// than silently under/overflowing.
func (o *Order) Fill(n uint64) {
	if n > o.Rem {
		panic(fmt.Sprintf("sample: Fill(%d) exceeds remaining %d for order %s", n, o.Rem, o.UUID))
	}
	o.Rem -= n
}

// Clone returns an independent order the evaluator can Fill without
// touching o.
func (o *Order) Clone() book.Order[string, int64, uint64] {
	cp := *o
	return &cp
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{id:%s side:%s price:%d qty:%d rem:%d owner:%s}",
		o.UUID, o.Side, o.TickPrice, o.Qty, o.Rem, o.Owner)
}

var _ book.Order[string, int64, uint64] = (*Order)(nil)
