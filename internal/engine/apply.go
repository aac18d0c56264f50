package engine

import (
	"cmp"
	"fmt"

	"github.com/rs/zerolog/log"

	"lobforge/internal/book"
)

// Apply interprets an instruction log against the live book (spec.md §4.6).
// Each instruction's mechanics were fixed by Eval — Apply performs exactly
// that mechanic, with no branching beyond it. If an instruction refers to
// state that no longer matches (ErrInconsistent), the book poisons itself:
// every later Eval/Apply call fails fast with ErrPoisoned rather than risk
// compounding corruption, the Go-idiomatic rendition of "abort the process
// or poison the instance" from spec.md §7.
func Apply[T comparable, P cmp.Ordered, N book.Quantity](ob *OrderBook[T, P, N], instrs []Instruction[T, P, N]) error {
	if ob.poisoned {
		return ErrPoisoned
	}
	for _, instr := range instrs {
		if err := applyOne(ob, instr); err != nil {
			log.Error().Err(err).Stringer("instruction", instr).Msg("order book apply failed, poisoning book")
			ob.poisoned = true
			return err
		}
	}
	return nil
}

func applyOne[T comparable, P cmp.Ordered, N book.Quantity](ob *OrderBook[T, P, N], instr Instruction[T, P, N]) error {
	switch in := instr.(type) {
	case FillMaker[T, P, N]:
		return applyFillMaker(ob, in)
	case InsertRest[T, P, N]:
		return applyInsertRest(ob, in)
	case RemoveResting[T, P, N]:
		return applyRemoveResting(ob, in.ID)
	default:
		return fmt.Errorf("%w: unrecognized instruction %T", ErrInconsistent, instr)
	}
}

func applyFillMaker[T comparable, P cmp.Ordered, N book.Quantity](ob *OrderBook[T, P, N], in FillMaker[T, P, N]) error {
	loc, ok := ob.index.Lookup(in.ID)
	if !ok {
		return fmt.Errorf("%w: FillMaker for unindexed id %v", ErrInconsistent, in.ID)
	}
	side := ob.sideOf(loc.IsBuy)
	lvl, ok := side.GetLevel(loc.Price)
	if !ok {
		return fmt.Errorf("%w: FillMaker id %v indexed at %v with no level", ErrInconsistent, in.ID, loc.Price)
	}
	order, ok := lvl.Find(in.ID)
	if !ok {
		return fmt.Errorf("%w: FillMaker id %v not present in its indexed level", ErrInconsistent, in.ID)
	}
	if in.Quantity > order.Remaining() {
		return fmt.Errorf("%w: FillMaker quantity %v exceeds remaining %v for id %v", ErrInconsistent, in.Quantity, order.Remaining(), in.ID)
	}
	order.Fill(in.Quantity)
	if order.Remaining() == 0 {
		lvl.RemoveByID(in.ID)
		side.DropIfEmpty(lvl)
		ob.index.Remove(in.ID)
	}
	return nil
}

func applyInsertRest[T comparable, P cmp.Ordered, N book.Quantity](ob *OrderBook[T, P, N], in InsertRest[T, P, N]) error {
	order := in.Order
	if _, exists := ob.index.Lookup(order.ID()); exists {
		return fmt.Errorf("%w: InsertRest for id %v already resting", ErrInconsistent, order.ID())
	}
	ob.sideOf(order.IsBuy()).Insert(order)
	ob.index.Insert(order.ID(), order.IsBuy(), order.Price())
	return nil
}

func applyRemoveResting[T comparable, P cmp.Ordered, N book.Quantity](ob *OrderBook[T, P, N], id T) error {
	return applyCancel(ob, id)
}

func applyCancel[T comparable, P cmp.Ordered, N book.Quantity](ob *OrderBook[T, P, N], id T) error {
	loc, ok := ob.index.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: RemoveResting for unindexed id %v", ErrInconsistent, id)
	}
	side := ob.sideOf(loc.IsBuy)
	lvl, ok := side.GetLevel(loc.Price)
	if !ok {
		return fmt.Errorf("%w: RemoveResting id %v indexed at %v with no level", ErrInconsistent, id, loc.Price)
	}
	if !lvl.RemoveByID(id) {
		return fmt.Errorf("%w: RemoveResting id %v not present in its indexed level", ErrInconsistent, id)
	}
	side.DropIfEmpty(lvl)
	ob.index.Remove(id)
	return nil
}
