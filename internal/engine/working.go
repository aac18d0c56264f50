package engine

import (
	"cmp"
	"fmt"

	"lobforge/internal/book"
)

// working is a throw-away, independently-owned clone of a book's two side
// books and index. Eval drives one op batch against a working copy using
// the same crossing algorithm the teacher's OrderBook.Match/handleLimit
// used directly against live state (internal/engine/orderbook.go in the
// teacher repo); here the sweep only ever touches cloned orders (via
// Order.Clone), so nothing the live book or the caller still references is
// ever mutated. The Match/Instruction log this produces is everything Eval
// hands back — the clone itself is discarded.
type working[T comparable, P cmp.Ordered, N book.Quantity] struct {
	bids  *book.SideBook[T, P, N]
	asks  *book.SideBook[T, P, N]
	index *book.OrderIndex[T, P]
}

func (w *working[T, P, N]) sideOf(isBuy bool) *book.SideBook[T, P, N] {
	if isBuy {
		return w.bids
	}
	return w.asks
}

// process dispatches a single op against the working copy, returning the
// matches and instructions it produced.
func (w *working[T, P, N]) process(op Op[T, P, N]) ([]Match[T, P, N], []Instruction[T, P, N], error) {
	switch op.Kind {
	case OpInsert:
		return w.insert(op.Order)
	case OpCancel:
		instr, err := w.cancel(op.ID)
		if err != nil {
			return nil, nil, err
		}
		return nil, []Instruction[T, P, N]{instr}, nil
	case OpModify:
		if op.Order == nil || op.Order.ID() != op.ID {
			return nil, nil, fmt.Errorf("%w: modify replacement must carry the cancelled id", ErrInvalidOrder)
		}
		if op.Order.Remaining() != op.Order.Quantity() {
			return nil, nil, fmt.Errorf("%w: modify replacement must carry a full remaining", ErrInvalidOrder)
		}
		cancelInstr, err := w.cancel(op.ID)
		if err != nil {
			return nil, nil, err
		}
		matches, insertInstrs, err := w.insert(op.Order)
		if err != nil {
			return nil, nil, err
		}
		instrs := make([]Instruction[T, P, N], 0, len(insertInstrs)+1)
		instrs = append(instrs, cancelInstr)
		instrs = append(instrs, insertInstrs...)
		return matches, instrs, nil
	default:
		return nil, nil, fmt.Errorf("engine: unknown op kind %d", op.Kind)
	}
}

// insert walks the opposite side from best toward worst while the incoming
// order is still marketable, consuming resting makers in FIFO order
// (spec.md §4.5). Whatever remains after the walk rests on the incoming
// order's own side.
func (w *working[T, P, N]) insert(incoming book.Order[T, P, N]) ([]Match[T, P, N], []Instruction[T, P, N], error) {
	if _, ok := w.index.Lookup(incoming.ID()); ok {
		return nil, nil, ErrDuplicateID
	}
	if incoming.Remaining() == 0 || incoming.Remaining() > incoming.Quantity() {
		return nil, nil, ErrInvalidOrder
	}

	opposite := w.sideOf(!incoming.IsBuy())

	var matches []Match[T, P, N]
	var instrs []Instruction[T, P, N]
	remaining := incoming.Remaining()

	for remaining > 0 {
		lvl, ok := opposite.BestLevel()
		if !ok {
			break
		}
		if !marketable(incoming.IsBuy(), incoming.Price(), lvl.Price()) {
			break
		}
		for remaining > 0 {
			maker, ok := lvl.Front()
			if !ok {
				break
			}
			trade := min(remaining, maker.Remaining())

			matches = append(matches, Match[T, P, N]{
				MakerID:  maker.ID(),
				TakerID:  incoming.ID(),
				Price:    lvl.Price(),
				Quantity: trade,
			})
			maker.Fill(trade)
			remaining -= trade
			instrs = append(instrs, FillMaker[T, P, N]{ID: maker.ID(), Quantity: trade})

			if maker.Remaining() == 0 {
				lvl.PopFront()
				w.index.Remove(maker.ID())
			} else {
				// Partially filled: it keeps its place at the head, so stop
				// advancing into this level — the taker is now exhausted.
				break
			}
		}
		opposite.DropIfEmpty(lvl)
	}

	if remaining > 0 {
		rested := incoming.Clone()
		if consumed := incoming.Remaining() - remaining; consumed > 0 {
			rested.Fill(consumed)
		}
		// The working copy rests its own clone, so later ops in the same
		// batch that fill it never alter the order the instruction carries.
		w.sideOf(incoming.IsBuy()).Insert(rested.Clone())
		w.index.Insert(rested.ID(), rested.IsBuy(), rested.Price())
		instrs = append(instrs, InsertRest[T, P, N]{Order: rested})
	}

	return matches, instrs, nil
}

// cancel removes a single resting order, wherever it sits in its level.
func (w *working[T, P, N]) cancel(id T) (Instruction[T, P, N], error) {
	loc, ok := w.index.Lookup(id)
	if !ok {
		var zero Instruction[T, P, N]
		return zero, ErrUnknownID
	}
	side := w.sideOf(loc.IsBuy)
	lvl, ok := side.GetLevel(loc.Price)
	if !ok {
		var zero Instruction[T, P, N]
		return zero, fmt.Errorf("%w: indexed id %v has no level at %v", ErrInconsistent, id, loc.Price)
	}
	lvl.RemoveByID(id)
	side.DropIfEmpty(lvl)
	w.index.Remove(id)
	return RemoveResting[T, P, N]{ID: id}, nil
}

// marketable implements spec.md §4.5's crossing rule: a buy at P crosses
// asks priced at or below P; a sell at P crosses bids priced at or above P.
func marketable[P cmp.Ordered](incomingIsBuy bool, incomingPrice, levelPrice P) bool {
	if incomingIsBuy {
		return levelPrice <= incomingPrice
	}
	return levelPrice >= incomingPrice
}
