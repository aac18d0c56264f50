package engine

import (
	"cmp"
	"fmt"

	"lobforge/internal/book"
)

// Eval simulates a batch of ops against ob without mutating it, returning
// the matches and the instruction log that Apply would need to reproduce
// the same state for real (spec.md §4.5).
//
// Error policy (documented choice, spec.md §7 leaves this open): Eval
// short-circuits the batch on the first per-op error and returns the
// matches/instructions accumulated for the ops processed before it,
// wrapped together with the failing op's error. The book is left untouched
// either way.
func Eval[T comparable, P cmp.Ordered, N book.Quantity](ob *OrderBook[T, P, N], ops []Op[T, P, N]) ([]Match[T, P, N], []Instruction[T, P, N], error) {
	if ob.poisoned {
		return nil, nil, ErrPoisoned
	}

	w := &working[T, P, N]{
		bids:  ob.bids.Clone(),
		asks:  ob.asks.Clone(),
		index: ob.index.Clone(),
	}

	var matches []Match[T, P, N]
	var instrs []Instruction[T, P, N]
	for i, op := range ops {
		opMatches, opInstrs, err := w.process(op)
		if err != nil {
			return matches, instrs, fmt.Errorf("eval: op %d (%s id=%v): %w", i, op.Kind, op.ID, err)
		}
		matches = append(matches, opMatches...)
		instrs = append(instrs, opInstrs...)
	}
	return matches, instrs, nil
}
