package book

import (
	"cmp"

	"github.com/tidwall/btree"
)

// SideBook is a price-indexed map of price -> PriceLevel for one side of the
// book, kept ordered so the best price is always the btree minimum. Grounded
// on the teacher's PriceLevels = btree.BTreeG[*PriceLevel] (internal/engine/
// orderbook.go): a balanced ordered map, exactly what spec.md §9 asks for
// ("a flat vector does not scale past trivial depths").
//
// For the bid side "better" means numerically greater, so the comparator
// sorts bids highest-first; for the ask side it sorts lowest-first. Either
// way the btree's Min is the best price, which is what BestPrice/BestLevel
// rely on.
type SideBook[T comparable, P cmp.Ordered, N Quantity] struct {
	levels *btree.BTreeG[*PriceLevel[T, P, N]]
	isBuy  bool
}

// NewSideBook builds an empty side book. isBuy selects bid-side (best =
// highest price) vs ask-side (best = lowest price) ordering.
func NewSideBook[T comparable, P cmp.Ordered, N Quantity](isBuy bool) *SideBook[T, P, N] {
	less := func(a, b *PriceLevel[T, P, N]) bool {
		if isBuy {
			return a.price > b.price
		}
		return a.price < b.price
	}
	return &SideBook[T, P, N]{
		levels: btree.NewBTreeG(less),
		isBuy:  isBuy,
	}
}

func (s *SideBook[T, P, N]) IsBuy() bool { return s.isBuy }

func (s *SideBook[T, P, N]) IsEmpty() bool { return s.levels.Len() == 0 }

// BestPrice returns the best (highest for bids, lowest for asks) price with
// a resting order, if the side is non-empty.
func (s *SideBook[T, P, N]) BestPrice() (P, bool) {
	lvl, ok := s.levels.Min()
	if !ok {
		var zero P
		return zero, false
	}
	return lvl.price, true
}

// BestLevel returns the best price level, if any.
func (s *SideBook[T, P, N]) BestLevel() (*PriceLevel[T, P, N], bool) {
	return s.levels.Min()
}

// GetLevel looks up the level at an exact price.
func (s *SideBook[T, P, N]) GetLevel(price P) (*PriceLevel[T, P, N], bool) {
	return s.levels.Get(&PriceLevel[T, P, N]{price: price})
}

// Insert places order into the level for order.Price(), creating the level
// if absent.
func (s *SideBook[T, P, N]) Insert(order Order[T, P, N]) {
	price := order.Price()
	lvl, ok := s.GetLevel(price)
	if !ok {
		lvl = NewPriceLevel[T, P, N](price)
		s.levels.Set(lvl)
	}
	lvl.PushBack(order)
}

// DropIfEmpty removes the level from the side if it has no resting orders
// left. Must be called from the apply phase right after a level is drained,
// per spec.md §4.3 ("removal must happen in the apply phase, not deferred").
func (s *SideBook[T, P, N]) DropIfEmpty(lvl *PriceLevel[T, P, N]) {
	if lvl.IsEmpty() {
		s.levels.Delete(lvl)
	}
}

// Levels returns every price level on this side, ordered best to worst.
func (s *SideBook[T, P, N]) Levels() []*PriceLevel[T, P, N] {
	out := make([]*PriceLevel[T, P, N], 0, s.levels.Len())
	s.levels.Scan(func(lvl *PriceLevel[T, P, N]) bool {
		out = append(out, lvl)
		return true
	})
	return out
}

// Clone returns an independent SideBook whose levels hold independent
// clones of every resting order (via Order.Clone), so that mutating the
// clone — including calling Fill on its orders — never touches the real
// book. Used by the evaluator to simulate a batch (see internal/engine).
func (s *SideBook[T, P, N]) Clone() *SideBook[T, P, N] {
	clone := NewSideBook[T, P, N](s.isBuy)
	s.levels.Scan(func(lvl *PriceLevel[T, P, N]) bool {
		cloned := NewPriceLevel[T, P, N](lvl.price)
		for _, o := range lvl.orders {
			cloned.PushBack(o.Clone())
		}
		clone.levels.Set(cloned)
		return true
	})
	return clone
}
