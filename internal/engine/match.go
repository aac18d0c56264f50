package engine

import (
	"cmp"

	"lobforge/internal/book"
)

// Match records one filled interaction between a resting maker and an
// aggressing taker, at the maker's price (spec.md §4.5).
type Match[T comparable, P cmp.Ordered, N book.Quantity] struct {
	MakerID  T
	TakerID  T
	Price    P
	Quantity N
}
