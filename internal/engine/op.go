package engine

import (
	"cmp"

	"lobforge/internal/book"
)

// OpKind distinguishes the three operations spec.md §4.5 defines.
type OpKind int

const (
	OpInsert OpKind = iota
	OpCancel
	OpModify
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpCancel:
		return "cancel"
	case OpModify:
		return "modify"
	default:
		return "unknown"
	}
}

// Op is one operation in an eval batch. Order is populated for Insert and
// Modify (as the replacement order); ID names the order to remove for
// Cancel and Modify.
//
// Modify departs from spec.md's literal Modify(id, new_price, new_quantity)
// signature: the Order capability is caller-supplied, so the engine has no
// factory to build a replacement order from raw scalars. The caller already
// holds a concrete order type, so Modify instead takes the pre-built
// replacement order directly (same id, new price/quantity, full remaining).
// This is documented as an open-question resolution in DESIGN.md.
type Op[T comparable, P cmp.Ordered, N book.Quantity] struct {
	Kind  OpKind
	Order book.Order[T, P, N]
	ID    T
}

func Insert[T comparable, P cmp.Ordered, N book.Quantity](order book.Order[T, P, N]) Op[T, P, N] {
	return Op[T, P, N]{Kind: OpInsert, Order: order, ID: order.ID()}
}

func Cancel[T comparable, P cmp.Ordered, N book.Quantity](id T) Op[T, P, N] {
	return Op[T, P, N]{Kind: OpCancel, ID: id}
}

// Modify cancels id and inserts replacement, which must carry the same id
// and a full remaining (remaining == quantity) — enforced by Eval.
func Modify[T comparable, P cmp.Ordered, N book.Quantity](id T, replacement book.Order[T, P, N]) Op[T, P, N] {
	return Op[T, P, N]{Kind: OpModify, Order: replacement, ID: id}
}
