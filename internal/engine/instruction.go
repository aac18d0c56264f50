package engine

import (
	"cmp"
	"fmt"

	"lobforge/internal/book"
)

// Instruction is one state-delta produced by Eval and consumed by Apply
// (spec.md §4.5/§4.6). The three variants below are the minimal set the
// spec suggests; each carries exactly the mechanics Apply needs, no more.
type Instruction[T comparable, P cmp.Ordered, N book.Quantity] interface {
	fmt.Stringer
	isInstruction()
}

// FillMaker reduces a resting order's remaining by Quantity. If that
// reaches zero, Apply removes it from its level (and the level from the
// side, if emptied) and erases its index entry.
type FillMaker[T comparable, P cmp.Ordered, N book.Quantity] struct {
	ID       T
	Quantity N
}

func (FillMaker[T, P, N]) isInstruction() {}
func (f FillMaker[T, P, N]) String() string {
	return fmt.Sprintf("FillMaker{id:%v qty:%v}", f.ID, f.Quantity)
}

// InsertRest inserts Order at the tail of its (side, price) level. Order
// already carries its post-match remaining (not its original quantity), so
// Apply is a pure mechanical replay with no arithmetic of its own.
type InsertRest[T comparable, P cmp.Ordered, N book.Quantity] struct {
	Order book.Order[T, P, N]
}

func (InsertRest[T, P, N]) isInstruction() {}
func (i InsertRest[T, P, N]) String() string {
	return fmt.Sprintf("InsertRest{id:%v price:%v remaining:%v}", i.Order.ID(), i.Order.Price(), i.Order.Remaining())
}

// RemoveResting cancels a resting order outright: used for Cancel and for
// the removal half of Modify.
type RemoveResting[T comparable, P cmp.Ordered, N book.Quantity] struct {
	ID T
}

func (RemoveResting[T, P, N]) isInstruction() {}
func (r RemoveResting[T, P, N]) String() string {
	return fmt.Sprintf("RemoveResting{id:%v}", r.ID)
}
