package engine

import "errors"

// Error kinds from spec.md §7. DuplicateId, UnknownId and InvalidOrder are
// per-op eval failures; ErrInconsistent and ErrPoisoned are fatal apply-time
// failures — see OrderBook.Apply.
var (
	// ErrDuplicateID is returned when Insert names an id already resting,
	// or already staged to rest by an earlier op in the same batch.
	ErrDuplicateID = errors.New("engine: duplicate order id")

	// ErrUnknownID is returned when Cancel/Modify names an id that is not
	// resting and was not staged to rest by an earlier op in the batch.
	ErrUnknownID = errors.New("engine: unknown order id")

	// ErrInvalidOrder is returned when an order fails its own invariant
	// (remaining == 0, remaining > quantity) at insert time.
	ErrInvalidOrder = errors.New("engine: invalid order")

	// ErrInconsistent means Apply was asked to replay an instruction that
	// does not match live book state — an evaluator bug or a violation of
	// the eval-then-apply contract (§5). Fatal: the OrderBook poisons
	// itself.
	ErrInconsistent = errors.New("engine: book inconsistency")

	// ErrPoisoned is returned by every call on an OrderBook that has
	// already hit ErrInconsistent.
	ErrPoisoned = errors.New("engine: order book poisoned by a prior inconsistency")
)
