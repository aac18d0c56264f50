package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobforge/internal/book"
	"lobforge/internal/engine"
	"lobforge/internal/sample"
)

// --- Setup & helpers, in the teacher's internal/tests/orderbook_test.go style ---

func newBook() *engine.OrderBook[string, int64, uint64] {
	return engine.New[string, int64, uint64]()
}

func sideOf(buy bool) sample.Side {
	if buy {
		return sample.Buy
	}
	return sample.Sell
}

// order builds a sample order with an explicit, test-readable id instead of
// a random UUID, so scenario tables can name makers/takers by small ints.
func order(id string, buy bool, price int64, qty uint64) *sample.Order {
	return &sample.Order{UUID: id, Side: sideOf(buy), TickPrice: price, Qty: qty, Rem: qty}
}

func insertOp(o *sample.Order) engine.Op[string, int64, uint64] {
	return engine.Insert[string, int64, uint64](o)
}

func cancelOp(id string) engine.Op[string, int64, uint64] {
	return engine.Cancel[string, int64, uint64](id)
}

func process(t *testing.T, ob *engine.OrderBook[string, int64, uint64], ops ...engine.Op[string, int64, uint64]) []engine.Match[string, int64, uint64] {
	t.Helper()
	matches, err := ob.Process(ops)
	require.NoError(t, err)
	return matches
}

func levelRemaining(lvl *book.PriceLevel[string, int64, uint64]) []uint64 {
	out := make([]uint64, 0, lvl.Len())
	for _, o := range lvl.Orders() {
		out = append(out, o.Remaining())
	}
	return out
}

// --- spec.md §8 end-to-end scenarios ---

func TestScenario1_PartialFillAgainstBestAsk(t *testing.T) {
	ob := newBook()
	matches := process(t, ob,
		insertOp(order("1", false, 100, 10)),
		insertOp(order("2", false, 101, 5)),
		insertOp(order("3", true, 100, 4)),
	)

	require.Len(t, matches, 1)
	assert.Equal(t, engine.Match[string, int64, uint64]{MakerID: "1", TakerID: "3", Price: 100, Quantity: 4}, matches[0])

	asks := ob.Asks()
	require.Len(t, asks, 2)
	assert.EqualValues(t, 100, asks[0].Price())
	assert.Equal(t, []uint64{6}, levelRemaining(asks[0]))
	assert.EqualValues(t, 101, asks[1].Price())
	assert.Equal(t, []uint64{5}, levelRemaining(asks[1]))
	assert.Empty(t, ob.Bids())
}

func TestScenario2_SweepTwoLevels(t *testing.T) {
	ob := newBook()
	process(t, ob,
		insertOp(order("1", false, 100, 10)),
		insertOp(order("2", false, 101, 5)),
		insertOp(order("3", true, 100, 4)),
	)
	matches := process(t, ob, insertOp(order("4", true, 101, 10)))

	require.Len(t, matches, 2)
	assert.Equal(t, engine.Match[string, int64, uint64]{MakerID: "1", TakerID: "4", Price: 100, Quantity: 6}, matches[0])
	assert.Equal(t, engine.Match[string, int64, uint64]{MakerID: "2", TakerID: "4", Price: 101, Quantity: 4}, matches[1])

	asks := ob.Asks()
	require.Len(t, asks, 1)
	assert.EqualValues(t, 101, asks[0].Price())
	assert.Equal(t, []uint64{1}, levelRemaining(asks[0]))
	assert.Empty(t, ob.Bids())
}

func TestScenario3_SameLevelTimePriority(t *testing.T) {
	ob := newBook()
	matches := process(t, ob,
		insertOp(order("1", true, 50, 5)),
		insertOp(order("2", true, 50, 7)),
		insertOp(order("3", false, 50, 9)),
	)

	require.Len(t, matches, 2)
	assert.Equal(t, engine.Match[string, int64, uint64]{MakerID: "1", TakerID: "3", Price: 50, Quantity: 5}, matches[0])
	assert.Equal(t, engine.Match[string, int64, uint64]{MakerID: "2", TakerID: "3", Price: 50, Quantity: 4}, matches[1])

	bids := ob.Bids()
	require.Len(t, bids, 1)
	assert.Equal(t, []uint64{3}, levelRemaining(bids[0]))
	assert.Empty(t, ob.Asks())
}

func TestScenario4_CancelLeavesBookEmpty(t *testing.T) {
	ob := newBook()
	matches := process(t, ob,
		insertOp(order("1", true, 50, 5)),
		cancelOp("1"),
	)

	assert.Empty(t, matches)
	assert.Empty(t, ob.Bids())
	assert.Empty(t, ob.Asks())
}

func TestScenario5_ModifyAlwaysLosesTimePriority(t *testing.T) {
	ob := newBook()
	replacement := order("1", true, 50, 5)
	matches := process(t, ob,
		insertOp(order("1", true, 50, 5)),
		insertOp(order("2", true, 50, 5)),
		engine.Modify[string, int64, uint64]("1", replacement),
		insertOp(order("3", false, 50, 5)),
	)

	require.Len(t, matches, 1)
	assert.Equal(t, engine.Match[string, int64, uint64]{MakerID: "2", TakerID: "3", Price: 50, Quantity: 5}, matches[0])

	bids := ob.Bids()
	require.Len(t, bids, 1)
	orders := bids[0].Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "1", orders[0].ID())
	assert.EqualValues(t, 5, orders[0].Remaining())
}

func TestScenario6_CrossPriceIsMakersPrice(t *testing.T) {
	ob := newBook()
	matches := process(t, ob,
		insertOp(order("1", true, 100, 10)),
		insertOp(order("2", false, 99, 4)),
	)

	require.Len(t, matches, 1)
	assert.Equal(t, engine.Match[string, int64, uint64]{MakerID: "1", TakerID: "2", Price: 100, Quantity: 4}, matches[0])

	bids := ob.Bids()
	require.Len(t, bids, 1)
	assert.EqualValues(t, 100, bids[0].Price())
	assert.Equal(t, []uint64{6}, levelRemaining(bids[0]))
}

// --- boundary behaviors ---

func TestInsert_ExactSweepLeavesNoResidual(t *testing.T) {
	ob := newBook()
	process(t, ob, insertOp(order("1", false, 100, 10)))
	matches := process(t, ob, insertOp(order("2", true, 100, 10)))

	require.Len(t, matches, 1)
	assert.Empty(t, ob.Asks())
	assert.Empty(t, ob.Bids())
}

func TestInsert_CrossThenRestAtOwnPrice(t *testing.T) {
	ob := newBook()
	process(t, ob, insertOp(order("1", false, 100, 4)))
	matches := process(t, ob, insertOp(order("2", true, 101, 10)))

	require.Len(t, matches, 1)
	assert.Empty(t, ob.Asks())
	bids := ob.Bids()
	require.Len(t, bids, 1)
	assert.EqualValues(t, 101, bids[0].Price())
	assert.Equal(t, []uint64{6}, levelRemaining(bids[0]))
}

func TestCancel_BestLevelUpdatesBestPrice(t *testing.T) {
	ob := newBook()
	process(t, ob,
		insertOp(order("1", true, 101, 5)),
		insertOp(order("2", true, 100, 5)),
	)
	best, ok := ob.BestBid()
	require.True(t, ok)
	assert.EqualValues(t, 101, best)

	process(t, ob, cancelOp("1"))
	best, ok = ob.BestBid()
	require.True(t, ok)
	assert.EqualValues(t, 100, best)
}

func TestModify_UnchangedPriceStillMovesToTail(t *testing.T) {
	ob := newBook()
	replacement := order("1", true, 50, 5)
	process(t, ob,
		insertOp(order("1", true, 50, 5)),
		insertOp(order("2", true, 50, 5)),
	)
	_, err := ob.Process([]engine.Op[string, int64, uint64]{engine.Modify[string, int64, uint64]("1", replacement)})
	require.NoError(t, err)

	bids := ob.Bids()
	require.Len(t, bids, 1)
	orders := bids[0].Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, "2", orders[0].ID())
	assert.Equal(t, "1", orders[1].ID())
}

// --- errors (spec.md §7) ---

func TestInsert_DuplicateIDWithinBatch(t *testing.T) {
	ob := newBook()
	_, _, err := ob.Eval([]engine.Op[string, int64, uint64]{
		insertOp(order("1", true, 100, 5)),
		insertOp(order("1", true, 101, 5)),
	})
	assert.ErrorIs(t, err, engine.ErrDuplicateID)
	assert.Empty(t, ob.Bids(), "a failed eval must never mutate the book")
}

func TestCancel_UnknownID(t *testing.T) {
	ob := newBook()
	_, _, err := ob.Eval([]engine.Op[string, int64, uint64]{cancelOp("ghost")})
	assert.ErrorIs(t, err, engine.ErrUnknownID)
}

func TestInsert_InvalidOrderZeroRemaining(t *testing.T) {
	ob := newBook()
	bad := order("1", true, 100, 5)
	bad.Rem = 0
	_, _, err := ob.Eval([]engine.Op[string, int64, uint64]{insertOp(bad)})
	assert.ErrorIs(t, err, engine.ErrInvalidOrder)
}

// --- eval/apply properties (spec.md §8 round-trip laws) ---

func TestEval_IsPure(t *testing.T) {
	ob := newBook()
	process(t, ob,
		insertOp(order("1", false, 100, 10)),
		insertOp(order("2", true, 99, 3)),
	)

	before := snapshot(ob)
	_, _, err := ob.Eval([]engine.Op[string, int64, uint64]{insertOp(order("3", true, 100, 10))})
	require.NoError(t, err)
	assert.Equal(t, before, snapshot(ob), "Eval must leave the book unchanged")
}

func TestEval_IsDeterministic(t *testing.T) {
	build := func() *engine.OrderBook[string, int64, uint64] {
		ob := newBook()
		process(t, ob,
			insertOp(order("1", false, 100, 10)),
			insertOp(order("2", false, 101, 5)),
		)
		return ob
	}
	ops := []engine.Op[string, int64, uint64]{insertOp(order("3", true, 101, 12))}

	m1, i1, err1 := build().Eval(ops)
	m2, i2, err2 := build().Eval(ops)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, m1, m2)
	assert.Equal(t, i1, i2)
}

func TestApply_ReplayEquivalence(t *testing.T) {
	ops := []engine.Op[string, int64, uint64]{
		insertOp(order("1", false, 100, 10)),
		insertOp(order("2", false, 101, 5)),
		insertOp(order("3", true, 101, 12)),
	}

	batched := newBook()
	batchedMatches, err := batched.Process(ops)
	require.NoError(t, err)

	stepwise := newBook()
	var stepwiseMatches []engine.Match[string, int64, uint64]
	for _, op := range ops {
		m, err := stepwise.Process([]engine.Op[string, int64, uint64]{op})
		require.NoError(t, err)
		stepwiseMatches = append(stepwiseMatches, m...)
	}

	assert.Equal(t, batchedMatches, stepwiseMatches)
	assert.Equal(t, snapshot(batched), snapshot(stepwise))
}

// snapshot captures enough of the book to compare states by value —
// resting ids/remaining per side, best to worst — since *OrderBook itself
// isn't comparable.
type snapshotLevel struct {
	price int64
	ids   []string
	rem   []uint64
}

type bookSnapshot struct {
	bids []snapshotLevel
	asks []snapshotLevel
}

func snapshot(ob *engine.OrderBook[string, int64, uint64]) bookSnapshot {
	collect := func(levels []*book.PriceLevel[string, int64, uint64]) []snapshotLevel {
		out := make([]snapshotLevel, 0, len(levels))
		for _, lvl := range levels {
			sl := snapshotLevel{price: lvl.Price()}
			for _, o := range lvl.Orders() {
				sl.ids = append(sl.ids, o.ID())
				sl.rem = append(sl.rem, o.Remaining())
			}
			out = append(out, sl)
		}
		return out
	}
	return bookSnapshot{bids: collect(ob.Bids()), asks: collect(ob.Asks())}
}
