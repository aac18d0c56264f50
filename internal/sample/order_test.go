package sample_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lobforge/internal/sample"
)

func TestNew_RemainingStartsAtFullQuantity(t *testing.T) {
	o := sample.New(sample.Buy, 100, 50, "alice")
	assert.EqualValues(t, 50, o.Quantity())
	assert.EqualValues(t, 50, o.Remaining())
	assert.True(t, o.IsBuy())
	assert.NotEmpty(t, o.ID())
}

func TestFill_ReducesRemaining(t *testing.T) {
	o := sample.New(sample.Sell, 100, 50, "bob")
	o.Fill(20)
	assert.EqualValues(t, 30, o.Remaining())
	assert.EqualValues(t, 50, o.Quantity())
}

func TestFill_PanicsOnOverfill(t *testing.T) {
	o := sample.New(sample.Sell, 100, 10, "bob")
	assert.Panics(t, func() { o.Fill(11) })
}

func TestClone_IsIndependent(t *testing.T) {
	o := sample.New(sample.Buy, 100, 50, "alice")
	clone := o.Clone()
	clone.Fill(10)

	assert.EqualValues(t, 50, o.Remaining())
	assert.EqualValues(t, 40, clone.Remaining())
	assert.Equal(t, o.ID(), clone.ID())
}
