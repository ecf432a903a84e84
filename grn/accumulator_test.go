package grn

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameCandidate(barcode string, price float64) CandidateItem {
	return CandidateItem{
		DetailID:    100,
		Barcode:     barcode,
		ProductType: ProductFrame,
		ItemName:    "Aviator Classic",
		UnitPrice:   decimal.NewFromFloat(price),
		MRP:         decimal.NewFromFloat(price * 1.6),
		TaxSlabs:    []TaxSlab{slab(1000, 18, 12)},
		Frame:       &FrameDetail{Brand: "RayBan", Model: "RB3025"},
	}
}

func poCandidate(barcode string, poDetailsID int64, ordered, received, cancelled int) CandidateItem {
	c := frameCandidate(barcode, 500)
	c.POLine = &POLineRef{
		PoDetailsID:  poDetailsID,
		PoNumber:     "PO-2601-0007",
		OrderedQty:   ordered,
		ReceivedQty:  received,
		CancelledQty: cancelled,
	}
	return c
}

func TestAddCombinedMergesRepeatedScans(t *testing.T) {
	fx := newTestSession()
	fx.session.Draft.EntryMode = EntryCombined
	ctx := context.Background()

	// Scenario: scanning barcode B100 twice with qty 1 yields one line qty 2.
	first := frameCandidate("B100", 450)
	second := frameCandidate("B100", 475) // price differs, first accepted price wins

	_, err := fx.session.Accumulator.Add(ctx, first, 1)
	require.NoError(t, err)
	_, err = fx.session.Accumulator.Add(ctx, second, 1)
	require.NoError(t, err)

	lines := fx.session.Accumulator.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, decimal.NewFromFloat(450).Equal(lines[0].UnitPrice))
}

func TestAddCombinedEqualsSingleBulkAdd(t *testing.T) {
	ctx := context.Background()

	repeated := newTestSession()
	for i := 0; i < 5; i++ {
		_, err := repeated.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 1)
		require.NoError(t, err)
	}

	bulk := newTestSession()
	_, err := bulk.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 5)
	require.NoError(t, err)

	rl := repeated.session.Accumulator.Lines()
	bl := bulk.session.Accumulator.Lines()
	require.Len(t, rl, 1)
	require.Len(t, bl, 1)
	assert.Equal(t, bl[0].Quantity, rl[0].Quantity)
}

func TestAddSeparateNeverMerges(t *testing.T) {
	fx := newTestSession()
	fx.session.Draft.EntryMode = EntrySeparate
	ctx := context.Background()

	l1, err := fx.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 1)
	require.NoError(t, err)
	l2, err := fx.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 1)
	require.NoError(t, err)

	require.Len(t, fx.session.Accumulator.Lines(), 2)
	assert.NotEqual(t, l1.LineID, l2.LineID)

	// Removing one leaves the other untouched.
	require.NoError(t, fx.session.Accumulator.Remove(l1.LineID))
	lines := fx.session.Accumulator.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, l2.LineID, lines[0].LineID)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestCombinedMergeKeyIncludesBatch(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	a := frameCandidate("CL200", 300)
	a.Batch = &BatchCode{Code: "LOT-A", DetailID: a.DetailID}
	b := frameCandidate("CL200", 300)
	b.Batch = &BatchCode{Code: "LOT-B", DetailID: b.DetailID}

	_, err := fx.session.Accumulator.Add(ctx, a, 1)
	require.NoError(t, err)
	_, err = fx.session.Accumulator.Add(ctx, b, 1)
	require.NoError(t, err)

	assert.Len(t, fx.session.Accumulator.Lines(), 2)
}

func TestAddAgainstPOPendingQuantity(t *testing.T) {
	// PO line: ordered 10, received 7, cancelled 0 -> pending 3.
	fx := newTestSession()
	fx.checker.pending[77] = 3
	ctx := context.Background()

	line, err := fx.session.Accumulator.Add(ctx, poCandidate("B200", 77, 10, 7, 0), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	// Raising the same line to 4 must be rejected with the authoritative figure.
	err = fx.session.Accumulator.UpdateQuantity(ctx, line.LineID, 4)
	var qerr *QuantityError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, 3, qerr.Pending)
	assert.Equal(t, 4, qerr.Requested)

	// Prior quantity retained.
	assert.Equal(t, 3, fx.session.Accumulator.Lines()[0].Quantity)
}

func TestRejectedAddLeavesNoLine(t *testing.T) {
	fx := newTestSession()
	fx.checker.pending[77] = 2
	ctx := context.Background()

	_, err := fx.session.Accumulator.Add(ctx, poCandidate("B200", 77, 10, 8, 0), 5)
	var qerr *QuantityError
	require.ErrorAs(t, err, &qerr)
	assert.Empty(t, fx.session.Accumulator.Lines())
}

func TestRemoveThenRaiseWithinPending(t *testing.T) {
	// Two lines on the same PO line (2 and 3, pending 5); removing the first
	// then raising the second to 4 stays within pending.
	fx := newTestSession()
	fx.session.Draft.EntryMode = EntrySeparate
	fx.checker.pending[88] = 5
	ctx := context.Background()

	l1, err := fx.session.Accumulator.Add(ctx, poCandidate("B300", 88, 5, 0, 0), 2)
	require.NoError(t, err)
	l2, err := fx.session.Accumulator.Add(ctx, poCandidate("B300", 88, 5, 0, 0), 3)
	require.NoError(t, err)

	require.NoError(t, fx.session.Accumulator.Remove(l1.LineID))
	require.NoError(t, fx.session.Accumulator.UpdateQuantity(ctx, l2.LineID, 4))
	assert.Equal(t, 4, fx.session.Accumulator.Lines()[0].Quantity)
}

func TestTieIsAccepted(t *testing.T) {
	fx := newTestSession()
	fx.checker.pending[77] = 3
	ctx := context.Background()

	// prospective == pending: received in full, a valid terminal state.
	_, err := fx.session.Accumulator.Add(ctx, poCandidate("B200", 77, 10, 7, 0), 3)
	assert.NoError(t, err)
}

func TestBatchTrackedCandidateCannotBypassResolver(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	cand := frameCandidate("CL100", 300)
	cand.ProductType = ProductContactLens
	cand.BatchRequired = true

	_, err := fx.session.Accumulator.Add(ctx, cand, 1)
	assert.ErrorIs(t, err, ErrBatchRequired)
	assert.Empty(t, fx.session.Accumulator.Lines())
}

func TestUpdatePriceTracksTax(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	cand := frameCandidate("B100", 450)
	cand.TaxSlabs = []TaxSlab{slab(1000, 18, 12), slab(5000, 12, 18)}

	line, err := fx.session.Accumulator.Add(ctx, cand, 1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(12).Equal(line.TaxPercent))

	require.NoError(t, fx.session.Accumulator.UpdatePrice(line.LineID, decimal.NewFromFloat(1200)))
	lines := fx.session.Accumulator.Lines()
	assert.True(t, decimal.NewFromFloat(18).Equal(lines[0].TaxPercent))
}

func TestInvalidQuantityAndUnknownLine(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	_, err := fx.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 0)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.ErrorIs(t, fx.session.Accumulator.UpdateQuantity(ctx, 424242, 1), ErrLineNotFound)
	assert.ErrorIs(t, fx.session.Accumulator.Remove(424242), ErrLineNotFound)
	assert.ErrorIs(t, fx.session.Accumulator.UpdatePrice(424242, decimal.NewFromInt(10)), ErrLineNotFound)
}
