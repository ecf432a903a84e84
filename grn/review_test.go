package grn

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	frame := frameCandidate("B100", 500) // 12% slab
	_, err := fx.session.Accumulator.Add(ctx, frame, 2)
	require.NoError(t, err)

	lens := CandidateItem{
		DetailID:    200,
		Barcode:     "L200",
		ProductType: ProductLens,
		UnitPrice:   decimal.NewFromFloat(800),
		TaxSlabs:    []TaxSlab{slab(2000, 18, 5)},
		Lens: &LensDetail{
			FittingCharge:     decimal.NewFromFloat(100),
			FittingTaxPercent: decimal.NewFromFloat(18),
		},
	}
	_, err = fx.session.Accumulator.Add(ctx, lens, 1)
	require.NoError(t, err)

	totals := ComputeTotals(fx.session.Draft)
	require.True(t, totals.Applicable)
	assert.Equal(t, 3, totals.Quantity)

	// frame: 2*500 = 1000 gross, 120 gst
	// lens:  1*800 = 800 gross, 40 gst; fitting 100 gross, 18 gst
	assert.True(t, decimal.NewFromFloat(1900).Equal(totals.GrossValue), "gross %v", totals.GrossValue)
	assert.True(t, decimal.NewFromFloat(178).Equal(totals.GstValue), "gst %v", totals.GstValue)
	assert.True(t, decimal.NewFromFloat(2078).Equal(totals.NetValue), "net %v", totals.NetValue)
}

func TestTotalsSkippedForChallanOnlyVendor(t *testing.T) {
	fx := newTestSession()
	fx.session.Draft.QtyPriceApplicable = false
	ctx := context.Background()

	_, err := fx.session.Accumulator.Add(ctx, frameCandidate("B100", 500), 2)
	require.NoError(t, err)

	totals := ComputeTotals(fx.session.Draft)
	assert.False(t, totals.Applicable)
	assert.Equal(t, 0, totals.Quantity)
	assert.True(t, totals.NetValue.IsZero())
}

func TestBuildPayloadCarriesLineFields(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	cand := poCandidate("B200", 77, 10, 7, 0)
	fx.checker.pending[77] = 3
	line, err := fx.session.Accumulator.Add(ctx, cand, 3)
	require.NoError(t, err)

	clens := contactLensCandidate(500)
	clens.Batch = &BatchCode{Code: "LOT-2024A", Expiry: "2027-01-31", DetailID: 500}
	_, err = fx.session.Accumulator.Add(ctx, clens, 1)
	require.NoError(t, err)

	payload := BuildPayload(fx.session.Draft)
	require.Len(t, payload.Lines, 2)

	first := payload.Lines[0]
	assert.Equal(t, line.LineID, first.LineID)
	assert.Equal(t, int64(77), first.PoDetailsID)
	assert.Equal(t, "PO-2601-0007", first.PoNumber)
	assert.Equal(t, 3, first.Quantity)

	second := payload.Lines[1]
	assert.Equal(t, "LOT-2024A", second.BatchCode)
	assert.Equal(t, "2027-01-31", second.BatchExpiry)
	assert.Equal(t, ProductContactLens, second.ProductType)
}

func TestPayloadTaxReflectsPriceEdits(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	cand := frameCandidate("B100", 450)
	cand.TaxSlabs = []TaxSlab{slab(1000, 18, 12), slab(5000, 12, 18)}
	line, err := fx.session.Accumulator.Add(ctx, cand, 1)
	require.NoError(t, err)

	require.NoError(t, fx.session.Accumulator.UpdatePrice(line.LineID, decimal.NewFromFloat(1500)))

	payload := BuildPayload(fx.session.Draft)
	assert.True(t, decimal.NewFromFloat(18).Equal(payload.Lines[0].TaxPercent))
}

func TestProjectionCopiesHeader(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	fillHeader(fx)
	_, err := fx.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 2)
	require.NoError(t, err)

	proj := fx.session.Project()
	require.Len(t, proj.Lines, 1)
	assert.Nil(t, proj.Draft.Lines)

	// Mutating the projection must not reach the live draft.
	proj.Draft.DocumentNumber = "INV-OTHER"
	proj.Lines[0].Quantity = 99
	assert.Equal(t, "INV-1001", fx.session.Draft.DocumentNumber)
	assert.Equal(t, 2, fx.session.Draft.Lines[0].Quantity)
}

func TestCommitSuccessResetsDraft(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	fillHeader(fx)
	_, err := fx.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 2)
	require.NoError(t, err)

	require.NoError(t, fx.session.Committer.Commit(ctx))
	require.Len(t, fx.finalizer.completed, 1)
	assert.Len(t, fx.finalizer.completed[0].Lines, 1)

	assert.Empty(t, fx.session.Draft.Lines)
	assert.Equal(t, "", fx.session.Draft.DocumentNumber)
	assert.Equal(t, StepHeaderInfo, fx.session.Workflow.CurrentStep())
}

func TestCommitFailureLeavesDraftUntouched(t *testing.T) {
	fx := newTestSession()
	fx.finalizer.completeErr = errors.New("finalize endpoint unavailable")
	ctx := context.Background()

	fillHeader(fx)
	_, err := fx.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 2)
	require.NoError(t, err)

	before, err := json.Marshal(fx.session.Draft)
	require.NoError(t, err)

	commitErr := fx.session.Committer.Commit(ctx)
	var cerr *CommitError
	require.ErrorAs(t, commitErr, &cerr)

	after, err := json.Marshal(fx.session.Draft)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	// Retry succeeds without re-entering data.
	fx.finalizer.completeErr = nil
	assert.NoError(t, fx.session.Committer.Commit(ctx))
}

func TestSaveDraftAssignsDraftID(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	_, err := fx.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 1)
	require.NoError(t, err)

	require.NoError(t, fx.session.Committer.SaveDraft(ctx))
	assert.Equal(t, int64(9001), fx.session.Draft.DraftID)

	fx.finalizer.saveErr = errors.New("db down")
	err = fx.session.Committer.SaveDraft(ctx)
	var terr *TransportError
	assert.ErrorAs(t, err, &terr)
	assert.Equal(t, int64(9001), fx.session.Draft.DraftID)
}
