package grn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillHeader(fx *sessionFixture) {
	fx.session.Draft.VendorID = 5
	fx.session.Draft.DocumentNumber = "INV-1001"
	fx.session.Draft.DocumentDate = "2026-08-15"
}

func TestAdvanceBlockedUntilHeaderComplete(t *testing.T) {
	fx := newTestSession()
	ctx := context.Background()

	err := fx.session.Workflow.Advance(ctx)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "vendor_id", verr.Field)
	assert.Equal(t, StepHeaderInfo, fx.session.Workflow.CurrentStep())

	fx.session.Draft.VendorID = 5
	err = fx.session.Workflow.Advance(ctx)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "document_number", verr.Field)

	fillHeader(fx)
	require.NoError(t, fx.session.Workflow.Advance(ctx))
	assert.Equal(t, StepProductType, fx.session.Workflow.CurrentStep())

	// The failed attempts are surfaced via the projection.
	assert.Empty(t, fx.session.Workflow.ValidationErrors())
}

func TestOrderModeStepOnlyWhenAgainstPO(t *testing.T) {
	ctx := context.Background()

	plain := newTestSession()
	fillHeader(plain)
	require.NoError(t, plain.session.Workflow.Advance(ctx))
	require.NoError(t, plain.session.Workflow.SetHeaderField(FieldProductType, string(ProductFrame)))
	require.NoError(t, plain.session.Workflow.Advance(ctx))
	assert.Equal(t, StepItemIntake, plain.session.Workflow.CurrentStep())

	against := newTestSession()
	fillHeader(against)
	require.NoError(t, against.session.Workflow.SetHeaderField(FieldAgainstPO, true))
	require.NoError(t, against.session.Workflow.Advance(ctx))
	require.NoError(t, against.session.Workflow.SetHeaderField(FieldProductType, string(ProductFrame)))
	require.NoError(t, against.session.Workflow.Advance(ctx))
	assert.Equal(t, StepOrderMode, against.session.Workflow.CurrentStep())

	err := against.session.Workflow.Advance(ctx)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "order_mode", verr.Field)

	require.NoError(t, against.session.Workflow.SetHeaderField(FieldOrderMode, string(OrderModeSpecific)))
	require.NoError(t, against.session.Workflow.Advance(ctx))
	assert.Equal(t, StepItemIntake, against.session.Workflow.CurrentStep())
}

func TestDuplicateDocumentNumberBlocksAdvance(t *testing.T) {
	fx := newTestSession()
	fx.docs.taken["INV-1001"] = true
	fillHeader(fx)
	ctx := context.Background()

	err := fx.session.Workflow.Advance(ctx)
	assert.ErrorIs(t, err, ErrDuplicateDocumentNumber)
	assert.Equal(t, StepHeaderInfo, fx.session.Workflow.CurrentStep())

	errs := fx.session.Workflow.ValidationErrors()
	require.Len(t, errs, 1)
	assert.Equal(t, "document_number", errs[0].Field)
}

func TestDocCheckTransportFailure(t *testing.T) {
	fx := newTestSession()
	fx.docs.err = errors.New("timeout")
	fillHeader(fx)

	err := fx.session.Workflow.Advance(context.Background())
	var terr *TransportError
	assert.ErrorAs(t, err, &terr)
	assert.Equal(t, StepHeaderInfo, fx.session.Workflow.CurrentStep())
}

func TestVendorFlagLoadedOnHeaderAdvance(t *testing.T) {
	ctx := context.Background()

	tracked := newTestSession()
	fillHeader(tracked)
	require.NoError(t, tracked.session.Workflow.Advance(ctx))
	assert.True(t, tracked.session.Draft.QtyPriceApplicable)

	challan := newTestSession()
	challan.vendors.challanOnly[5] = true
	fillHeader(challan)
	require.NoError(t, challan.session.Workflow.Advance(ctx))
	assert.False(t, challan.session.Draft.QtyPriceApplicable)
	assert.False(t, ComputeTotals(challan.session.Draft).Applicable)

	down := newTestSession()
	down.vendors.err = errors.New("vendor master unreachable")
	fillHeader(down)
	var terr *TransportError
	require.ErrorAs(t, down.session.Workflow.Advance(ctx), &terr)
	assert.Equal(t, StepHeaderInfo, down.session.Workflow.CurrentStep())
}

func TestExistingDraftShortCircuitsToReview(t *testing.T) {
	fx := newTestSession()
	fx.finder.draftID = 4242
	fx.finder.lines = []*ReceiptLine{{LineID: 1, Barcode: "B100", Quantity: 2}}
	fillHeader(fx)

	require.NoError(t, fx.session.Workflow.Advance(context.Background()))
	assert.Equal(t, StepReview, fx.session.Workflow.CurrentStep())
	assert.Equal(t, int64(4242), fx.session.Draft.DraftID)
	require.Len(t, fx.session.Accumulator.Lines(), 1)
}

func TestRestoredLinesKeepStaleClassification(t *testing.T) {
	fx := newTestSession()
	fx.finder.draftID = 4242
	fx.finder.lines = []*ReceiptLine{{
		LineID:   1,
		Barcode:  "B200",
		Quantity: 2,
		POLine:   &POLineRef{PoDetailsID: 77, PoNumber: "PO-2601-0007", OrderedQty: 10, ReceivedQty: 7},
	}}
	fx.checker.pending[77] = 1
	fillHeader(fx)
	ctx := context.Background()

	require.NoError(t, fx.session.Workflow.Advance(ctx))
	require.Equal(t, StepReview, fx.session.Workflow.CurrentStep())

	// Another receipt consumed the pending quantity since the draft was
	// saved: the rejection must be reported as stale data, not over-receipt.
	err := fx.session.Accumulator.UpdateQuantity(ctx, 1, 3)
	var qerr *QuantityError
	require.ErrorAs(t, err, &qerr)
	assert.True(t, qerr.Stale)
	assert.Equal(t, 1, qerr.Pending)
	assert.Equal(t, 2, fx.session.Draft.Lines[0].Quantity)
}

func TestRetreatWalksBack(t *testing.T) {
	fx := newTestSession()
	fillHeader(fx)
	ctx := context.Background()

	require.NoError(t, fx.session.Workflow.Advance(ctx))
	require.NoError(t, fx.session.Workflow.SetHeaderField(FieldProductType, string(ProductLens)))
	require.NoError(t, fx.session.Workflow.Advance(ctx))
	require.Equal(t, StepItemIntake, fx.session.Workflow.CurrentStep())

	fx.session.Workflow.Retreat()
	assert.Equal(t, StepProductType, fx.session.Workflow.CurrentStep())
	fx.session.Workflow.Retreat()
	assert.Equal(t, StepHeaderInfo, fx.session.Workflow.CurrentStep())
	fx.session.Workflow.Retreat()
	assert.Equal(t, StepHeaderInfo, fx.session.Workflow.CurrentStep())
}

func TestItemIntakeRequiresLinesBeforeReview(t *testing.T) {
	fx := newTestSession()
	fillHeader(fx)
	ctx := context.Background()

	require.NoError(t, fx.session.Workflow.Advance(ctx))
	require.NoError(t, fx.session.Workflow.SetHeaderField(FieldProductType, string(ProductFrame)))
	require.NoError(t, fx.session.Workflow.Advance(ctx))

	err := fx.session.Workflow.Advance(ctx)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lines", verr.Field)

	_, err = fx.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 1)
	require.NoError(t, err)
	require.NoError(t, fx.session.Workflow.Advance(ctx))
	assert.Equal(t, StepReview, fx.session.Workflow.CurrentStep())
}

func TestHeaderFieldsFrozenOutsideOwningStep(t *testing.T) {
	fx := newTestSession()
	fillHeader(fx)
	ctx := context.Background()

	require.NoError(t, fx.session.Workflow.Advance(ctx))

	// Vendor is frozen after leaving the header step.
	err := fx.session.Workflow.SetHeaderField(FieldVendorID, int64(9))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Entry mode is only settable during item intake.
	err = fx.session.Workflow.SetHeaderField(FieldEntryMode, string(EntrySeparate))
	require.ErrorAs(t, err, &verr)

	require.NoError(t, fx.session.Workflow.SetHeaderField(FieldProductType, string(ProductFrame)))
	require.NoError(t, fx.session.Workflow.Advance(ctx))
	require.NoError(t, fx.session.Workflow.SetHeaderField(FieldEntryMode, string(EntrySeparate)))
	assert.Equal(t, EntrySeparate, fx.session.Draft.EntryMode)

	// Frozen once lines exist.
	_, err = fx.session.Accumulator.Add(ctx, frameCandidate("B100", 450), 1)
	require.NoError(t, err)
	err = fx.session.Workflow.SetHeaderField(FieldEntryMode, string(EntryCombined))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, EntrySeparate, fx.session.Draft.EntryMode)
}
