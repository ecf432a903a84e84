package grn

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransportFailure(t *testing.T) {
	fx := newTestSession()
	fx.checker.err = errors.New("connection refused")
	ctx := context.Background()

	_, err := fx.session.Accumulator.Add(ctx, poCandidate("B200", 77, 10, 7, 0), 1)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)

	// No partial state left behind; retry is safe.
	assert.Empty(t, fx.session.Accumulator.Lines())

	fx.checker.err = nil
	fx.checker.pending[77] = 3
	_, err = fx.session.Accumulator.Add(ctx, poCandidate("B200", 77, 10, 7, 0), 1)
	assert.NoError(t, err)
}

func TestRejectionMarksStaleWhenCachedPendingAllowed(t *testing.T) {
	fx := newTestSession()
	// Candidate was fetched when pending was 3, but a concurrent receipt has
	// since taken the line down to 1.
	fx.checker.pending[77] = 1
	ctx := context.Background()

	_, err := fx.session.Accumulator.Add(ctx, poCandidate("B200", 77, 10, 7, 0), 2)
	var qerr *QuantityError
	require.ErrorAs(t, err, &qerr)
	assert.True(t, qerr.Stale)
	assert.Equal(t, 1, qerr.Pending)
}

func TestRejectionNotStaleWhenOverCachedPending(t *testing.T) {
	fx := newTestSession()
	fx.checker.pending[77] = 3
	ctx := context.Background()

	_, err := fx.session.Accumulator.Add(ctx, poCandidate("B200", 77, 10, 7, 0), 5)
	var qerr *QuantityError
	require.ErrorAs(t, err, &qerr)
	assert.False(t, qerr.Stale)
}

func TestSupersededValidationIsDiscarded(t *testing.T) {
	checker := newFakeChecker()
	checker.pending[77] = 10
	validator := NewPendingQtyValidator(checker)
	ctx := context.Background()

	gate := make(chan struct{})
	started := make(chan struct{}, 1)
	checker.gate = gate
	checker.started = started

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = validator.Validate(ctx, 77, 2, 0, 10)
	}()

	// A newer mutation for the same PO line supersedes the in-flight one.
	<-started
	validator.CancelAll()
	close(gate)
	wg.Wait()

	assert.ErrorIs(t, firstErr, ErrValidationSuperseded)

	checker.gate = nil
	checker.started = nil
	_, err := validator.Validate(ctx, 77, 2, 0, 10)
	assert.NoError(t, err)
}

func TestCancelAllOnRetreatDropsLateResponses(t *testing.T) {
	fx := newTestSession()
	fx.checker.pending[77] = 10
	ctx := context.Background()

	// Move the workflow to item intake.
	fx.session.Draft.VendorID = 5
	fx.session.Draft.DocumentNumber = "INV-1"
	fx.session.Draft.DocumentDate = "2026-08-01"
	require.NoError(t, fx.session.Workflow.Advance(ctx))
	require.NoError(t, fx.session.Workflow.SetHeaderField(FieldProductType, string(ProductFrame)))
	require.NoError(t, fx.session.Workflow.Advance(ctx))
	require.Equal(t, StepItemIntake, fx.session.Workflow.CurrentStep())

	gate := make(chan struct{})
	started := make(chan struct{}, 1)
	fx.checker.gate = gate
	fx.checker.started = started

	var wg sync.WaitGroup
	wg.Add(1)
	var addErr error
	go func() {
		defer wg.Done()
		_, addErr = fx.session.Accumulator.Add(ctx, poCandidate("B200", 77, 10, 0, 0), 1)
	}()

	// Navigating away cancels the in-flight validation.
	<-started
	fx.session.Workflow.Retreat()
	close(gate)
	wg.Wait()

	assert.ErrorIs(t, addErr, ErrValidationSuperseded)
	assert.Empty(t, fx.session.Accumulator.Lines())
}

func TestIndependentPOLinesValidateIndependently(t *testing.T) {
	fx := newTestSession()
	fx.session.Draft.EntryMode = EntrySeparate
	fx.checker.pending[1] = 5
	fx.checker.pending[2] = 0
	ctx := context.Background()

	_, err := fx.session.Accumulator.Add(ctx, poCandidate("B1", 1, 5, 0, 0), 2)
	require.NoError(t, err)

	// A failed validation on one PO line must not roll back unrelated lines.
	_, err = fx.session.Accumulator.Add(ctx, poCandidate("B2", 2, 5, 5, 0), 1)
	var qerr *QuantityError
	require.ErrorAs(t, err, &qerr)

	lines := fx.session.Accumulator.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}
