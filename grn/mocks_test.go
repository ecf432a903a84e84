package grn

import (
	"context"
	"sync"
)

// fakeChecker implements PendingQtyChecker over an in-memory PO line table,
// mirroring the authoritative rule: valid when prospective <= pending, ties
// accepted.
type fakeChecker struct {
	mu      sync.Mutex
	pending map[int64]int
	onDraft map[int64]int
	err     error
	calls   int

	// gate, when set, is closed by the test to release an in-flight check;
	// started receives one value as the check begins.
	gate    chan struct{}
	started chan struct{}
}

func newFakeChecker() *fakeChecker {
	return &fakeChecker{pending: make(map[int64]int), onDraft: make(map[int64]int)}
}

func (f *fakeChecker) CheckPendingQty(ctx context.Context, poDetailsID int64, prospectiveQty int, draftID int64) (PendingQtyResult, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return PendingQtyResult{}, f.err
	}
	pending := f.pending[poDetailsID]
	res := PendingQtyResult{
		IsValid:            prospectiveQty <= pending,
		PendingQty:         pending,
		ExistingQtyOnDraft: f.onDraft[poDetailsID],
	}
	if !res.IsValid {
		res.Message = "requested quantity exceeds pending"
	}
	return res, nil
}

type fakeBatchLookup struct {
	mu      sync.Mutex
	batches map[int64][]BatchCode
	err     error
	calls   int
}

func newFakeBatchLookup() *fakeBatchLookup {
	return &fakeBatchLookup{batches: make(map[int64][]BatchCode)}
}

func (f *fakeBatchLookup) BatchesForDetail(ctx context.Context, detailID, locationID int64) ([]BatchCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.batches[detailID], nil
}

type fakeDocCheck struct {
	taken map[string]bool
	err   error
}

func (f *fakeDocCheck) DocumentNumberExists(ctx context.Context, vendorID int64, docNo string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.taken[docNo], nil
}

// fakeVendors marks vendors as challan-only; everyone else tracks quantities
// and prices.
type fakeVendors struct {
	challanOnly map[int64]bool
	err         error
}

func (f *fakeVendors) QtyPriceApplicable(ctx context.Context, vendorID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.challanOnly[vendorID], nil
}

type fakeFinder struct {
	draftID int64
	lines   []*ReceiptLine
	err     error
}

func (f *fakeFinder) FindOpenDraft(ctx context.Context, vendorID int64, againstPO bool) (int64, []*ReceiptLine, error) {
	return f.draftID, f.lines, f.err
}

type fakeFinalizer struct {
	saveErr     error
	completeErr error
	completed   []CommitPayload
	savedDraft  int64
}

func (f *fakeFinalizer) SaveDraftLines(ctx context.Context, payload CommitPayload) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	if f.savedDraft == 0 {
		f.savedDraft = 9001
	}
	return f.savedDraft, nil
}

func (f *fakeFinalizer) CompleteReceipt(ctx context.Context, payload CommitPayload) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, payload)
	return nil
}

func (f *fakeFinalizer) DeleteDraftLine(ctx context.Context, lineID int64) error { return nil }

type sessionFixture struct {
	session   *Session
	checker   *fakeChecker
	lookup    *fakeBatchLookup
	docs      *fakeDocCheck
	finder    *fakeFinder
	vendors   *fakeVendors
	finalizer *fakeFinalizer
}

func newTestSession() *sessionFixture {
	fx := &sessionFixture{
		checker:   newFakeChecker(),
		lookup:    newFakeBatchLookup(),
		docs:      &fakeDocCheck{taken: make(map[string]bool)},
		finder:    &fakeFinder{},
		vendors:   &fakeVendors{challanOnly: make(map[int64]bool)},
		finalizer: &fakeFinalizer{},
	}
	fx.session = NewSession(1, Ports{
		PendingQty: fx.checker,
		Batches:    fx.lookup,
		DocNumbers: fx.docs,
		Drafts:     fx.finder,
		Vendors:    fx.vendors,
		Finalizer:  fx.finalizer,
	})

	// Deterministic line ids for assertions.
	var nextID int64
	fx.session.Accumulator.newID = func() int64 {
		nextID++
		return nextID
	}

	return fx
}
