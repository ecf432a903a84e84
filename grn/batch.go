package grn

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// BatchLookup lists the batches available for a product detail at a location.
// The listing is read-only, so results are cached for the draft's lifetime.
type BatchLookup interface {
	BatchesForDetail(ctx context.Context, detailID, locationID int64) ([]BatchCode, error)
}

type ResolveMode string

const (
	ResolvePick ResolveMode = "pick"
	ResolveScan ResolveMode = "scan"
)

// BatchResolver mediates batch selection for batch-tracked candidates. A
// candidate is held in a pending buffer, distinct from the draft's committed
// lines, until a concrete batch is resolved; held candidates never appear in
// totals or the review screen.
type BatchResolver struct {
	lookup     BatchLookup
	locationID int64

	mu      sync.Mutex
	cache   map[int64][]BatchCode
	pending map[int64]CandidateItem
}

func NewBatchResolver(lookup BatchLookup, locationID int64) *BatchResolver {
	return &BatchResolver{
		lookup:     lookup,
		locationID: locationID,
		cache:      make(map[int64][]BatchCode),
		pending:    make(map[int64]CandidateItem),
	}
}

func (r *BatchResolver) RequiresBatch(cand CandidateItem) bool {
	return cand.BatchRequired && cand.Batch == nil
}

// Hold parks a batch-tracked candidate until Resolve is called for it.
func (r *BatchResolver) Hold(cand CandidateItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[cand.DetailID] = cand
}

// Pending returns the held candidates, for rendering the batch prompt.
func (r *BatchResolver) Pending() []CandidateItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]CandidateItem, 0, len(r.pending))
	for _, c := range r.pending {
		out = append(out, c)
	}
	return out
}

// Batches lists the known batches for a detail id, cached per draft.
func (r *BatchResolver) Batches(ctx context.Context, detailID int64) ([]BatchCode, error) {
	r.mu.Lock()
	if cached, ok := r.cache[detailID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	batches, err := r.lookup.BatchesForDetail(ctx, detailID, r.locationID)
	if err != nil {
		return nil, &TransportError{Op: "fetch batches", Err: err}
	}

	r.mu.Lock()
	r.cache[detailID] = batches
	r.mu.Unlock()
	return batches, nil
}

// Resolve matches a picked or scanned value against the batch set for a held
// candidate. Pick requires an exact code match; scan matches the code
// case-insensitively. On success the candidate leaves the buffer carrying a
// fully populated batch code and is eligible for the accumulator.
func (r *BatchResolver) Resolve(ctx context.Context, detailID int64, mode ResolveMode, value string) (CandidateItem, error) {
	r.mu.Lock()
	cand, held := r.pending[detailID]
	r.mu.Unlock()
	if !held {
		return CandidateItem{}, &ValidationError{Field: "detail_id", Message: "no pending batch selection for this item"}
	}

	batches, err := r.Batches(ctx, detailID)
	if err != nil {
		return CandidateItem{}, err
	}

	var match *BatchCode
	for i := range batches {
		switch mode {
		case ResolvePick:
			if batches[i].Code == value {
				match = &batches[i]
			}
		case ResolveScan:
			if strings.EqualFold(batches[i].Code, value) {
				match = &batches[i]
			}
		}
		if match != nil {
			break
		}
	}
	if match == nil {
		return CandidateItem{}, fmt.Errorf("%w: %q", ErrBatchNotFound, value)
	}

	r.mu.Lock()
	delete(r.pending, detailID)
	r.mu.Unlock()

	batch := *match
	cand.Batch = &batch
	return cand, nil
}

// Clear drops the pending buffer and the batch cache, on draft reset.
func (r *BatchResolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[int64][]BatchCode)
	r.pending = make(map[int64]CandidateItem)
}
