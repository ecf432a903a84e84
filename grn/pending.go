package grn

import (
	"context"
	"sync"
)

// PendingQtyResult is the authoritative answer from the purchase order system.
type PendingQtyResult struct {
	IsValid            bool   `json:"is_valid"`
	PendingQty         int    `json:"pending_qty"`
	ExistingQtyOnDraft int    `json:"existing_qty_on_draft"`
	Message            string `json:"message"`
}

// PendingQtyChecker is the remote collaborator that re-checks a PO line's live
// pending quantity. The check subtracts quantities already recorded against
// the given draft so they are not double-counted.
type PendingQtyChecker interface {
	CheckPendingQty(ctx context.Context, poDetailsID int64, prospectiveQty int, draftID int64) (PendingQtyResult, error)
}

// PendingQtyValidator gates every quantity-affecting mutation. The locally
// cached pending quantity is advisory only; another receipt against the same
// PO line can complete at any time, so acceptance always requires a live
// round trip through the checker.
//
// Each PO line carries a monotonically increasing request token. A validation
// whose token has been superseded by the time its response arrives is
// discarded, which keeps late responses from applying against newer state.
type PendingQtyValidator struct {
	checker PendingQtyChecker

	mu     sync.Mutex
	tokens map[int64]uint64
}

func NewPendingQtyValidator(checker PendingQtyChecker) *PendingQtyValidator {
	return &PendingQtyValidator{
		checker: checker,
		tokens:  make(map[int64]uint64),
	}
}

func (v *PendingQtyValidator) issueToken(poDetailsID int64) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[poDetailsID]++
	return v.tokens[poDetailsID]
}

func (v *PendingQtyValidator) tokenIsCurrent(poDetailsID int64, token uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tokens[poDetailsID] == token
}

// CancelAll invalidates every in-flight validation. Called when the draft is
// reset or the user navigates away from the intake step.
func (v *PendingQtyValidator) CancelAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id := range v.tokens {
		v.tokens[id]++
	}
}

// Validate performs the authoritative re-check for a prospective total
// quantity on a PO line. cachedPending is the advisory figure from the
// candidate's PO reference; it only classifies a rejection as stale data
// versus a plain over-receipt.
//
// Ties are accepted: prospective == pending means the line is received in
// full, a valid terminal state.
func (v *PendingQtyValidator) Validate(ctx context.Context, poDetailsID int64, prospectiveQty int, draftID int64, cachedPending int) (PendingQtyResult, error) {
	token := v.issueToken(poDetailsID)

	res, err := v.checker.CheckPendingQty(ctx, poDetailsID, prospectiveQty, draftID)
	if err != nil {
		return PendingQtyResult{}, &TransportError{Op: "validate pending quantity", Err: err}
	}

	if !v.tokenIsCurrent(poDetailsID, token) {
		return PendingQtyResult{}, ErrValidationSuperseded
	}

	if !res.IsValid {
		return res, &QuantityError{
			PoDetailsID: poDetailsID,
			Requested:   prospectiveQty,
			Pending:     res.PendingQty,
			Stale:       prospectiveQty <= cachedPending,
		}
	}

	return res, nil
}
