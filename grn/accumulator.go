package grn

import (
	"context"
	"optic-app/controllers/idgen"
	"sync"

	"github.com/shopspring/decimal"
)

// IDFunc generates line ids. Overridable in tests.
type IDFunc func() int64

// Accumulator owns the mutable collection of draft receipt lines and applies
// the entry-mode merge policy. Every quantity-affecting mutation is
// all-or-nothing: nothing is created or incremented until the pending
// quantity validator has accepted the prospective total.
type Accumulator struct {
	mu        sync.Mutex
	draft     *ReceiptDraft
	validator *PendingQtyValidator
	newID     IDFunc
}

func NewAccumulator(draft *ReceiptDraft, validator *PendingQtyValidator) *Accumulator {
	return &Accumulator{
		draft:     draft,
		validator: validator,
		newID:     idgen.GenerateID,
	}
}

// Add accepts a candidate into the draft.
//
// Combined mode merges into an existing line with the same product identity
// and batch code; separate mode always appends a fresh line. Candidates that
// carry a PO reference are validated against the live pending quantity before
// any state changes. Batch-tracked candidates must arrive with a resolved
// batch code (the batch resolver's buffer is the only way to get one).
func (a *Accumulator) Add(ctx context.Context, cand CandidateItem, qty int) (*ReceiptLine, error) {
	if qty <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "quantity must be a positive integer"}
	}
	if cand.BatchRequired && cand.Batch == nil {
		return nil, ErrBatchRequired
	}

	if cand.POLine != nil {
		a.mu.Lock()
		prospective := a.draft.qtyForPOLine(cand.POLine.PoDetailsID, 0) + qty
		a.mu.Unlock()

		// Suspend until validated; the committed draft is not touched before
		// the authoritative answer arrives.
		if _, err := a.validator.Validate(ctx, cand.POLine.PoDetailsID, prospective, a.draft.DraftID, cand.POLine.PendingQty()); err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.draft.EntryMode == EntryCombined {
		key := cand.identity()
		for _, l := range a.draft.Lines {
			if l.identity() == key {
				l.Quantity += qty
				return l, nil
			}
		}
	}

	line := &ReceiptLine{
		LineID:      a.newID(),
		DetailID:    cand.DetailID,
		Barcode:     cand.Barcode,
		ProductType: cand.ProductType,
		ItemName:    cand.ItemName,
		POLine:      cand.POLine,
		Batch:       cand.Batch,
		Quantity:    qty,
		UnitPrice:   cand.UnitPrice,
		MRP:         cand.MRP,
		TaxSlabs:    cand.TaxSlabs,
		TaxPercent:  ResolveTaxPercent(cand.TaxSlabs, cand.UnitPrice),
	}
	if cand.Lens != nil {
		line.FittingCharge = cand.Lens.FittingCharge
		line.FittingTaxPercent = cand.Lens.FittingTaxPercent
	}
	a.draft.Lines = append(a.draft.Lines, line)

	return line, nil
}

// UpdateQuantity re-validates the prospective total for the line's PO line
// (all other lines referencing it, plus the new quantity) before applying.
// On rejection the prior quantity is retained.
func (a *Accumulator) UpdateQuantity(ctx context.Context, lineID int64, newQty int) error {
	if newQty <= 0 {
		return &ValidationError{Field: "quantity", Message: "quantity must be a positive integer"}
	}

	a.mu.Lock()
	line := a.draft.lineByID(lineID)
	if line == nil {
		a.mu.Unlock()
		return ErrLineNotFound
	}
	var poDetailsID int64
	var prospective, cachedPending int
	if line.POLine != nil {
		poDetailsID = line.POLine.PoDetailsID
		prospective = a.draft.qtyForPOLine(poDetailsID, lineID) + newQty
		cachedPending = line.POLine.PendingQty()
	}
	a.mu.Unlock()

	if poDetailsID != 0 {
		if _, err := a.validator.Validate(ctx, poDetailsID, prospective, a.draft.DraftID, cachedPending); err != nil {
			return err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// Re-resolve; the line may have been removed while the check was in flight.
	line = a.draft.lineByID(lineID)
	if line == nil {
		return ErrLineNotFound
	}
	line.Quantity = newQty
	return nil
}

// Remove is unconditional; removal only decreases outstanding totals.
func (a *Accumulator) Remove(lineID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, l := range a.draft.Lines {
		if l.LineID == lineID {
			a.draft.Lines = append(a.draft.Lines[:i], a.draft.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// UpdatePrice is unconditional with respect to the quantity invariant. The
// line's tax percent tracks the effective unit price.
func (a *Accumulator) UpdatePrice(lineID int64, newPrice decimal.Decimal) error {
	if newPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Message: "price cannot be negative"}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	line := a.draft.lineByID(lineID)
	if line == nil {
		return ErrLineNotFound
	}
	line.UnitPrice = newPrice
	line.TaxPercent = ResolveTaxPercent(line.TaxSlabs, newPrice)
	return nil
}

// Lines returns a snapshot copy for rendering.
func (a *Accumulator) Lines() []ReceiptLine {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]ReceiptLine, 0, len(a.draft.Lines))
	for _, l := range a.draft.Lines {
		out = append(out, *l)
	}
	return out
}
