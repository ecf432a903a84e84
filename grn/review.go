package grn

import (
	"context"

	"github.com/shopspring/decimal"
)

// CommitLine is the persistence-ready projection of a receipt line.
type CommitLine struct {
	LineID            int64           `json:"line_id"`
	ProductType       ProductType     `json:"product_type"`
	DetailID          int64           `json:"detail_id"`
	Barcode           string          `json:"barcode"`
	ItemName          string          `json:"item_name"`
	PoDetailsID       int64           `json:"po_details_id,omitempty"`
	PoNumber          string          `json:"po_number,omitempty"`
	BatchCode         string          `json:"batch_code,omitempty"`
	BatchExpiry       string          `json:"batch_expiry,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	MRP               decimal.Decimal `json:"mrp"`
	TaxPercent        decimal.Decimal `json:"tax_percent"`
	FittingCharge     decimal.Decimal `json:"fitting_charge"`
	FittingTaxPercent decimal.Decimal `json:"fitting_tax_percent"`
}

type CommitPayload struct {
	DraftID        int64         `json:"draft_id"`
	LocationID     int64         `json:"location_id"`
	VendorID       int64         `json:"vendor_id"`
	DocumentNumber string        `json:"document_number"`
	DocumentDate   string        `json:"document_date"`
	BillingMethod  BillingMethod `json:"billing_method"`
	AgainstPO      bool          `json:"against_po"`
	Remarks        string        `json:"remarks"`
	Lines          []CommitLine  `json:"lines"`
}

// Totals of the draft. Applicable is false for delivery-challan-only vendor
// relationships where quantities and prices are not tracked; the remaining
// fields are zero in that case.
type Totals struct {
	Applicable bool            `json:"applicable"`
	Quantity   int             `json:"quantity"`
	GrossValue decimal.Decimal `json:"gross_value"`
	GstValue   decimal.Decimal `json:"gst_value"`
	NetValue   decimal.Decimal `json:"net_value"`
}

// Finalizer is the external persistence boundary for draft lines and the
// completed receipt.
type Finalizer interface {
	SaveDraftLines(ctx context.Context, payload CommitPayload) (draftID int64, err error)
	CompleteReceipt(ctx context.Context, payload CommitPayload) error
	DeleteDraftLine(ctx context.Context, lineID int64) error
}

// BuildPayload maps every receipt line to a commit record. The tax percent is
// re-resolved from the slab table against the current effective unit price,
// so price edits made after intake are reflected.
func BuildPayload(d *ReceiptDraft) CommitPayload {
	payload := CommitPayload{
		DraftID:        d.DraftID,
		LocationID:     d.LocationID,
		VendorID:       d.VendorID,
		DocumentNumber: d.DocumentNumber,
		DocumentDate:   d.DocumentDate,
		BillingMethod:  d.BillingMethod,
		AgainstPO:      d.AgainstPO,
		Remarks:        d.Remarks,
		Lines:          make([]CommitLine, 0, len(d.Lines)),
	}

	for _, l := range d.Lines {
		cl := CommitLine{
			LineID:            l.LineID,
			ProductType:       l.ProductType,
			DetailID:          l.DetailID,
			Barcode:           l.Barcode,
			ItemName:          l.ItemName,
			Quantity:          l.Quantity,
			UnitPrice:         l.UnitPrice,
			MRP:               l.MRP,
			TaxPercent:        ResolveTaxPercent(l.TaxSlabs, l.UnitPrice),
			FittingCharge:     l.FittingCharge,
			FittingTaxPercent: l.FittingTaxPercent,
		}
		if l.POLine != nil {
			cl.PoDetailsID = l.POLine.PoDetailsID
			cl.PoNumber = l.POLine.PoNumber
		}
		if l.Batch != nil {
			cl.BatchCode = l.Batch.Code
			cl.BatchExpiry = l.Batch.Expiry
		}
		payload.Lines = append(payload.Lines, cl)
	}

	return payload
}

// ComputeTotals sums quantity, gross, tax and net values across the draft:
// price*qty*(1+tax%) per line plus fitting charge with its own tax.
func ComputeTotals(d *ReceiptDraft) Totals {
	if !d.QtyPriceApplicable {
		return Totals{}
	}

	t := Totals{Applicable: true}
	one := decimal.NewFromInt(1)

	for _, l := range d.Lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		taxPct := ResolveTaxPercent(l.TaxSlabs, l.UnitPrice)

		gross := l.UnitPrice.Mul(qty)
		gst := gross.Mul(taxPct.Div(hundred))
		net := gross.Mul(one.Add(taxPct.Div(hundred)))

		if l.FittingCharge.IsPositive() {
			fitGst := l.FittingCharge.Mul(l.FittingTaxPercent.Div(hundred))
			gross = gross.Add(l.FittingCharge)
			gst = gst.Add(fitGst)
			net = net.Add(l.FittingCharge.Add(fitGst))
		}

		t.Quantity += l.Quantity
		t.GrossValue = t.GrossValue.Add(gross)
		t.GstValue = t.GstValue.Add(gst)
		t.NetValue = t.NetValue.Add(net)
	}

	return t
}

// Committer finalizes a draft through the external boundary.
type Committer struct {
	draft     *ReceiptDraft
	finalizer Finalizer
	workflow  *Workflow
}

func NewCommitter(draft *ReceiptDraft, finalizer Finalizer, workflow *Workflow) *Committer {
	return &Committer{draft: draft, finalizer: finalizer, workflow: workflow}
}

// SaveDraft persists the current lines without completing the receipt, so a
// half-entered draft survives the session.
func (c *Committer) SaveDraft(ctx context.Context) error {
	payload := BuildPayload(c.draft)
	draftID, err := c.finalizer.SaveDraftLines(ctx, payload)
	if err != nil {
		return &TransportError{Op: "save draft lines", Err: err}
	}
	c.draft.DraftID = draftID
	return nil
}

// Commit calls the external finalize endpoint. On success the draft is fully
// reset and the workflow returns to the header step; on failure the draft is
// left byte-for-byte untouched so the user can retry.
func (c *Committer) Commit(ctx context.Context) error {
	payload := BuildPayload(c.draft)

	if err := c.finalizer.CompleteReceipt(ctx, payload); err != nil {
		return &CommitError{Err: err}
	}

	c.workflow.Reset()
	return nil
}
