package grn

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductFrame       ProductType = "FRAME"
	ProductLens        ProductType = "LENS"
	ProductContactLens ProductType = "CONTACT_LENS"
	ProductAccessory   ProductType = "ACCESSORY"
)

type OrderMode string

const (
	OrderModeAuto     OrderMode = "AUTO_PROCESSING"
	OrderModeSpecific OrderMode = "SPECIFIC_ORDER"
)

type EntryMode string

const (
	EntryCombined EntryMode = "COMBINED"
	EntrySeparate EntryMode = "SEPARATE"
)

type BillingMethod string

const (
	BillingInvoice         BillingMethod = "INVOICE"
	BillingDeliveryChallan BillingMethod = "DELIVERY_CHALLAN"
)

// POLineRef is an immutable reference to an upstream purchase order line.
// Sourced from the PO master, never mutated locally.
type POLineRef struct {
	PoDetailsID  int64  `json:"po_details_id"`
	PoNumber     string `json:"po_number"`
	OrderedQty   int    `json:"ordered_qty"`
	ReceivedQty  int    `json:"received_qty"`
	CancelledQty int    `json:"cancelled_qty"`
}

// PendingQty is advisory only. The authoritative figure is re-fetched by the
// pending quantity validator right before any mutation is accepted.
func (r POLineRef) PendingQty() int {
	return r.OrderedQty - r.ReceivedQty - r.CancelledQty
}

// TaxSlab is one row of a product's tax group. SlabEnd is a tax-inclusive
// ceiling; SalesTaxPercent is used only to back out the exclusive ceiling.
type TaxSlab struct {
	SlabEnd            decimal.Decimal `json:"slab_end"`
	SalesTaxPercent    decimal.Decimal `json:"sales_tax_percent"`
	PurchaseTaxPercent decimal.Decimal `json:"purchase_tax_percent"`
}

type BatchCode struct {
	Code     string          `json:"code"`
	Expiry   string          `json:"expiry"`
	MRP      decimal.Decimal `json:"mrp"`
	DetailID int64           `json:"detail_id"`
}

// Product-type payloads. Exactly one of these is set on a candidate or line,
// matching its ProductType tag.
type FrameDetail struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Color string `json:"color"`
	Size  string `json:"size"`
}

type LensDetail struct {
	Power             string          `json:"power"`
	Coating           string          `json:"coating"`
	FittingCharge     decimal.Decimal `json:"fitting_charge"`
	FittingTaxPercent decimal.Decimal `json:"fitting_tax_percent"`
}

type ContactLensDetail struct {
	Power     string `json:"power"`
	BaseCurve string `json:"base_curve"`
}

type AccessoryDetail struct {
	Description string `json:"description"`
}

// CandidateItem is a search or scan result. It only becomes a ReceiptLine
// after passing the batch gate and the pending quantity validator.
type CandidateItem struct {
	DetailID      int64           `json:"detail_id"`
	Barcode       string          `json:"barcode"`
	ProductType   ProductType     `json:"product_type"`
	ItemName      string          `json:"item_name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	MRP           decimal.Decimal `json:"mrp"`
	TaxSlabs      []TaxSlab       `json:"tax_slabs"`
	POLine        *POLineRef      `json:"po_line,omitempty"`
	BatchRequired bool            `json:"batch_required"`
	Batch         *BatchCode      `json:"batch,omitempty"`

	Frame       *FrameDetail       `json:"frame,omitempty"`
	Lens        *LensDetail        `json:"lens,omitempty"`
	ContactLens *ContactLensDetail `json:"contact_lens,omitempty"`
	Accessory   *AccessoryDetail   `json:"accessory,omitempty"`
}

// identity is the merge key in combined entry mode: product identity plus
// batch code when one is resolved.
func (c CandidateItem) identity() string {
	id := c.Barcode
	if id == "" {
		id = fmt.Sprintf("detail:%d", c.DetailID)
	}
	if c.Batch != nil {
		id += "|" + c.Batch.Code
	}
	return id
}

// ReceiptLine is the accepted, mutable unit of the draft.
type ReceiptLine struct {
	LineID      int64           `json:"line_id"`
	DetailID    int64           `json:"detail_id"`
	Barcode     string          `json:"barcode"`
	ProductType ProductType     `json:"product_type"`
	ItemName    string          `json:"item_name"`
	POLine      *POLineRef      `json:"po_line,omitempty"`
	Batch       *BatchCode      `json:"batch,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MRP         decimal.Decimal `json:"mrp"`
	TaxSlabs    []TaxSlab       `json:"-"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`

	// Lens only.
	FittingCharge     decimal.Decimal `json:"fitting_charge"`
	FittingTaxPercent decimal.Decimal `json:"fitting_tax_percent"`
}

func (l *ReceiptLine) identity() string {
	id := l.Barcode
	if id == "" {
		id = fmt.Sprintf("detail:%d", l.DetailID)
	}
	if l.Batch != nil {
		id += "|" + l.Batch.Code
	}
	return id
}

// ReceiptDraft is the header entity carried across workflow steps. It is owned
// by the workflow; every other component reads it as context.
type ReceiptDraft struct {
	DraftID        int64         `json:"draft_id"`
	LocationID     int64         `json:"location_id"`
	VendorID       int64         `json:"vendor_id"`
	DocumentNumber string        `json:"document_number"`
	DocumentDate   string        `json:"document_date"`
	BillingMethod  BillingMethod `json:"billing_method"`
	AgainstPO      bool          `json:"against_po"`
	ProductType    ProductType   `json:"product_type"`
	OrderMode      OrderMode     `json:"order_mode"`
	EntryMode      EntryMode     `json:"entry_mode"`
	Remarks        string        `json:"remarks"`

	// QtyPriceApplicable mirrors the vendor master flag. When false the
	// relationship is delivery-challan only and totals are not computed.
	QtyPriceApplicable bool `json:"qty_price_applicable"`

	Lines []*ReceiptLine `json:"lines"`
}

func NewReceiptDraft(locationID int64) *ReceiptDraft {
	return &ReceiptDraft{
		LocationID:         locationID,
		BillingMethod:      BillingInvoice,
		EntryMode:          EntryCombined,
		QtyPriceApplicable: true,
	}
}

// Reset clears header and lines. Construction and Reset are the only
// lifecycle events of a draft.
func (d *ReceiptDraft) Reset() {
	loc := d.LocationID
	*d = *NewReceiptDraft(loc)
}

func (d *ReceiptDraft) lineByID(lineID int64) *ReceiptLine {
	for _, l := range d.Lines {
		if l.LineID == lineID {
			return l
		}
	}
	return nil
}

// qtyForPOLine sums committed quantities referencing a PO line, excluding one
// line id (0 excludes nothing). Used to compute prospective totals.
func (d *ReceiptDraft) qtyForPOLine(poDetailsID, excludeLineID int64) int {
	total := 0
	for _, l := range d.Lines {
		if l.POLine == nil || l.POLine.PoDetailsID != poDetailsID {
			continue
		}
		if l.LineID == excludeLineID {
			continue
		}
		total += l.Quantity
	}
	return total
}
