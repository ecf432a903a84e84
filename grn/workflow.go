package grn

import (
	"context"
	"sync"
)

type StepID string

const (
	StepHeaderInfo  StepID = "HEADER_INFO"
	StepProductType StepID = "PRODUCT_TYPE"
	StepOrderMode   StepID = "ORDER_MODE"
	StepItemIntake  StepID = "ITEM_INTAKE"
	StepReview      StepID = "REVIEW"
)

// DocNumberChecker answers whether a vendor already has a receipt with the
// given document number.
type DocNumberChecker interface {
	DocumentNumberExists(ctx context.Context, vendorID int64, documentNumber string) (bool, error)
}

// DraftFinder locates a previously persisted open draft for the same
// (vendor, against-PO) combination. draftID 0 means none.
type DraftFinder interface {
	FindOpenDraft(ctx context.Context, vendorID int64, againstPO bool) (draftID int64, lines []*ReceiptLine, err error)
}

// VendorLookup reads the vendor master flags the draft depends on.
type VendorLookup interface {
	QtyPriceApplicable(ctx context.Context, vendorID int64) (bool, error)
}

type HeaderField string

const (
	FieldVendorID       HeaderField = "vendor_id"
	FieldDocumentNumber HeaderField = "document_number"
	FieldDocumentDate   HeaderField = "document_date"
	FieldBillingMethod  HeaderField = "billing_method"
	FieldAgainstPO      HeaderField = "against_po"
	FieldProductType    HeaderField = "product_type"
	FieldOrderMode      HeaderField = "order_mode"
	FieldEntryMode      HeaderField = "entry_mode"
	FieldRemarks        HeaderField = "remarks"
)

// Workflow sequences the intake steps and owns the draft. The sequence is
// linear: HeaderInfo, ProductType, OrderMode (only against a PO), ItemIntake,
// Review; the only cycles are explicit retreats.
type Workflow struct {
	mu        sync.Mutex
	draft     *ReceiptDraft
	step      StepID
	validator *PendingQtyValidator
	docCheck  DocNumberChecker
	finder    DraftFinder
	vendors   VendorLookup

	lastErrors []ValidationError
}

func NewWorkflow(draft *ReceiptDraft, validator *PendingQtyValidator, docCheck DocNumberChecker, finder DraftFinder, vendors VendorLookup) *Workflow {
	return &Workflow{
		draft:     draft,
		step:      StepHeaderInfo,
		validator: validator,
		docCheck:  docCheck,
		finder:    finder,
		vendors:   vendors,
	}
}

func (w *Workflow) Draft() *ReceiptDraft { return w.draft }

func (w *Workflow) CurrentStep() StepID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Workflow) ValidationErrors() []ValidationError {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ValidationError, len(w.lastErrors))
	copy(out, w.lastErrors)
	return out
}

func (w *Workflow) steps() []StepID {
	seq := []StepID{StepHeaderInfo, StepProductType}
	if w.draft.AgainstPO {
		seq = append(seq, StepOrderMode)
	}
	return append(seq, StepItemIntake, StepReview)
}

func (w *Workflow) stepIndex(step StepID) int {
	for i, s := range w.steps() {
		if s == step {
			return i
		}
	}
	return 0
}

// SetHeaderField mutates the draft header. Fields are only settable while
// their owning step is active, which keeps earlier decisions frozen:
// entry mode in particular is fixed once the first line exists.
func (w *Workflow) SetHeaderField(field HeaderField, value interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	fail := func(msg string) error {
		return &ValidationError{Field: string(field), Message: msg}
	}

	switch field {
	case FieldVendorID:
		if w.step != StepHeaderInfo {
			return fail("vendor can only be changed on the header step")
		}
		v, ok := value.(int64)
		if !ok || v <= 0 {
			return fail("vendor id must be a positive integer")
		}
		w.draft.VendorID = v
	case FieldDocumentNumber:
		if w.step != StepHeaderInfo {
			return fail("document number can only be changed on the header step")
		}
		s, ok := value.(string)
		if !ok || s == "" {
			return fail("document number is required")
		}
		w.draft.DocumentNumber = s
	case FieldDocumentDate:
		if w.step != StepHeaderInfo {
			return fail("document date can only be changed on the header step")
		}
		s, ok := value.(string)
		if !ok || s == "" {
			return fail("document date is required")
		}
		w.draft.DocumentDate = s
	case FieldBillingMethod:
		if w.step != StepHeaderInfo {
			return fail("billing method can only be changed on the header step")
		}
		s, _ := value.(string)
		switch BillingMethod(s) {
		case BillingInvoice, BillingDeliveryChallan:
			w.draft.BillingMethod = BillingMethod(s)
		default:
			return fail("billing method must be invoice or delivery challan")
		}
	case FieldAgainstPO:
		if w.step != StepHeaderInfo {
			return fail("against-po flag can only be changed on the header step")
		}
		b, ok := value.(bool)
		if !ok {
			return fail("against-po must be a boolean")
		}
		w.draft.AgainstPO = b
	case FieldProductType:
		if w.step != StepProductType {
			return fail("product type can only be changed on the product type step")
		}
		s, _ := value.(string)
		switch ProductType(s) {
		case ProductFrame, ProductLens, ProductContactLens, ProductAccessory:
			w.draft.ProductType = ProductType(s)
		default:
			return fail("unknown product type")
		}
	case FieldOrderMode:
		if w.step != StepOrderMode {
			return fail("order mode can only be changed on the order mode step")
		}
		s, _ := value.(string)
		switch OrderMode(s) {
		case OrderModeAuto, OrderModeSpecific:
			w.draft.OrderMode = OrderMode(s)
		default:
			return fail("unknown order mode")
		}
	case FieldEntryMode:
		if w.step != StepItemIntake {
			return fail("entry mode can only be set on the item intake step")
		}
		if len(w.draft.Lines) > 0 {
			return fail("entry mode is frozen once lines exist")
		}
		s, _ := value.(string)
		switch EntryMode(s) {
		case EntryCombined, EntrySeparate:
			w.draft.EntryMode = EntryMode(s)
		default:
			return fail("unknown entry mode")
		}
	case FieldRemarks:
		s, _ := value.(string)
		w.draft.Remarks = s
	default:
		return fail("unknown header field")
	}

	return nil
}

// Advance moves to the next step once the active step's required fields are
// populated. Leaving the header step also checks document number uniqueness
// and short-circuits to review when the vendor already has an open draft with
// persisted lines for the same against-PO flag.
func (w *Workflow) Advance(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastErrors = nil

	record := func(field, msg string) error {
		err := &ValidationError{Field: field, Message: msg}
		w.lastErrors = append(w.lastErrors, *err)
		return err
	}

	switch w.step {
	case StepHeaderInfo:
		if w.draft.VendorID == 0 {
			return record("vendor_id", "vendor is required")
		}
		if w.draft.DocumentNumber == "" {
			return record("document_number", "document number is required")
		}
		if w.draft.DocumentDate == "" {
			return record("document_date", "document date is required")
		}

		exists, err := w.docCheck.DocumentNumberExists(ctx, w.draft.VendorID, w.draft.DocumentNumber)
		if err != nil {
			return &TransportError{Op: "check document number", Err: err}
		}
		if exists {
			w.lastErrors = append(w.lastErrors, ValidationError{Field: "document_number", Message: ErrDuplicateDocumentNumber.Error()})
			return ErrDuplicateDocumentNumber
		}

		// The vendor master decides whether quantities and prices are
		// tracked; a delivery-challan-only relationship skips totals.
		qtyPrice, err := w.vendors.QtyPriceApplicable(ctx, w.draft.VendorID)
		if err != nil {
			return &TransportError{Op: "load vendor", Err: err}
		}
		w.draft.QtyPriceApplicable = qtyPrice

		draftID, lines, err := w.finder.FindOpenDraft(ctx, w.draft.VendorID, w.draft.AgainstPO)
		if err != nil {
			return &TransportError{Op: "find open draft", Err: err}
		}
		if draftID != 0 && len(lines) > 0 {
			w.draft.DraftID = draftID
			w.draft.Lines = lines
			w.step = StepReview
			return nil
		}

		w.step = StepProductType
	case StepProductType:
		if w.draft.ProductType == "" {
			return record("product_type", "product type is required")
		}
		if w.draft.AgainstPO {
			w.step = StepOrderMode
		} else {
			w.step = StepItemIntake
		}
	case StepOrderMode:
		if w.draft.OrderMode == "" {
			return record("order_mode", "order mode is required")
		}
		w.step = StepItemIntake
	case StepItemIntake:
		if len(w.draft.Lines) == 0 {
			return record("lines", "at least one item is required before review")
		}
		w.step = StepReview
	case StepReview:
		return record("step", "already on the final step")
	}

	return nil
}

// Retreat steps back one step. Leaving item intake cancels any in-flight
// pending quantity validations so late responses cannot mutate the draft.
func (w *Workflow) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepItemIntake {
		w.validator.CancelAll()
	}

	idx := w.stepIndex(w.step)
	if idx > 0 {
		w.step = w.steps()[idx-1]
	}
}

// Reset cancels in-flight validations and returns the draft to a fresh state.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.validator.CancelAll()
	w.draft.Reset()
	w.step = StepHeaderInfo
	w.lastErrors = nil
}
