package grn

import (
	"errors"
	"fmt"
)

var (
	// ErrBatchRequired is returned when a batch-tracked candidate reaches the
	// accumulator without a resolved batch code.
	ErrBatchRequired = errors.New("batch must be resolved before the item can be added")

	// ErrBatchNotFound is returned when a picked or scanned batch value does
	// not match any batch known for the candidate's detail id.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrDuplicateDocumentNumber blocks leaving the header step when the
	// vendor already has a receipt with the same document number.
	ErrDuplicateDocumentNumber = errors.New("document number already used for this vendor")

	// ErrValidationSuperseded means a newer mutation for the same PO line was
	// issued (or the draft was reset) while this validation was in flight.
	// The late result is discarded and the mutation dropped.
	ErrValidationSuperseded = errors.New("pending quantity validation superseded")

	ErrLineNotFound = errors.New("receipt line not found")
)

// QuantityError rejects a quantity-affecting mutation that would exceed the
// purchase order line's authoritative pending quantity. Pending always carries
// the figure the server disclosed so the UI can show an actionable message.
type QuantityError struct {
	PoDetailsID int64
	Requested   int
	Pending     int
	// Stale marks rejections where the locally cached pending quantity would
	// have allowed the mutation, i.e. a concurrent receipt got there first.
	Stale bool
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("requested %d exceeds available %d for po line %d", e.Requested, e.Pending, e.PoDetailsID)
}

// TransportError wraps a failed remote call. The mutation it was gating is
// never applied, so retrying is always safe.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CommitError wraps a failed finalize call. The draft is left intact so the
// user can retry without re-entering data.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit failed: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// ValidationError is a step or field level problem surfaced to the UI, e.g. a
// missing header field blocking Advance.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
