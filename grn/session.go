package grn

import "context"

// Ports bundles the external collaborators the engine consumes. Transport and
// persistence details live behind these interfaces.
type Ports struct {
	PendingQty PendingQtyChecker
	Batches    BatchLookup
	DocNumbers DocNumberChecker
	Drafts     DraftFinder
	Vendors    VendorLookup
	Finalizer  Finalizer
}

// Session is one user's intake session: the draft, its workflow and the
// collaborating components wired together.
type Session struct {
	Draft       *ReceiptDraft
	Workflow    *Workflow
	Accumulator *Accumulator
	Batches     *BatchResolver
	Committer   *Committer
}

func NewSession(locationID int64, ports Ports) *Session {
	draft := NewReceiptDraft(locationID)
	validator := NewPendingQtyValidator(ports.PendingQty)
	workflow := NewWorkflow(draft, validator, ports.DocNumbers, ports.Drafts, ports.Vendors)

	return &Session{
		Draft:       draft,
		Workflow:    workflow,
		Accumulator: NewAccumulator(draft, validator),
		Batches:     NewBatchResolver(ports.Batches, locationID),
		Committer:   NewCommitter(draft, ports.Finalizer, workflow),
	}
}

// AddResult reports how an intake attempt ended: either a line was accepted
// or the candidate is parked waiting for batch resolution.
type AddResult struct {
	Line          *ReceiptLine `json:"line,omitempty"`
	BatchRequired bool         `json:"batch_required"`
	DetailID      int64        `json:"detail_id,omitempty"`
}

// AddCandidate routes a candidate through the batch gate and into the
// accumulator. Batch-tracked candidates are held in the resolver's buffer and
// must come back through ResolveBatch before a line is created.
func (s *Session) AddCandidate(ctx context.Context, cand CandidateItem, qty int) (AddResult, error) {
	if s.Batches.RequiresBatch(cand) {
		s.Batches.Hold(cand)
		return AddResult{BatchRequired: true, DetailID: cand.DetailID}, nil
	}

	line, err := s.Accumulator.Add(ctx, cand, qty)
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{Line: line}, nil
}

// ResolveBatch resolves a held candidate and adds it in one motion.
func (s *Session) ResolveBatch(ctx context.Context, detailID int64, mode ResolveMode, value string, qty int) (AddResult, error) {
	cand, err := s.Batches.Resolve(ctx, detailID, mode, value)
	if err != nil {
		return AddResult{}, err
	}

	line, err := s.Accumulator.Add(ctx, cand, qty)
	if err != nil {
		// The candidate goes back to the buffer; the batch choice survives a
		// failed quantity validation.
		s.Batches.Hold(cand)
		return AddResult{}, err
	}
	return AddResult{Line: line}, nil
}

// Cancel abandons the session: in-flight validations are discarded and the
// draft returns to a fresh state.
func (s *Session) Cancel() {
	s.Workflow.Reset()
	s.Batches.Clear()
}

// Projection is the read-only view the UI renders from. It never exposes the
// merge or validation mechanics, only their outcome.
type Projection struct {
	CurrentStep      StepID            `json:"current_step"`
	Draft            ReceiptDraft      `json:"draft"`
	Lines            []ReceiptLine     `json:"lines"`
	PendingBatches   []CandidateItem   `json:"pending_batches"`
	Totals           Totals            `json:"totals"`
	ValidationErrors []ValidationError `json:"validation_errors"`
}

func (s *Session) Project() Projection {
	// The header is copied so callers cannot reach back into the live draft;
	// lines are rendered from the accumulator's snapshot only.
	header := *s.Draft
	header.Lines = nil

	return Projection{
		CurrentStep:      s.Workflow.CurrentStep(),
		Draft:            header,
		Lines:            s.Accumulator.Lines(),
		PendingBatches:   s.Batches.Pending(),
		Totals:           ComputeTotals(s.Draft),
		ValidationErrors: s.Workflow.ValidationErrors(),
	}
}
