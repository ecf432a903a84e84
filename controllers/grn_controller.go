package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"optic-app/grn"
	"optic-app/repositories"
	"optic-app/utils"
	"strconv"

	"github.com/go-playground/validator"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// GrnController hosts one intake session per authenticated user session. The
// engine holds the draft in memory; the repositories behind its ports carry
// every authoritative check to the database.
type GrnController struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewGrnController(DB *gorm.DB, RDB *redis.Client) *GrnController {
	return &GrnController{DB: DB, RDB: RDB}
}

func (c *GrnController) session(ctx *fiber.Ctx) (*grn.Session, error) {
	sessionID, ok := ctx.Locals("sessionID").(string)
	if !ok || sessionID == "" {
		return nil, errors.New("missing session")
	}

	userID, _ := ctx.Locals("userID").(float64)
	locationID, _ := ctx.Locals("locationID").(float64)

	return loadOrStoreIntakeSession(sessionID, func() *grn.Session {
		poRepo := repositories.NewPORepository(c.DB)
		grnRepo := repositories.NewGrnRepository(c.DB, int(userID))

		return grn.NewSession(int64(locationID), grn.Ports{
			PendingQty: poRepo,
			Batches:    repositories.NewBatchRepository(c.DB, c.RDB),
			DocNumbers: poRepo,
			Drafts:     grnRepo,
			Vendors:    poRepo,
			Finalizer:  grnRepo,
		})
	}), nil
}

// engineError maps engine errors onto HTTP responses.
func engineError(ctx *fiber.Ctx, err error) error {
	var verr *grn.ValidationError
	var qerr *grn.QuantityError
	var terr *grn.TransportError
	var cerr *grn.CommitError

	switch {
	case errors.As(err, &verr):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": verr.Message, "field": verr.Field,
		})
	case errors.As(err, &qerr):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": qerr.Error(),
			"data": fiber.Map{
				"po_details_id": qerr.PoDetailsID,
				"requested":     qerr.Requested,
				"pending":       qerr.Pending,
				"stale":         qerr.Stale,
			},
		})
	case errors.Is(err, grn.ErrDuplicateDocumentNumber):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	case errors.Is(err, grn.ErrBatchNotFound), errors.Is(err, grn.ErrLineNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	case errors.Is(err, grn.ErrBatchRequired):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	case errors.Is(err, grn.ErrValidationSuperseded):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	case errors.As(err, &terr):
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false, "message": terr.Error(),
		})
	case errors.As(err, &cerr):
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": cerr.Error(),
		})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": err.Error(),
		})
	}
}

// GetSession returns the current projection, creating the session on first use.
func (c *GrnController) GetSession(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s.Project()})
}

// SetHeaderField applies one header mutation. JSON numbers arrive as float64
// and are converted to what the field expects.
func (c *GrnController) SetHeaderField(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var input struct {
		Field string      `json:"field" validate:"required"`
		Value interface{} `json:"value"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	value := input.Value
	if grn.HeaderField(input.Field) == grn.FieldVendorID {
		if f, ok := value.(float64); ok {
			value = int64(f)
		}
	}

	if err := s.Workflow.SetHeaderField(grn.HeaderField(input.Field), value); err != nil {
		return engineError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s.Project()})
}

func (c *GrnController) Advance(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	if err := s.Workflow.Advance(ctx.Context()); err != nil {
		return engineError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s.Project()})
}

func (c *GrnController) Retreat(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	s.Workflow.Retreat()
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s.Project()})
}

// CancelSession abandons the draft and evicts it from the registry.
func (c *GrnController) CancelSession(ctx *fiber.Ctx) error {
	sessionID, ok := ctx.Locals("sessionID").(string)
	if !ok || sessionID == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "missing session"})
	}

	dropIntakeSession(sessionID)
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Session cancelled"})
}

// SearchItems finds intake candidates by barcode or by brand/model keyword,
// scoped to the draft's product type and vendor.
func (c *GrnController) SearchItems(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	keyword := ctx.Query("keyword")
	if keyword == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "keyword is required"})
	}

	draft := s.Draft
	poRepo := repositories.NewPORepository(c.DB)

	var candidates []grn.CandidateItem
	if ctx.Query("by") == "model" {
		candidates, err = poRepo.CandidatesByBrandModel(keyword, string(draft.ProductType), draft.VendorID, draft.AgainstPO)
	} else {
		candidates, err = poRepo.CandidatesByBarcode(keyword, string(draft.ProductType), draft.VendorID, draft.AgainstPO)
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"candidates": candidates}})
}

// AddItem scans a barcode into the draft. Batch-managed products come back
// with batch_required and wait in the pending buffer.
func (c *GrnController) AddItem(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var input struct {
		Barcode  string `json:"barcode" validate:"required"`
		Quantity int    `json:"quantity" validate:"required,gt=0"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	draft := s.Draft
	poRepo := repositories.NewPORepository(c.DB)
	candidates, err := poRepo.CandidatesByBarcode(input.Barcode, string(draft.ProductType), draft.VendorID, draft.AgainstPO)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if len(candidates) == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "No matching product for barcode"})
	}

	res, err := s.AddCandidate(ctx.Context(), candidates[0], input.Quantity)
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"result": res, "projection": s.Project()}})
}

// ListBatches renders the batch prompt for a held candidate.
func (c *GrnController) ListBatches(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	detailID, err := strconv.ParseInt(ctx.Params("detail_id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid detail id"})
	}

	batches, err := s.Batches.Batches(ctx.Context(), detailID)
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"batches": batches}})
}

// ResolveBatch picks or scans a batch for a held candidate and adds the line.
func (c *GrnController) ResolveBatch(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var input struct {
		DetailID int64  `json:"detail_id" validate:"required"`
		Mode     string `json:"mode" validate:"required,oneof=pick scan"`
		Value    string `json:"value" validate:"required"`
		Quantity int    `json:"quantity" validate:"required,gt=0"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	res, err := s.ResolveBatch(ctx.Context(), input.DetailID, grn.ResolveMode(input.Mode), input.Value, input.Quantity)
	if err != nil {
		return engineError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"result": res, "projection": s.Project()}})
}

func (c *GrnController) lineID(ctx *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(ctx.Params("line_id"), 10, 64)
}

func (c *GrnController) UpdateQuantity(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	lineID, err := c.lineID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid line id"})
	}

	var input struct {
		Quantity int `json:"quantity" validate:"required,gt=0"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	if err := s.Accumulator.UpdateQuantity(ctx.Context(), lineID, input.Quantity); err != nil {
		return engineError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s.Project()})
}

func (c *GrnController) UpdatePrice(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	lineID, err := c.lineID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid line id"})
	}

	var input struct {
		UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request"})
	}

	if err := s.Accumulator.UpdatePrice(lineID, decimal.NewFromFloat(input.UnitPrice)); err != nil {
		return engineError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s.Project()})
}

// DeleteLine removes a line from the draft, and from the persisted draft rows
// when the draft has been saved.
func (c *GrnController) DeleteLine(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	lineID, err := c.lineID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid line id"})
	}

	if err := s.Accumulator.Remove(lineID); err != nil {
		return engineError(ctx, err)
	}

	if s.Draft.DraftID != 0 {
		userID, _ := ctx.Locals("userID").(float64)
		grnRepo := repositories.NewGrnRepository(c.DB, int(userID))
		if err := grnRepo.DeleteDraftLine(ctx.Context(), lineID); err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s.Project()})
}

// Review returns the projection plus the commit payload and totals.
func (c *GrnController) Review(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"projection": s.Project(),
			"payload":    grn.BuildPayload(s.Draft),
			"totals":     grn.ComputeTotals(s.Draft),
		},
	})
}

// SaveDraft persists the draft so it survives the session.
func (c *GrnController) SaveDraft(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	if err := s.Committer.SaveDraft(ctx.Context()); err != nil {
		return engineError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"draft_id": s.Draft.DraftID}})
}

// Commit finalizes the receipt. On success the draft resets and a completion
// notice goes out; on failure the draft is untouched and the user can retry.
func (c *GrnController) Commit(ctx *fiber.Ctx) error {
	s, err := c.session(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	payload := grn.BuildPayload(s.Draft)
	totals := grn.ComputeTotals(s.Draft)

	if err := s.Committer.Commit(ctx.Context()); err != nil {
		return engineError(ctx, err)
	}

	go utils.SendReceiptNotification(payload, totals)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Receipt completed",
		"data":    fiber.Map{"totals": totals},
	})
}

// ListReceipts is the receipt register.
func (c *GrnController) ListReceipts(ctx *fiber.Ctx) error {
	userID, _ := ctx.Locals("userID").(float64)
	grnRepo := repositories.NewGrnRepository(c.DB, int(userID))

	receipts, err := grnRepo.ListReceipts()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"receipts": receipts}})
}

// GetReceipt loads one receipt with details.
func (c *GrnController) GetReceipt(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid id"})
	}

	userID, _ := ctx.Locals("userID").(float64)
	grnRepo := repositories.NewGrnRepository(c.DB, int(userID))

	receipt, err := grnRepo.GetReceipt(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Receipt not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"receipt": receipt}})
}

// ExportExcel writes the receipt register as a spreadsheet.
func (c *GrnController) ExportExcel(ctx *fiber.Ctx) error {
	userID, _ := ctx.Locals("userID").(float64)
	grnRepo := repositories.NewGrnRepository(c.DB, int(userID))

	receipts, err := grnRepo.ListReceipts()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "GRN No")
	f.SetCellValue(sheet, "B1", "Vendor")
	f.SetCellValue(sheet, "C1", "Document No")
	f.SetCellValue(sheet, "D1", "Document Date")
	f.SetCellValue(sheet, "E1", "Status")
	f.SetCellValue(sheet, "F1", "Lines")
	f.SetCellValue(sheet, "G1", "Quantity")
	f.SetCellValue(sheet, "H1", "Value")

	for i, item := range receipts {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), item.GrnNo)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), item.VendorName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), item.DocumentNumber)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), item.DocumentDate)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", i+2), item.Status)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), item.TotalLine)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", i+2), item.TotalQty)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", i+2), item.TotalValue)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="grn_register.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel file")
	}
	return nil
}
