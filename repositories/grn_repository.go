package repositories

import (
	"context"
	"errors"
	"fmt"
	"optic-app/controllers/helpers"
	"optic-app/grn"
	"optic-app/models"
	"optic-app/types"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GrnRepository persists receipt drafts and completed receipts. It implements
// the engine's DraftFinder and Finalizer ports for one user's sessions.
type GrnRepository struct {
	db     *gorm.DB
	userID int
}

func NewGrnRepository(db *gorm.DB, userID int) *GrnRepository {
	return &GrnRepository{db: db, userID: userID}
}

// GenerateGrnNo issues the next receipt number for the current month, in the
// form GRN-2608-0001.
func (r *GrnRepository) GenerateGrnNo(tx *gorm.DB) (string, error) {
	prefix := fmt.Sprintf("GRN-%s", time.Now().Format("0601"))

	var lastNo string
	err := tx.Model(&models.GrnHeader{}).
		Where("grn_no LIKE ?", prefix+"%").
		Order("grn_no DESC").
		Limit(1).
		Pluck("grn_no", &lastNo).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if lastNo != "" {
		fmt.Sscanf(lastNo, prefix+"-%04d", &seq)
		seq++
	}
	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}

type draftLineRow struct {
	models.GrnDetail
	TaxGroupID   uint `json:"tax_group_id"`
	OrderedQty   int  `json:"ordered_qty"`
	ReceivedQty  int  `json:"received_qty"`
	CancelledQty int  `json:"cancelled_qty"`
}

// FindOpenDraft returns the vendor's open draft receipt with the same
// against-PO flag, if one exists. Lines are rebuilt with their tax slabs and
// full PO references so tax re-resolution and stale classification keep
// working after a session is restored.
func (r *GrnRepository) FindOpenDraft(ctx context.Context, vendorID int64, againstPO bool) (int64, []*grn.ReceiptLine, error) {
	flag := "N"
	if againstPO {
		flag = "Y"
	}

	var header models.GrnHeader
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND against_po = ? AND status = ?", vendorID, flag, "draft").
		Order("created_at DESC").
		First(&header).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, err
	}

	var rows []draftLineRow
	sql := `SELECT g.*, p.tax_group_id,
		COALESCE(pod.ordered_qty, 0) AS ordered_qty,
		COALESCE(pod.received_qty, 0) AS received_qty,
		COALESCE(pod.cancelled_qty, 0) AS cancelled_qty
		FROM grn_details g
		JOIN products p ON p.id = g.product_id
		LEFT JOIN purchase_order_details pod ON pod.id = g.po_details_id AND pod.deleted_at IS NULL
		WHERE g.grn_id = ? AND g.deleted_at IS NULL
		ORDER BY g.line_id ASC`
	if err := r.db.WithContext(ctx).Raw(sql, header.ID).Scan(&rows).Error; err != nil {
		return 0, nil, err
	}

	taxes := NewPORepository(r.db)
	lines := make([]*grn.ReceiptLine, 0, len(rows))
	for _, row := range rows {
		slabs, err := taxes.slabsForTaxGroup(row.TaxGroupID)
		if err != nil {
			return 0, nil, err
		}

		line := &grn.ReceiptLine{
			LineID:            int64(row.LineID),
			DetailID:          int64(row.ProductID),
			Barcode:           row.Barcode,
			ProductType:       grn.ProductType(row.GrnDetail.ProductType),
			ItemName:          row.ItemName,
			Quantity:          row.Quantity,
			UnitPrice:         decimal.NewFromFloat(row.UnitPrice),
			MRP:               decimal.NewFromFloat(row.Mrp),
			TaxSlabs:          slabs,
			TaxPercent:        decimal.NewFromFloat(row.TaxPct),
			FittingCharge:     decimal.NewFromFloat(row.FittingCharge),
			FittingTaxPercent: decimal.NewFromFloat(row.FittingTaxPct),
		}
		if row.PoDetailsID != 0 {
			line.POLine = &grn.POLineRef{
				PoDetailsID:  row.PoDetailsID,
				PoNumber:     row.PoNumber,
				OrderedQty:   row.OrderedQty,
				ReceivedQty:  row.ReceivedQty,
				CancelledQty: row.CancelledQty,
			}
		}
		if row.BatchCode != "" {
			line.Batch = &grn.BatchCode{Code: row.BatchCode, Expiry: row.BatchExpiry, DetailID: int64(row.ProductID)}
		}
		lines = append(lines, line)
	}

	return header.ID, lines, nil
}

// SaveDraftLines persists the draft header and replaces its detail rows, so a
// half-entered receipt survives the session.
func (r *GrnRepository) SaveDraftLines(ctx context.Context, payload grn.CommitPayload) (int64, error) {
	var draftID int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header, err := r.upsertHeader(tx, payload)
		if err != nil {
			return err
		}
		draftID = header.ID

		if err := tx.Where("grn_id = ?", header.ID).Delete(&models.GrnDetail{}).Error; err != nil {
			return err
		}
		return r.insertDetails(tx, header, payload, "draft")
	})
	if err != nil {
		return 0, err
	}
	return draftID, nil
}

// CompleteReceipt finalizes a receipt atomically: the header flips to
// complete, PO lines are advanced, batch stock is increased and a history row
// is written. Any failure rolls the whole receipt back.
func (r *GrnRepository) CompleteReceipt(ctx context.Context, payload grn.CommitPayload) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Uniqueness is re-checked inside the transaction; the workflow check
		// ran earlier and another receipt may have completed since.
		var dup int64
		err := tx.Model(&models.GrnHeader{}).
			Where("vendor_id = ? AND document_number = ? AND status = ?", payload.VendorID, payload.DocumentNumber, "complete").
			Count(&dup).Error
		if err != nil {
			return err
		}
		if dup > 0 {
			return grn.ErrDuplicateDocumentNumber
		}

		header, err := r.upsertHeader(tx, payload)
		if err != nil {
			return err
		}

		grnNo, err := r.GenerateGrnNo(tx)
		if err != nil {
			return err
		}

		if err := tx.Where("grn_id = ?", header.ID).Delete(&models.GrnDetail{}).Error; err != nil {
			return err
		}
		header.GrnNo = grnNo
		header.Status = "complete"
		header.UpdatedBy = r.userID
		if err := tx.Save(header).Error; err != nil {
			return err
		}
		if err := r.insertDetails(tx, header, payload, "complete"); err != nil {
			return err
		}

		for _, line := range payload.Lines {
			if line.PoDetailsID != 0 {
				if err := r.advancePOLine(tx, line.PoDetailsID, line.Quantity); err != nil {
					return err
				}
			}
			if line.BatchCode != "" {
				if err := r.addBatchStock(tx, line, payload.LocationID); err != nil {
					return err
				}
			}
		}

		detail := fmt.Sprintf("document %s, %d lines", payload.DocumentNumber, len(payload.Lines))
		return helpers.InsertTransactionHistory(tx, grnNo, "complete", "goods receipt", detail, r.userID)
	})
}

// DeleteDraftLine removes one persisted draft line.
func (r *GrnRepository) DeleteDraftLine(ctx context.Context, lineID int64) error {
	return r.db.WithContext(ctx).
		Where("line_id = ? AND status = ?", lineID, "draft").
		Delete(&models.GrnDetail{}).Error
}

func (r *GrnRepository) upsertHeader(tx *gorm.DB, payload grn.CommitPayload) (*models.GrnHeader, error) {
	flag := "N"
	if payload.AgainstPO {
		flag = "Y"
	}

	var header models.GrnHeader
	if payload.DraftID != 0 {
		if err := tx.First(&header, "id = ?", payload.DraftID).Error; err != nil {
			return nil, err
		}
	} else {
		header.CreatedBy = r.userID
	}

	header.VendorID = int(payload.VendorID)
	header.LocationID = int(payload.LocationID)
	header.DocumentNumber = payload.DocumentNumber
	header.DocumentDate = payload.DocumentDate
	header.BillingMethod = string(payload.BillingMethod)
	header.AgainstPo = flag
	header.Remarks = payload.Remarks
	header.UpdatedBy = r.userID

	if err := tx.Save(&header).Error; err != nil {
		return nil, err
	}
	return &header, nil
}

func (r *GrnRepository) insertDetails(tx *gorm.DB, header *models.GrnHeader, payload grn.CommitPayload, status string) error {
	for _, line := range payload.Lines {
		unitPrice, _ := line.UnitPrice.Float64()
		mrp, _ := line.MRP.Float64()
		taxPct, _ := line.TaxPercent.Float64()
		fitting, _ := line.FittingCharge.Float64()
		fittingTax, _ := line.FittingTaxPercent.Float64()

		detail := models.GrnDetail{
			GrnID:         header.ID,
			GrnNo:         header.GrnNo,
			LineID:        types.SnowflakeID(line.LineID),
			ProductID:     uint(line.DetailID),
			ItemName:      line.ItemName,
			ProductType:   string(line.ProductType),
			Barcode:       line.Barcode,
			PoDetailsID:   line.PoDetailsID,
			PoNumber:      line.PoNumber,
			BatchCode:     line.BatchCode,
			BatchExpiry:   line.BatchExpiry,
			Quantity:      line.Quantity,
			UnitPrice:     unitPrice,
			Mrp:           mrp,
			TaxPct:        taxPct,
			FittingCharge: fitting,
			FittingTaxPct: fittingTax,
			Status:        status,
			CreatedBy:     r.userID,
		}
		if err := tx.Create(&detail).Error; err != nil {
			return err
		}
	}
	return nil
}

// advancePOLine bumps the received quantity and closes the header when every
// line on the order is fully received or cancelled.
func (r *GrnRepository) advancePOLine(tx *gorm.DB, poDetailsID int64, qty int) error {
	var detail models.PurchaseOrderDetail
	if err := tx.First(&detail, "id = ?", poDetailsID).Error; err != nil {
		return err
	}

	if detail.ReceivedQty+qty > detail.OrderedQty-detail.CancelledQty {
		return fmt.Errorf("received quantity would exceed ordered quantity on po line %d", poDetailsID)
	}

	detail.ReceivedQty += qty
	detail.UpdatedBy = r.userID
	if err := tx.Save(&detail).Error; err != nil {
		return err
	}

	var open int64
	err := tx.Model(&models.PurchaseOrderDetail{}).
		Where("po_id = ? AND ordered_qty - received_qty - cancelled_qty > 0", detail.PoID).
		Count(&open).Error
	if err != nil {
		return err
	}
	if open == 0 {
		return tx.Model(&models.PurchaseOrderHeader{}).
			Where("id = ?", detail.PoID).
			Updates(map[string]interface{}{"status": "closed", "updated_by": r.userID}).Error
	}
	return nil
}

func (r *GrnRepository) addBatchStock(tx *gorm.DB, line grn.CommitLine, locationID int64) error {
	var batch models.Batch
	err := tx.Where("product_id = ? AND location_id = ? AND batch_code = ?",
		line.DetailID, locationID, line.BatchCode).First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		mrp, _ := line.MRP.Float64()
		batch = models.Batch{
			ProductID:  uint(line.DetailID),
			LocationID: uint(locationID),
			BatchCode:  line.BatchCode,
			Expiry:     line.BatchExpiry,
			Mrp:        mrp,
			Quantity:   line.Quantity,
			CreatedBy:  r.userID,
		}
		return tx.Create(&batch).Error
	}
	if err != nil {
		return err
	}

	batch.Quantity += line.Quantity
	batch.UpdatedBy = r.userID
	return tx.Save(&batch).Error
}

type ListReceipt struct {
	ID             int64   `json:"id"`
	GrnNo          string  `json:"grn_no"`
	VendorID       int64   `json:"vendor_id"`
	VendorName     string  `json:"vendor_name"`
	DocumentNumber string  `json:"document_number"`
	DocumentDate   string  `json:"document_date"`
	Status         string  `json:"status"`
	TotalLine      int     `json:"total_line"`
	TotalQty       int     `json:"total_qty"`
	TotalValue     float64 `json:"total_value"`
}

// ListReceipts is the receipt register, newest first.
func (r *GrnRepository) ListReceipts() ([]ListReceipt, error) {
	var result []ListReceipt
	sql := `SELECT h.id, h.grn_no, h.vendor_id, v.vendor_name, h.document_number,
		h.document_date, h.status,
		COUNT(d.id) AS total_line,
		COALESCE(SUM(d.quantity), 0) AS total_qty,
		COALESCE(SUM(d.quantity * d.unit_price * (1 + d.tax_pct / 100) + d.fitting_charge * (1 + d.fitting_tax_pct / 100)), 0) AS total_value
		FROM grn_headers h
		JOIN vendors v ON v.id = h.vendor_id
		LEFT JOIN grn_details d ON d.grn_id = h.id AND d.deleted_at IS NULL
		WHERE h.deleted_at IS NULL
		GROUP BY h.id, h.grn_no, h.vendor_id, v.vendor_name, h.document_number, h.document_date, h.status
		ORDER BY h.created_at DESC`

	if err := r.db.Raw(sql).Scan(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// GetReceipt loads one receipt with its details.
func (r *GrnRepository) GetReceipt(id int64) (*models.GrnHeader, error) {
	var header models.GrnHeader
	err := r.db.Preload("Details").First(&header, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &header, nil
}
