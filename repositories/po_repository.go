package repositories

import (
	"context"
	"optic-app/grn"
	"optic-app/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

type ListPO struct {
	ID           int64  `json:"id"`
	PoNumber     string `json:"po_number"`
	PoDate       string `json:"po_date"`
	VendorID     int64  `json:"vendor_id"`
	VendorName   string `json:"vendor_name"`
	Status       string `json:"status"`
	TotalLine    int    `json:"total_line"`
	TotalOrdered int    `json:"total_ordered"`
	TotalPending int    `json:"total_pending"`
}

// SearchOpenPOs lists open purchase orders for a vendor, for the
// specific-order picker during item intake.
func (r *PORepository) SearchOpenPOs(vendorID int64, keyword string) ([]ListPO, error) {
	var result []ListPO
	sql := `SELECT h.id, h.po_number, h.po_date, h.vendor_id, v.vendor_name, h.status,
		COUNT(d.id) AS total_line,
		COALESCE(SUM(d.ordered_qty), 0) AS total_ordered,
		COALESCE(SUM(d.ordered_qty - d.received_qty - d.cancelled_qty), 0) AS total_pending
		FROM purchase_order_headers h
		JOIN vendors v ON v.id = h.vendor_id
		JOIN purchase_order_details d ON d.po_id = h.id AND d.deleted_at IS NULL
		WHERE h.deleted_at IS NULL AND h.status = 'open' AND h.vendor_id = ?
		AND h.po_number LIKE ?
		GROUP BY h.id, h.po_number, h.po_date, h.vendor_id, v.vendor_name, h.status
		ORDER BY h.po_date DESC`

	if err := r.db.Raw(sql, vendorID, "%"+keyword+"%").Scan(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

type candidateRow struct {
	ProductID      int64   `json:"product_id"`
	Barcode        string  `json:"barcode"`
	ProductType    string  `json:"product_type"`
	ItemName       string  `json:"item_name"`
	Brand          string  `json:"brand"`
	ModelNo        string  `json:"model_no"`
	Color          string  `json:"color"`
	Size           string  `json:"size"`
	Power          string  `json:"power"`
	Coating        string  `json:"coating"`
	BaseCurve      string  `json:"base_curve"`
	PurchasePrice  float64 `json:"purchase_price"`
	Mrp            float64 `json:"mrp"`
	IsBatchManaged string  `json:"is_batch_managed"`
	FittingCharge  float64 `json:"fitting_charge"`
	FittingTaxPct  float64 `json:"fitting_tax_pct"`
	TaxGroupID     uint    `json:"tax_group_id"`
	PoDetailsID    int64   `json:"po_details_id"`
	PoNumber       string  `json:"po_number"`
	OrderedQty     int     `json:"ordered_qty"`
	ReceivedQty    int     `json:"received_qty"`
	CancelledQty   int     `json:"cancelled_qty"`
}

// CandidatesByBarcode resolves a scanned barcode to intake candidates. When
// the draft is against a purchase order, only products with an open PO line
// for the vendor match and the candidate carries the PO reference.
func (r *PORepository) CandidatesByBarcode(barcode string, productType string, vendorID int64, againstPO bool) ([]grn.CandidateItem, error) {
	return r.searchCandidates(`p.barcode = ?`, []interface{}{barcode}, productType, vendorID, againstPO)
}

// CandidatesByBrandModel is the manual search path: brand, model or item name
// keyword.
func (r *PORepository) CandidatesByBrandModel(keyword string, productType string, vendorID int64, againstPO bool) ([]grn.CandidateItem, error) {
	like := "%" + keyword + "%"
	return r.searchCandidates(`(p.brand LIKE ? OR p.model_no LIKE ? OR p.item_name LIKE ?)`,
		[]interface{}{like, like, like}, productType, vendorID, againstPO)
}

func (r *PORepository) searchCandidates(cond string, condArgs []interface{}, productType string, vendorID int64, againstPO bool) ([]grn.CandidateItem, error) {
	sql := `SELECT p.id AS product_id, p.barcode, p.product_type, p.item_name,
		p.brand, p.model_no, p.color, p.size, p.power, p.coating, p.base_curve,
		p.purchase_price, p.mrp, p.is_batch_managed,
		p.fitting_charge, p.fitting_tax_pct, p.tax_group_id,
		COALESCE(pod.id, 0) AS po_details_id, COALESCE(poh.po_number, '') AS po_number,
		COALESCE(pod.ordered_qty, 0) AS ordered_qty,
		COALESCE(pod.received_qty, 0) AS received_qty,
		COALESCE(pod.cancelled_qty, 0) AS cancelled_qty
		FROM products p `

	args := []interface{}{}
	if againstPO {
		sql += `JOIN purchase_order_details pod ON pod.product_id = p.id AND pod.deleted_at IS NULL
			AND pod.ordered_qty - pod.received_qty - pod.cancelled_qty > 0
			JOIN purchase_order_headers poh ON poh.id = pod.po_id AND poh.deleted_at IS NULL
			AND poh.status = 'open' AND poh.vendor_id = ? `
		args = append(args, vendorID)
	} else {
		sql += `LEFT JOIN purchase_order_details pod ON 1 = 0
			LEFT JOIN purchase_order_headers poh ON 1 = 0 `
	}

	sql += `WHERE p.deleted_at IS NULL AND p.product_type = ? AND ` + cond
	args = append(args, productType)
	args = append(args, condArgs...)

	var rows []candidateRow
	if err := r.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	candidates := make([]grn.CandidateItem, 0, len(rows))
	for _, row := range rows {
		slabs, err := r.slabsForTaxGroup(row.TaxGroupID)
		if err != nil {
			return nil, err
		}

		cand := grn.CandidateItem{
			DetailID:      row.ProductID,
			Barcode:       row.Barcode,
			ProductType:   grn.ProductType(row.ProductType),
			ItemName:      row.ItemName,
			UnitPrice:     decimal.NewFromFloat(row.PurchasePrice),
			MRP:           decimal.NewFromFloat(row.Mrp),
			TaxSlabs:      slabs,
			BatchRequired: row.IsBatchManaged == "Y",
		}

		switch cand.ProductType {
		case grn.ProductFrame:
			cand.Frame = &grn.FrameDetail{Brand: row.Brand, Model: row.ModelNo, Color: row.Color, Size: row.Size}
		case grn.ProductLens:
			cand.Lens = &grn.LensDetail{
				Power:             row.Power,
				Coating:           row.Coating,
				FittingCharge:     decimal.NewFromFloat(row.FittingCharge),
				FittingTaxPercent: decimal.NewFromFloat(row.FittingTaxPct),
			}
		case grn.ProductContactLens:
			cand.ContactLens = &grn.ContactLensDetail{Power: row.Power, BaseCurve: row.BaseCurve}
		case grn.ProductAccessory:
			cand.Accessory = &grn.AccessoryDetail{Description: row.ItemName}
		}

		if row.PoDetailsID != 0 {
			cand.POLine = &grn.POLineRef{
				PoDetailsID:  row.PoDetailsID,
				PoNumber:     row.PoNumber,
				OrderedQty:   row.OrderedQty,
				ReceivedQty:  row.ReceivedQty,
				CancelledQty: row.CancelledQty,
			}
		}

		candidates = append(candidates, cand)
	}

	return candidates, nil
}

func (r *PORepository) slabsForTaxGroup(taxGroupID uint) ([]grn.TaxSlab, error) {
	var rows []models.TaxSlab
	if err := r.db.Where("tax_group_id = ?", taxGroupID).Order("position asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	slabs := make([]grn.TaxSlab, 0, len(rows))
	for _, s := range rows {
		slabs = append(slabs, grn.TaxSlab{
			SlabEnd:            decimal.NewFromFloat(s.SlabEnd),
			SalesTaxPercent:    decimal.NewFromFloat(s.SalesTaxPct),
			PurchaseTaxPercent: decimal.NewFromFloat(s.PurchaseTaxPct),
		})
	}
	return slabs, nil
}

type pendingRow struct {
	OrderedQty   int `json:"ordered_qty"`
	ReceivedQty  int `json:"received_qty"`
	CancelledQty int `json:"cancelled_qty"`
	OtherDrafts  int `json:"other_drafts"`
	ThisDraft    int `json:"this_draft"`
}

// CheckPendingQty re-reads the live PO line and every draft receipt touching
// it. Quantities already saved on the caller's own draft are reported
// separately so they are not double-counted against the prospective total.
func (r *PORepository) CheckPendingQty(ctx context.Context, poDetailsID int64, prospectiveQty int, draftID int64) (grn.PendingQtyResult, error) {
	var row pendingRow
	sql := `SELECT d.ordered_qty, d.received_qty, d.cancelled_qty,
		COALESCE(SUM(CASE WHEN g.grn_id <> ? THEN g.quantity ELSE 0 END), 0) AS other_drafts,
		COALESCE(SUM(CASE WHEN g.grn_id = ? THEN g.quantity ELSE 0 END), 0) AS this_draft
		FROM purchase_order_details d
		LEFT JOIN grn_details g ON g.po_details_id = d.id AND g.status = 'draft' AND g.deleted_at IS NULL
		WHERE d.id = ? AND d.deleted_at IS NULL
		GROUP BY d.ordered_qty, d.received_qty, d.cancelled_qty`

	tx := r.db.WithContext(ctx).Raw(sql, draftID, draftID, poDetailsID).Scan(&row)
	if tx.Error != nil {
		return grn.PendingQtyResult{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return grn.PendingQtyResult{IsValid: false, Message: "purchase order line not found"}, nil
	}

	pending := row.OrderedQty - row.ReceivedQty - row.CancelledQty - row.OtherDrafts
	if pending < 0 {
		pending = 0
	}

	res := grn.PendingQtyResult{
		PendingQty:         pending,
		ExistingQtyOnDraft: row.ThisDraft,
		IsValid:            prospectiveQty <= pending,
	}
	if !res.IsValid {
		res.Message = "requested quantity exceeds the pending quantity on the purchase order line"
	}
	return res, nil
}

// QtyPriceApplicable reads the vendor master flag that decides whether the
// receipt tracks quantities, prices and totals.
func (r *PORepository) QtyPriceApplicable(ctx context.Context, vendorID int64) (bool, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", vendorID).Error; err != nil {
		return false, err
	}
	return vendor.QtyPriceApplicable == "Y", nil
}

// DocumentNumberExists checks vendor invoice/challan number uniqueness among
// receipts that were actually completed.
func (r *PORepository) DocumentNumberExists(ctx context.Context, vendorID int64, documentNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GrnHeader{}).
		Where("vendor_id = ? AND document_number = ? AND status = ?", vendorID, documentNumber, "complete").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
