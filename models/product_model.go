package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model
	ItemCode      string  `json:"item_code" gorm:"unique"`
	ItemName      string  `json:"item_name"`
	Barcode       string  `json:"barcode" gorm:"unique"`
	ProductType   string  `json:"product_type"` // FRAME, LENS, CONTACT_LENS, ACCESSORY
	Brand         string  `json:"brand"`
	BrandID       int     `json:"brand_id"`
	ModelNo       string  `json:"model_no"`
	Color         string  `json:"color"`
	Size          string  `json:"size"`
	Power         string  `json:"power"`
	Coating       string  `json:"coating"`
	BaseCurve     string  `json:"base_curve"`
	Description   string  `json:"description"`
	PurchasePrice float64 `json:"purchase_price" gorm:"default:0"`
	Mrp           float64 `json:"mrp" gorm:"default:0"`
	// Batch-managed products (contact lenses) cannot be received without a
	// resolved batch code.
	IsBatchManaged string   `json:"is_batch_managed" gorm:"default:'N'"`
	FittingCharge  float64  `json:"fitting_charge" gorm:"default:0"`
	FittingTaxPct  float64  `json:"fitting_tax_pct" gorm:"default:0"`
	TaxGroupID     uint     `json:"tax_group_id"`
	TaxGroup       TaxGroup `gorm:"foreignKey:TaxGroupID"`
	Remarks        string   `json:"remarks"`
	CreatedBy      int
	UpdatedBy      int
	DeletedBy      int
}
