package models

import (
	"optic-app/controllers/idgen"
	"optic-app/types"

	"gorm.io/gorm"
)

type GrnHeader struct {
	gorm.Model
	ID             int64  `json:"id" gorm:"primary_key"`
	GrnNo          string `json:"grn_no" gorm:"unique"`
	VendorID       int    `json:"vendor_id"`
	LocationID     int    `json:"location_id"`
	DocumentNumber string `json:"document_number"`
	DocumentDate   string `gorm:"type:date" json:"document_date"`
	BillingMethod  string `json:"billing_method" gorm:"default:'INVOICE'"`
	AgainstPo      string `json:"against_po" gorm:"default:'N'"`
	Status         string `json:"status" gorm:"default:'draft'"`
	Remarks        string `json:"remarks"`
	CreatedBy      int
	UpdatedBy      int
	DeletedBy      int

	Details []GrnDetail `gorm:"foreignKey:GrnID;references:ID;constraint:OnDelete:CASCADE" json:"details"`
}

func (u *GrnHeader) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = idgen.GenerateID()
	return
}

type GrnDetail struct {
	gorm.Model
	ID    int64  `json:"id" gorm:"primary_key"`
	GrnID int64  `json:"grn_id" gorm:"default:null"`
	GrnNo string `json:"grn_no"`
	// Line ids are snowflakes minted by the intake engine; serialized as
	// strings so they survive javascript clients.
	LineID        types.SnowflakeID `json:"line_id"`
	ProductID     uint              `json:"product_id"`
	ItemName      string            `json:"item_name"`
	ProductType   string            `json:"product_type"`
	ItemCode      string            `json:"item_code"`
	Barcode       string            `json:"barcode"`
	PoDetailsID   int64             `json:"po_details_id" gorm:"default:null"`
	PoNumber      string            `json:"po_number"`
	BatchCode     string            `json:"batch_code"`
	BatchExpiry   string            `json:"batch_expiry"`
	Quantity      int               `json:"quantity"`
	UnitPrice     float64           `json:"unit_price"`
	Mrp           float64           `json:"mrp"`
	TaxPct        float64           `json:"tax_pct"`
	FittingCharge float64           `json:"fitting_charge" gorm:"default:0"`
	FittingTaxPct float64           `json:"fitting_tax_pct" gorm:"default:0"`
	Status        string            `json:"status" gorm:"default:'draft'"`
	CreatedBy     int
	UpdatedBy     int
	DeletedBy     int
}
