package models

import (
	"optic-app/controllers/idgen"

	"gorm.io/gorm"
)

type PurchaseOrderHeader struct {
	gorm.Model
	ID         int64  `json:"id" gorm:"primary_key"`
	PoNumber   string `json:"po_number" gorm:"unique"`
	VendorID   int    `json:"vendor_id"`
	LocationID int    `json:"location_id"`
	PoDate     string `gorm:"type:date" json:"po_date"`
	Status     string `json:"status" gorm:"default:'open'"`
	Remarks    string `json:"remarks"`
	CreatedBy  int
	UpdatedBy  int
	DeletedBy  int

	Details []PurchaseOrderDetail `gorm:"foreignKey:PoID;references:ID;constraint:OnDelete:CASCADE" json:"details"`
}

func (u *PurchaseOrderHeader) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = idgen.GenerateID()
	return
}

// PurchaseOrderDetail tracks receipt progress per ordered item. ReceivedQty
// is only bumped when a receipt completes; draft lines are counted separately
// when validating pending quantities.
type PurchaseOrderDetail struct {
	gorm.Model
	ID           int64   `json:"id" gorm:"primary_key"`
	PoID         int64   `json:"po_id"`
	PoNumber     string  `json:"po_number"`
	ProductID    uint    `json:"product_id"`
	ItemCode     string  `json:"item_code"`
	Barcode      string  `json:"barcode"`
	OrderedQty   int     `json:"ordered_qty"`
	ReceivedQty  int     `json:"received_qty" gorm:"default:0"`
	CancelledQty int     `json:"cancelled_qty" gorm:"default:0"`
	UnitPrice    float64 `json:"unit_price"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}

func (u *PurchaseOrderDetail) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = idgen.GenerateID()
	return
}
