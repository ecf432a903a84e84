package models

import "gorm.io/gorm"

type TaxGroup struct {
	gorm.Model
	Name  string    `json:"name" gorm:"unique"`
	Slabs []TaxSlab `gorm:"foreignKey:TaxGroupID" json:"slabs"`
}

// TaxSlab rows are evaluated in Position order. SlabEnd is a tax-inclusive
// price ceiling; SalesTaxPct is only used to back out the exclusive ceiling
// when resolving the purchase tax for a unit price.
type TaxSlab struct {
	gorm.Model
	TaxGroupID     uint    `json:"tax_group_id"`
	Position       int     `json:"position"`
	SlabEnd        float64 `json:"slab_end"`
	SalesTaxPct    float64 `json:"sales_tax_pct"`
	PurchaseTaxPct float64 `json:"purchase_tax_pct"`
}
