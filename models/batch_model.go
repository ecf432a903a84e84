package models

import "gorm.io/gorm"

type Batch struct {
	gorm.Model
	ProductID  uint    `json:"product_id"`
	LocationID uint    `json:"location_id"`
	BatchCode  string  `json:"batch_code"`
	Expiry     string  `gorm:"type:date" json:"expiry"`
	Mrp        float64 `json:"mrp" gorm:"default:0"`
	Quantity   int     `json:"quantity" gorm:"default:0"`
	CreatedBy  int
	UpdatedBy  int
	DeletedBy  int
}
