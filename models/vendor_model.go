package models

import "gorm.io/gorm"

type Vendor struct {
	gorm.Model
	VendorCode string `json:"vendor_code" gorm:"unique"`
	VendorName string `json:"vendor_name" gorm:"unique"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	GstNumber  string `json:"gst_number"`
	// QtyPriceApplicable is 'N' for delivery-challan-only relationships where
	// received quantities and prices are not tracked or totalled.
	QtyPriceApplicable string `json:"qty_price_applicable" gorm:"default:'Y'"`
	CreatedBy          int
	UpdatedBy          int
	DeletedBy          int
}

type Location struct {
	gorm.Model
	LocationCode string `json:"location_code" gorm:"unique"`
	LocationName string `json:"location_name"`
	City         string `json:"city"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}
