// database/seeder.go
package database

import (
	"errors"
	"log"
	"optic-app/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedUserMaster(db)
	SeedLocations(db)
	SeedVendors(db)
	SeedTaxGroups(db)
	SeedProducts(db)
	SeedBatches(db)
	SeedPurchaseOrders(db)
}

func SeedUserMaster(db *gorm.DB) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	users := []models.User{
		{Username: "admin", Password: string(hashed), Name: "Administrator", Email: "admin@optic.local", Role: "admin"},
		{Username: "store", Password: string(hashed), Name: "Store Keeper", Email: "store@optic.local", Role: "store"},
	}

	for _, u := range users {
		var existing models.User
		if err := db.Where("username = ?", u.Username).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				db.Create(&u)
			}
		}
	}
}

func SeedLocations(db *gorm.DB) {
	locations := []models.Location{
		{LocationCode: "HO", LocationName: "Head Office Store", City: "Mumbai"},
		{LocationCode: "BR1", LocationName: "Branch One", City: "Pune"},
	}

	for _, l := range locations {
		var existing models.Location
		if err := db.Where("location_code = ?", l.LocationCode).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				db.Create(&l)
			}
		}
	}
}

func SeedVendors(db *gorm.DB) {
	vendors := []models.Vendor{
		{VendorCode: "V001", VendorName: "Prime Optics Distributors", City: "Mumbai", GstNumber: "27AABCP1234A1Z5", QtyPriceApplicable: "Y"},
		{VendorCode: "V002", VendorName: "Lenscraft Supplies", City: "Delhi", GstNumber: "07AABCL5678B1Z3", QtyPriceApplicable: "Y"},
		// Challan-only relationship: receipts are recorded without
		// quantities or prices.
		{VendorCode: "V003", VendorName: "Metro Eyewear Consignments", City: "Chennai", QtyPriceApplicable: "N"},
	}

	for _, v := range vendors {
		var existing models.Vendor
		if err := db.Where("vendor_code = ?", v.VendorCode).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				db.Create(&v)
			}
		}
	}
}

func SeedTaxGroups(db *gorm.DB) {
	groups := []models.TaxGroup{
		{
			Name: "FRAMES_SLABBED",
			Slabs: []models.TaxSlab{
				{Position: 1, SlabEnd: 1000, SalesTaxPct: 5, PurchaseTaxPct: 5},
				{Position: 2, SlabEnd: 10000, SalesTaxPct: 12, PurchaseTaxPct: 12},
			},
		},
		{
			Name: "LENSES_FLAT",
			Slabs: []models.TaxSlab{
				{Position: 1, SlabEnd: 100000, SalesTaxPct: 12, PurchaseTaxPct: 12},
			},
		},
		{
			Name: "CONTACT_LENS_FLAT",
			Slabs: []models.TaxSlab{
				{Position: 1, SlabEnd: 100000, SalesTaxPct: 12, PurchaseTaxPct: 12},
			},
		},
	}

	for _, g := range groups {
		var existing models.TaxGroup
		if err := db.Where("name = ?", g.Name).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				db.Create(&g)
			}
		}
	}
}

func SeedProducts(db *gorm.DB) {
	var frames, lenses, contacts models.TaxGroup
	db.Where("name = ?", "FRAMES_SLABBED").First(&frames)
	db.Where("name = ?", "LENSES_FLAT").First(&lenses)
	db.Where("name = ?", "CONTACT_LENS_FLAT").First(&contacts)

	products := []models.Product{
		{
			ItemCode: "FR-1001", Barcode: "FR-1001", ItemName: "Aviator Classic", ProductType: "FRAME",
			Brand: "Rayban", ModelNo: "RB3025", Color: "Gold", Size: "58",
			PurchasePrice: 750, Mrp: 1499, TaxGroupID: frames.ID,
		},
		{
			ItemCode: "FR-1002", Barcode: "FR-1002", ItemName: "Round Metal", ProductType: "FRAME",
			Brand: "Rayban", ModelNo: "RB3447", Color: "Black", Size: "50",
			PurchasePrice: 2100, Mrp: 4200, TaxGroupID: frames.ID,
		},
		{
			ItemCode: "LN-2001", Barcode: "LN-2001", ItemName: "Single Vision 1.56", ProductType: "LENS",
			Brand: "Essilor", Power: "-1.25", Coating: "Anti-glare",
			PurchasePrice: 800, Mrp: 1600, TaxGroupID: lenses.ID,
			FittingCharge: 100, FittingTaxPct: 18,
		},
		{
			ItemCode: "CL-3001", Barcode: "CL-3001", ItemName: "Monthly Toric", ProductType: "CONTACT_LENS",
			Brand: "Acuvue", Power: "-2.50", BaseCurve: "8.6",
			PurchasePrice: 300, Mrp: 650, TaxGroupID: contacts.ID,
			IsBatchManaged: "Y",
		},
		{
			ItemCode: "AC-4001", Barcode: "AC-4001", ItemName: "Microfiber Cleaning Cloth", ProductType: "ACCESSORY",
			PurchasePrice: 40, Mrp: 99, TaxGroupID: frames.ID,
		},
	}

	for _, p := range products {
		var existing models.Product
		if err := db.Where("barcode = ?", p.Barcode).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				db.Create(&p)
			}
		}
	}
}

func SeedBatches(db *gorm.DB) {
	var contact models.Product
	if err := db.Where("barcode = ?", "CL-3001").First(&contact).Error; err != nil {
		return
	}
	var location models.Location
	if err := db.Where("location_code = ?", "HO").First(&location).Error; err != nil {
		return
	}

	batches := []models.Batch{
		{ProductID: contact.ID, LocationID: location.ID, BatchCode: "LOT-2024A", Expiry: "2027-01-31", Mrp: 650, Quantity: 40},
		{ProductID: contact.ID, LocationID: location.ID, BatchCode: "LOT-2024B", Expiry: "2027-06-30", Mrp: 675, Quantity: 25},
	}

	for _, b := range batches {
		var existing models.Batch
		err := db.Where("product_id = ? AND location_id = ? AND batch_code = ?", b.ProductID, b.LocationID, b.BatchCode).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				db.Create(&b)
			}
		}
	}
}

func SeedPurchaseOrders(db *gorm.DB) {
	var vendor models.Vendor
	if err := db.Where("vendor_code = ?", "V001").First(&vendor).Error; err != nil {
		return
	}
	var frame, contact models.Product
	db.Where("barcode = ?", "FR-1001").First(&frame)
	db.Where("barcode = ?", "CL-3001").First(&contact)

	var existing models.PurchaseOrderHeader
	if err := db.Where("po_number = ?", "PO-2608-0001").First(&existing).Error; err == nil {
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}

	po := models.PurchaseOrderHeader{
		PoNumber: "PO-2608-0001",
		VendorID: int(vendor.ID),
		PoDate:   "2026-08-01",
		Status:   "open",
		Details: []models.PurchaseOrderDetail{
			{PoNumber: "PO-2608-0001", ProductID: frame.ID, Barcode: frame.Barcode, OrderedQty: 10, UnitPrice: 750},
			{PoNumber: "PO-2608-0001", ProductID: contact.ID, Barcode: contact.Barcode, OrderedQty: 30, UnitPrice: 300},
		},
	}
	db.Create(&po)
}
