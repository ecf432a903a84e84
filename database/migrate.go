// database/migrate.go
package database

import (
	"optic-app/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.Location{},
		&models.Vendor{},
		&models.TaxGroup{},
		&models.TaxSlab{},
		&models.Product{},
		&models.Batch{},
		&models.PurchaseOrderHeader{},
		&models.PurchaseOrderDetail{},
		&models.GrnHeader{},
		&models.GrnDetail{},
		&models.TransactionHistory{},
	)
}
