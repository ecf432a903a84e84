package routes

import (
	"optic-app/config"
	"optic-app/controllers"
	"optic-app/middleware"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupGrnRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client) {
	grnController := controllers.NewGrnController(db, rdb)
	authMiddleware := middleware.NewAuthMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/grn", authMiddleware.Handler())

	api.Get("/session", grnController.GetSession)
	api.Post("/session/header", grnController.SetHeaderField)
	api.Post("/session/advance", grnController.Advance)
	api.Post("/session/retreat", grnController.Retreat)
	api.Delete("/session", grnController.CancelSession)

	api.Get("/items/search", grnController.SearchItems)
	api.Post("/items", grnController.AddItem)
	api.Get("/items/batches/:detail_id", grnController.ListBatches)
	api.Post("/items/batch", grnController.ResolveBatch)
	api.Put("/items/:line_id/quantity", grnController.UpdateQuantity)
	api.Put("/items/:line_id/price", grnController.UpdatePrice)
	api.Delete("/items/:line_id", grnController.DeleteLine)

	api.Get("/review", grnController.Review)
	api.Post("/save", grnController.SaveDraft)
	api.Post("/commit", grnController.Commit)

	api.Get("/", grnController.ListReceipts)
	api.Get("/export", grnController.ExportExcel)
	api.Get("/:id", grnController.GetReceipt)
}
