package routes

import (
	"optic-app/config"
	"optic-app/controllers"
	"optic-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupPORoutes(app *fiber.App, db *gorm.DB) {
	poController := controllers.NewPOController(db)
	authMiddleware := middleware.NewAuthMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/po", authMiddleware.Handler())
	api.Get("/search", poController.SearchOpenPOs)
}
