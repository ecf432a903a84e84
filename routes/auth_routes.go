package routes

import (
	"optic-app/config"
	"optic-app/controllers"
	"optic-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authController := controllers.NewAuthController(db)
	authMiddleware := middleware.NewAuthMiddleware(db)

	api := app.Group(config.MAIN_ROUTES + "/auth")
	api.Post("/login", authController.Login)

	protected := app.Group(config.MAIN_ROUTES+"/auth", authMiddleware.Handler())
	protected.Get("/logout", authController.Logout)
	protected.Get("/me", authController.Me)
}
