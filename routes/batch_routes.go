package routes

import (
	"optic-app/config"
	"optic-app/controllers"
	"optic-app/middleware"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupBatchRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client) {
	batchController := controllers.NewBatchController(db, rdb)
	authMiddleware := middleware.NewAuthMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/batch", authMiddleware.Handler())
	api.Get("/:detail_id", batchController.GetBatches)
}
