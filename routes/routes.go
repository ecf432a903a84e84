package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes wires every route group onto the app.
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client) {
	SetupAuthRoutes(app, db)
	SetupGrnRoutes(app, db, rdb)
	SetupPORoutes(app, db)
	SetupBatchRoutes(app, db, rdb)
}
