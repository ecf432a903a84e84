package main

import (
	"log"
	"optic-app/config"
	"optic-app/controllers/idgen"
	"optic-app/database"
	"optic-app/routes"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.LoadConfig()

	app := fiber.New()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	idgen.Init()
	database.RunSeeders(db)

	rdb := config.NewRedisClient()

	config.SetupCORS(app)
	routes.SetupRoutes(app, db, rdb)

	log.Fatal(app.Listen(":" + config.APP_PORT))
}
