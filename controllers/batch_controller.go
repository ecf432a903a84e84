package controllers

import (
	"optic-app/repositories"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BatchController struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewBatchController(DB *gorm.DB, RDB *redis.Client) *BatchController {
	return &BatchController{DB: DB, RDB: RDB}
}

// GetBatches lists in-stock batches for a product at the caller's location,
// outside any intake session. The intake flow has its own cached listing.
func (c *BatchController) GetBatches(ctx *fiber.Ctx) error {
	detailID, err := strconv.ParseInt(ctx.Params("detail_id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid detail id"})
	}

	locationID, _ := ctx.Locals("locationID").(float64)

	batchRepo := repositories.NewBatchRepository(c.DB, c.RDB)
	batches, err := batchRepo.BatchesForDetail(ctx.Context(), detailID, int64(locationID))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"batches": batches}})
}
