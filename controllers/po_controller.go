package controllers

import (
	"optic-app/repositories"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type POController struct {
	DB *gorm.DB
}

func NewPOController(DB *gorm.DB) *POController {
	return &POController{DB: DB}
}

// SearchOpenPOs lists a vendor's open purchase orders with pending totals.
func (c *POController) SearchOpenPOs(ctx *fiber.Ctx) error {
	vendorID, err := strconv.ParseInt(ctx.Query("vendor_id"), 10, 64)
	if err != nil || vendorID <= 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "vendor_id is required"})
	}

	poRepo := repositories.NewPORepository(c.DB)
	pos, err := poRepo.SearchOpenPOs(vendorID, ctx.Query("keyword"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"purchase_orders": pos}})
}
