package handlers

import "github.com/gofiber/fiber/v2"

// success writes the standard success envelope.
func success(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
