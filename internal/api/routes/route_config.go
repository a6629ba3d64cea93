package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/namph-hanoi/genai-image-extractor-backend/internal/api/handlers"
	"github.com/namph-hanoi/genai-image-extractor-backend/internal/middleware"
)

type Config struct {
	App            *fiber.App
	ReceiptHandler handlers.ReceiptHandler
	Middleware     middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Receipts()
	c.GuestRoute()
}

func (c *Config) Receipts() {
	c.App.Post("/extract-receipt-details", c.ReceiptHandler.ExtractReceiptDetails)
	c.App.Patch("/extract-receipt-details", c.ReceiptHandler.UpdateReceipt)
	c.App.Get("/images/:id", c.ReceiptHandler.GetImage)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
