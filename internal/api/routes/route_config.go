package routes

import (
	"kalorikollen/domain"
	"kalorikollen/internal/api/handlers"
	"kalorikollen/internal/middleware"
	"kalorikollen/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App           *fiber.App
	DeviceHandler handlers.DeviceHandler
	LedgerHandler handlers.LedgerHandler
	Middleware    middleware.Middleware
	JWTService    jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Device()
	c.Ledger()
	c.GuestRoute()
}

func (c *Config) Device() {
	c.App.Post("/api/v1/devices", c.DeviceHandler.RegisterDevice)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": domain.MessageSuccessPing})
	})
}

func (c *Config) Ledger() {
	ledger := c.App.Group("/api/v1/ledger", c.Middleware.AuthMiddleware(c.JWTService))
	ledger.Get("/dashboard", c.LedgerHandler.GetDashboard)
	ledger.Get("/coach", c.LedgerHandler.GetCoaching)

	// meals
	ledger.Get("/meals", c.LedgerHandler.GetMeals)
	ledger.Post("/meals/image", c.LedgerHandler.LogMealFromImage)
	ledger.Post("/meals/barcode", c.LedgerHandler.LogBarcodeMeal)
	ledger.Delete("/meals/:index", c.LedgerHandler.DeleteMeal)
	ledger.Get("/barcode/:code", c.LedgerHandler.LookupBarcode)

	// body
	ledger.Get("/weights", c.LedgerHandler.GetWeights)
	ledger.Post("/weights", c.LedgerHandler.AddWeight)
	ledger.Delete("/weights/:index", c.LedgerHandler.DeleteWeight)
	ledger.Post("/water", c.LedgerHandler.AddWater)
	ledger.Put("/height", c.LedgerHandler.UpdateHeight)
	ledger.Put("/goals", c.LedgerHandler.UpdateGoals)

	// favorites
	ledger.Get("/favorites", c.LedgerHandler.GetFavorites)
	ledger.Post("/favorites", c.LedgerHandler.AddFavorite)
	ledger.Delete("/favorites/:index", c.LedgerHandler.DeleteFavorite)
	ledger.Post("/favorites/:index/log", c.LedgerHandler.LogFavorite)

	// backup
	ledger.Get("/export", c.LedgerHandler.Export)
	ledger.Post("/export/mail", c.LedgerHandler.MailExport)
	ledger.Post("/import", c.LedgerHandler.Import)
}
