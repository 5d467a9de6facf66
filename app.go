package main

import (
	"time"

	"inventario/internal/handlers"
	"inventario/internal/middleware"
	"inventario/internal/services"
	"inventario/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// NewApp builds the Fiber application serving the product pages.
func NewApp(productService *services.ProductService, sessionExpiration time.Duration) (*fiber.App, error) {
	engine, err := views.NewEngine()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "inventario",
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	sessions := session.New(session.Config{
		Expiration:     sessionExpiration,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})

	// --- Routes ---
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/productos/")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	handlers.NewProductHandler(productService, sessions).RegisterRoutes(app)

	return app, nil
}
