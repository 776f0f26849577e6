package server

import (
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"news-chatter-be/internal/bootstrap"
	"news-chatter-be/internal/pkg/serverutils"
)

func New(container *bootstrap.Container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "news-chatter-be",
		BodyLimit: 10 * 1024 * 1024, // audio uploads through REST stay small; ws frames bypass this
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.App.CorsAllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(serverutils.ErrorHandlerMiddleware())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	wsGroup := api.Group("/ws")
	wsGroup.Get("/chat", container.ChatterHandler.Upgrade, container.ChatterHandler.Handler())

	user := api.Group("/user", serverutils.JwtMiddleware)
	user.Post("/create", container.UserController.CreateUser)
	user.Get("/preferences", container.UserController.GetPreferences)
	user.Put("/preferences", container.UserController.UpdatePreferences)
	user.Get("/history", container.UserController.GetHistory)

	return app
}
