package router

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/zooplan/training-platform/internal/api/handler"
	"github.com/zooplan/training-platform/internal/api/middleware"
	"github.com/zooplan/training-platform/internal/service"
)

// Deps — сервисный слой, который роутер раздаёт хендлерам.
type Deps struct {
	Generator    *service.GeneratorService
	Enrollments  *service.EnrollmentService
	Availability *service.AvailabilityService
	Sessions     *service.SessionService
	Purchases    *service.PurchaseService

	Log *zap.Logger
}

// New собирает Fiber-приложение: /api/v1 за tenant-мидлварой,
// /public — токенные ссылки без тенанта.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "training-platform",
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestLogger(deps.Log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	validate := validator.New()

	generation := handler.NewGenerationHandler(deps.Generator, validate)
	enrollments := handler.NewEnrollmentHandler(deps.Enrollments, validate)
	availability := handler.NewAvailabilityHandler(deps.Availability, validate)
	sessions := handler.NewSessionHandler(deps.Sessions, validate)
	purchases := handler.NewPurchaseHandler(deps.Purchases, validate)

	api := app.Group("/api/v1", middleware.Tenant())

	api.Put("/trainers/:id/availability", availability.SaveConfig)
	api.Post("/trainers/:id/exceptions", availability.CreateException)

	api.Post("/templates", availability.CreateTemplate)
	api.Get("/templates", availability.ListTemplates)
	api.Post("/templates/:id/generate", generation.Generate)

	api.Post("/sessions", sessions.Create)
	api.Get("/sessions", sessions.List)

	api.Post("/purchases", purchases.Create)

	api.Post("/enrollments", enrollments.Enroll)
	api.Post("/enrollments/:id/cancel", enrollments.Cancel)

	public := app.Group("/public")
	public.Post("/enrollments/confirm/:token", enrollments.ConfirmByToken)
	public.Post("/enrollments/cancel/:token", enrollments.CancelByToken)

	return app
}
