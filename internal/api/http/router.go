package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/DiogoBrazil/medimage-api/internal/api/http/handlers"
	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Subscriptions  *handlers.SubscriptionsHandler
	HealthUnits    *handlers.HealthUnitsHandler
	Attendances    *handlers.AttendancesHandler
	Predictions    *handlers.PredictionsHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. The authorization middleware guards every
// route and short-circuits the public ones itself, so route order below only
// matters for fiber's path matching (static segments before :id captures).
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)

	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")
	api.Get("/status", cfg.Health.Status)
	api.Post("/ensure-root", cfg.Users.EnsureRoot)

	users := api.Group("/users")
	users.Post("/login", cfg.Users.Login)
	users.Post("/add", cfg.Users.Create)
	users.Get("/administrators", cfg.Users.ListAdministrators)
	users.Get("/professionals", cfg.Users.ListProfessionals)

	subscriptions := users.Group("/subscriptions")
	subscriptions.Post("", cfg.Subscriptions.Create)
	subscriptions.Get("", cfg.Subscriptions.List)
	subscriptions.Get("/:id", cfg.Subscriptions.Get)
	subscriptions.Put("/:id", cfg.Subscriptions.Update)
	subscriptions.Delete("/:id", cfg.Subscriptions.Delete)

	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	units := api.Group("/health-units")
	units.Post("/add", cfg.HealthUnits.Create)
	units.Get("", cfg.HealthUnits.List)
	units.Get("/:id", cfg.HealthUnits.Get)
	units.Put("/:id", cfg.HealthUnits.Update)
	units.Delete("/:id", cfg.HealthUnits.Delete)

	attendances := api.Group("/attendances")
	attendances.Post("/add", cfg.Attendances.Create)
	attendances.Get("/statistics", cfg.Attendances.Statistics)
	attendances.Get("", cfg.Attendances.List)
	attendances.Get("/:id", cfg.Attendances.Get)
	attendances.Put("/:id", cfg.Attendances.Update)
	attendances.Delete("/:id", cfg.Attendances.Delete)

	predictions := api.Group("/predictions")
	predictions.Get("/classes", cfg.Predictions.Classes)
	predictions.Post("/respiratory", cfg.Predictions.Respiratory)
	predictions.Post("/tuberculosis", cfg.Predictions.Tuberculosis)
	predictions.Post("/osteoporosis", cfg.Predictions.Osteoporosis)
	predictions.Post("/breast", cfg.Predictions.Breast)
}
