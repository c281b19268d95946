// Package routes wires the Fiber application and its resource handlers.
package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/auth"
	"storefront/config"
	"storefront/events"
	"storefront/media"
	"storefront/middleware"
	"storefront/repository"
)

// Deps is everything the HTTP layer needs. All fields are required.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	Users      repository.UserRepository
	Categories repository.CategoryRepository
	Products   repository.ProductRepository
	Tokens     auth.TokenService
	Hasher     auth.PasswordHasher
	Media      *media.Store
	Hub        *events.Hub
	Registry   *prometheus.Registry
}

// New builds the application with the shared middleware stack and every
// route mounted.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: errorHandler(deps.Log),
		BodyLimit:    20 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if deps.Config.HTTP.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: deps.Config.HTTP.CORSOrigins,
		AllowHeaders: strings.Join([]string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization}, ","),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	metrics := middleware.NewMetrics(deps.Registry)
	app.Use(metrics.Handler())

	app.Static("/uploads", deps.Media.Dir())

	SetupRoutes(app, deps)
	return app
}

func SetupRoutes(app *fiber.App, deps Deps) {
	users := &UserHandler{users: deps.Users, hasher: deps.Hasher, tokens: deps.Tokens}
	categories := &CategoryHandler{categories: deps.Categories, events: deps.Hub}
	products := &ProductHandler{products: deps.Products, media: deps.Media, events: deps.Hub}
	health := &HealthHandler{db: deps.DB}

	app.Get("/health", health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry})))

	requireToken := middleware.RequireToken(deps.Tokens)
	requireAdmin := middleware.RequireAdmin()

	v1 := app.Group("/v1")

	// Mount WebSocket endpoint
	v1.Get("/ws", adaptor.HTTPHandler(deps.Hub))

	user := v1.Group("/user")
	user.Post("/token", users.Token)
	user.Post("/", users.Create)
	user.Get("/:id", users.Get)
	user.Put("/:id", requireToken, users.Update)
	user.Delete("/:id", requireToken, users.Delete)

	category := v1.Group("/category")
	category.Get("/search", categories.Search)
	category.Get("/:id", categories.Get)
	category.Post("/", requireToken, requireAdmin, categories.Create)
	category.Put("/:id", requireToken, requireAdmin, categories.Update)
	category.Delete("/:id", requireToken, requireAdmin, categories.Delete)

	product := v1.Group("/product")
	product.Get("/search", products.Search)
	product.Get("/:id", products.Get)
	product.Post("/", requireToken, requireAdmin, products.Create)
	product.Put("/:id", requireToken, requireAdmin, products.Update)
	product.Delete("/:id", requireToken, requireAdmin, products.Delete)
}
