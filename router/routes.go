package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/krishkalaria12/linegrade/auth"
	handler "github.com/krishkalaria12/linegrade/handlers"
	"github.com/krishkalaria12/linegrade/metrics"
	"github.com/krishkalaria12/linegrade/middleware"
	"github.com/krishkalaria12/linegrade/response"
)

const bodyLimit = 32 << 20

type Options struct {
	Auth        *auth.Service
	CameraToken string
	// MediaRoot, when set, is served at /media for the local blob store.
	MediaRoot string
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// NewApp builds a fiber app with the API error handler installed.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "linegrade",
		ErrorHandler: response.ErrorHandler,
		BodyLimit:    bodyLimit,
	})
}

func SetupRoutes(app *fiber.App, h *handler.Handler, opts Options) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.Metrics())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	if opts.MediaRoot != "" {
		app.Static("/media", opts.MediaRoot)
	}

	api := app.Group("/api")
	if opts.AccessLog {
		api.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	api.Get("/health", h.Health)

	requireUser := middleware.AuthMiddleware(opts.Auth)

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.Login)
	authGroup.Post("/logout", h.Logout)

	// User
	user := api.Group("/user")
	user.Post("/", h.CreateUser)
	user.Get("/me", requireUser, h.GetCurrentUser)
	user.Delete("/me", requireUser, h.DeleteCurrentUser)

	// Production lines
	lines := api.Group("/production_line", requireUser)
	lines.Get("/", h.ListProductionLines)
	lines.Post("/", h.CreateProductionLine)
	lines.Get("/:id", h.GetProductionLine)
	lines.Put("/:id", h.UpdateProductionLine(false))
	lines.Patch("/:id", h.UpdateProductionLine(true))
	lines.Delete("/:id", h.DeleteProductionLine)

	// Cameras
	cameras := api.Group("/camera", requireUser)
	cameras.Get("/", h.ListCameras)
	cameras.Post("/", h.CreateCamera)
	cameras.Get("/:id", h.GetCamera)
	cameras.Put("/:id", h.UpdateCamera(false))
	cameras.Patch("/:id", h.UpdateCamera(true))
	cameras.Delete("/:id", h.DeleteCamera)

	// Items
	items := api.Group("/item", requireUser)
	items.Get("/", h.ListItems)
	items.Post("/", h.CreateItem)
	items.Get("/:id", h.GetItem)
	items.Put("/:id", h.UpdateItem(false))
	items.Patch("/:id", h.UpdateItem(true))
	items.Delete("/:id", h.DeleteItem)

	// Images: cameras submit with the shared token, users manage the rest.
	images := api.Group("/image")
	images.Post("/", middleware.CameraToken(opts.CameraToken), h.CreateImage)
	images.Get("/", requireUser, h.ListImages)
	images.Get("/:id", requireUser, h.GetImage)
	images.Get("/:id/file", requireUser, h.ImageURL)
	images.Put("/:id", requireUser, h.UpdateImage(false))
	images.Patch("/:id", requireUser, h.UpdateImage(true))
	images.Delete("/:id", requireUser, h.DeleteImage)
}
