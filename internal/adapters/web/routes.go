package web

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"tiktok-stats/internal/classifier"
	"tiktok-stats/internal/usecases"
	"tiktok-stats/pkg/log"
)

// AppConfig holds what NewApp needs besides the handlers.
type AppConfig struct {
	Name          string
	DefaultLocale classifier.Locale
	Classifier    usecases.ErrorClassifier
	Metrics       http.Handler
}

// NewApp builds the Fiber app with the middleware chain and routes.
func NewApp(cfg AppConfig, handlers *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(cfg.Classifier),
	})

	app.Use(recover.New())
	app.Use(requestid.New(RequestIDConfig()))
	app.Use(RequestIDToContextMiddleware())
	app.Use(RequestLoggerMiddleware())
	app.Use(LocaleMiddleware(cfg.DefaultLocale))

	SetupRoutes(app, handlers, cfg.Metrics)
	return app
}

// SetupRoutes configures the application routes.
func SetupRoutes(app *fiber.App, handlers *Handlers, metrics http.Handler) {
	app.Get("/", handlers.Home)
	app.Get("/healthz", handlers.Health)
	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}

	// CORS applies to every /api route, preflight included.
	api := app.Group("/api", CORSMiddleware())
	api.Post("/handler", handlers.Query)
	api.Post("/history/save", handlers.SaveHistory)
	api.Post("/history/get", handlers.ListHistory)
}

// ErrorHandler answers unhandled errors with the JSON error envelope.
// Fiber errors keep their status; everything else is a 500.
func ErrorHandler(errorClassifier usecases.ErrorClassifier) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		if status >= fiber.StatusInternalServerError {
			log.GlobalErrorCtx(c.UserContext(), "unhandled request error", "error", err)
		}

		classified := errorClassifier.Classify(c.UserContext(), err)
		return c.Status(status).JSON(apiResponse{Error: &classified})
	}
}
