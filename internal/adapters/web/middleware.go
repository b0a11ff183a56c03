package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"tiktok-stats/internal/classifier"
	"tiktok-stats/pkg/log"
)

// RequestIDConfig returns the configuration for Fiber's requestid middleware.
// Uses X-Request-ID header, generates UUID if not present.
func RequestIDConfig() requestid.Config {
	return requestid.Config{
		Header:     "X-Request-ID",
		ContextKey: "requestid",
	}
}

// RequestIDToContextMiddleware bridges Fiber's requestid to pkg/log context.
// Must be used AFTER requestid.New() middleware.
func RequestIDToContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Locals("requestid")
		if reqID != nil {
			if id, ok := reqID.(string); ok {
				ctx := log.WithRequestID(c.UserContext(), id)
				c.SetUserContext(ctx)
			}
		}
		return c.Next()
	}
}

// RequestLoggerMiddleware logs HTTP requests in structured JSON format.
// Replaces Fiber's default logger middleware.
// Must be used AFTER RequestIDToContextMiddleware.
func RequestLoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// Let the app's error handler set the final status before logging.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()

		ctx := c.UserContext()
		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"ip", c.IP(),
			"user_agent", c.Get("User-Agent"),
		}

		if err != nil {
			fields = append(fields, "error", err.Error())
		}

		switch {
		case status >= 500:
			log.GlobalErrorCtx(ctx, "request completed", fields...)
		case status >= 400:
			log.GlobalWarnCtx(ctx, "request completed", fields...)
		default:
			log.GlobalInfoCtx(ctx, "request completed", fields...)
		}

		return nil
	}
}

// LocaleMiddleware picks the message locale from Accept-Language and stores
// it in the user context for the classifier.
// Must be used AFTER RequestIDToContextMiddleware.
func LocaleMiddleware(fallback classifier.Locale) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locale := classifier.LocaleFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage), fallback)
		c.SetUserContext(classifier.WithLocale(c.UserContext(), locale))
		return c.Next()
	}
}

// CORSMiddleware applies CORSConfig. Preflight requests get 200, not the 204
// Fiber's cors handler sends.
func CORSMiddleware() fiber.Handler {
	handler := cors.New(CORSConfig())
	return func(c *fiber.Ctx) error {
		if err := handler(c); err != nil {
			return err
		}
		if c.Method() == fiber.MethodOptions && c.Response().StatusCode() == fiber.StatusNoContent {
			c.Status(fiber.StatusOK)
		}
		return nil
	}
}

// CORSConfig allows browser clients on any origin to call the JSON API.
func CORSConfig() cors.Config {
	return cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST, OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
	}
}
