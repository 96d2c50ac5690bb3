package middleware

import (
	"strings"
	"time"

	"campus-rms/internal/config"
	"campus-rms/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Setup configures all middlewares for the application
func Setup(app *fiber.App, cfg *config.Config) {
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDev()}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// swagger UI loads its own scripts, so the strict resource policy skips it
	app.Use(helmet.New(helmet.Config{
		Next:                      isDocs,
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		PermissionPolicy:          "geolocation=(), microphone=(), camera=()",
	}))

	app.Use(limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || isDocs(c)
		},
		Max:        cfg.RateLimitPerMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: tooManyRequests("Too many requests, please slow down"),
	}))

	format := "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n"
	if cfg.IsProd() {
		format = "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n"
	}
	app.Use(logger.New(logger.Config{
		Format:     format,
		TimeFormat: "2006-01-02 15:04:05",
	}))

	// credentials cannot be combined with a wildcard origin
	origins := cfg.GetAllowedOrigins()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: origins != "*",
	}))
}

func isDocs(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/swagger")
}

func tooManyRequests(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return response.Error(c, fiber.StatusTooManyRequests, message)
	}
}

// AuthRateLimiter limits login and register attempts per IP
func AuthRateLimiter(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "-auth"
		},
		LimitReached: tooManyRequests("Too many login attempts, wait a minute and try again"),
	})
}

// CustomErrorHandler renders errors that escape the handlers, such as
// unknown routes and recovered panics, in the standard envelope
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, message)
}
