package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/codeview-ai/codeview-api/internal/config"
	"github.com/codeview-ai/codeview-api/internal/handler"
	"github.com/codeview-ai/codeview-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	InterviewHandler *handler.InterviewHandler
	CallHandler      *handler.CallHandler
	CodingHandler    *handler.CodingHandler
	ReportHandler    *handler.ReportHandler
	FeedHandler      *handler.FeedHandler
	ResumeHandler    *handler.ResumeHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Admin-only operations require a valid token; candidate-facing routes
	// are open, keyed by the interview slug handed to the candidate.
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.InterviewHandler != nil {
		interviews := api.Group("/interviews", jwtMiddleware)
		deps.InterviewHandler.Register(interviews)
	}

	if deps.ReportHandler != nil {
		reports := api.Group("/interviews", jwtMiddleware)
		deps.ReportHandler.Register(reports)
	}

	if deps.FeedHandler != nil {
		feed := api.Group("/interviews")
		deps.FeedHandler.Register(feed)
	}

	if deps.ResumeHandler != nil {
		resumes := api.Group("/interviews")
		deps.ResumeHandler.Register(resumes)
	}

	if deps.CallHandler != nil {
		calls := api.Group("/calls")
		deps.CallHandler.Register(calls)
	}

	if deps.CodingHandler != nil {
		coding := api.Group("/coding",
			middleware.RateLimit("coding", cfg.CodingRateLimit, time.Minute))
		deps.CodingHandler.Register(coding)
	}
}
