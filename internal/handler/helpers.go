package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/codeview-ai/codeview-api/internal/middleware"
)

// requestContext builds the context passed to services, carrying the request
// correlation id for log stitching.
func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

// authenticatedUserID returns the user id stamped by the JWT middleware, or
// zero when the route is unauthenticated.
func authenticatedUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("user_id").(uint)
	return userID
}

func slugParam(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Params("slug"))
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
