package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/codeview-ai/codeview-api/internal/middleware"
)

const jwtTestSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp(capturedUserID *uint) *fiber.App {
	app := fiber.New()
	app.Use(middleware.JWTProtected(jwtTestSecret))
	app.Get("/", func(c *fiber.Ctx) error {
		if userID, ok := c.Locals("user_id").(uint); ok {
			*capturedUserID = userID
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func performAuth(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedMissingHeader(t *testing.T) {
	var userID uint
	app := newProtectedApp(&userID)

	resp := performAuth(t, app, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsWrongSecret(t *testing.T) {
	var userID uint
	app := newProtectedApp(&userID)
	token := signToken(t, "other-secret", jwt.MapClaims{"sub": 1})

	resp := performAuth(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedStampsUserIDFromSubject(t *testing.T) {
	var userID uint
	app := newProtectedApp(&userID)
	token := signToken(t, jwtTestSecret, jwt.MapClaims{
		"sub": 42,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	resp := performAuth(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, uint(42), userID)
}

func TestJWTProtectedStringSubject(t *testing.T) {
	var userID uint
	app := newProtectedApp(&userID)
	token := signToken(t, jwtTestSecret, jwt.MapClaims{"sub": "7"})

	resp := performAuth(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, uint(7), userID)
}
