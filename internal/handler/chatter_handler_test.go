package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-chatter-be/internal/pkg/logger"
)

func upgradeApp() *fiber.App {
	h := NewChatterHandler(nil, nil, logger.NewNoopLogger())
	app := fiber.New()
	app.Get("/ws/chatter", h.Upgrade, func(c *fiber.Ctx) error {
		userId, _ := c.Locals("user_id").(string)
		return c.SendString("user:" + userId)
	})
	return app
}

func handshakeRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return req
}

func signedToken(t *testing.T, secret, userId string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestUpgrade_AllowsAnonymousHandshake(t *testing.T) {
	app := upgradeApp()

	resp, err := app.Test(handshakeRequest("/ws/chatter"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "user:", string(body))
}

func TestUpgrade_RejectsInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := upgradeApp()

	resp, err := app.Test(handshakeRequest("/ws/chatter?token=not-a-jwt"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUpgrade_AcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := upgradeApp()

	token := signedToken(t, "test-secret", "4f2c8b1e-9f1a-4c2d-8e3b-5a6d7c8e9f0a")
	resp, err := app.Test(handshakeRequest("/ws/chatter?token=" + token))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "user:4f2c8b1e-9f1a-4c2d-8e3b-5a6d7c8e9f0a", string(body))
}

func TestUpgrade_RequiresWebsocketHandshake(t *testing.T) {
	app := upgradeApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws/chatter", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
