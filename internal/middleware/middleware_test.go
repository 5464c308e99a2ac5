package middleware

import (
	"net/http/httptest"
	"testing"

	"crm-reports/internal/common/models"
	"crm-reports/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewareSkipAuthBindsContext(t *testing.T) {
	app := fiber.New()
	app.Get("/", AuthMiddleware(true), func(c *fiber.Ctx) error {
		tenant, _ := c.UserContext().Value(models.TenantIDKey).(string)
		return c.SendString(CurrentUserID(c) + "|" + tenant)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-User-ID", "u-42")
	req.Header.Set("X-Tenant-ID", "t-7")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body := make([]byte, 16)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "u-42|t-7", string(body[:n]))
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/", AuthMiddleware(false), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsToken(t *testing.T) {
	utils.SetSecret("mw-secret")
	token, err := utils.GenerateToken("u1", "t1", nil, 60e9)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", AuthMiddleware(false), func(c *fiber.Ctx) error { return c.SendString(CurrentUserID(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimitMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", RateLimitMiddleware(0.001, 2), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimitDisabled(t *testing.T) {
	app := fiber.New()
	app.Get("/", RateLimitMiddleware(0, 0), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestCORSMiddlewareExposesDownloadHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(CORSMiddleware([]string{"http://admin.local"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://admin.local")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "http://admin.local", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
