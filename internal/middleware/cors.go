package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSMiddleware allows the admin frontends in origins to call the API and
// read the Content-Disposition of report downloads.
func CORSMiddleware(origins []string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,X-Requested-With,X-Tenant-ID",
		ExposeHeaders:    "Content-Disposition,Content-Length",
		AllowCredentials: len(origins) > 0,
	})
}
