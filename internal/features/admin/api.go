package admin

import (
	"crm-reports/internal/common/api"
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AdminApi struct {
	Controller *AdminController
	config     *config.Config
}

func NewAdminApi(config *config.Config, controller *AdminController) api.Route {
	return &AdminApi{
		config:     config,
		Controller: controller,
	}
}

// Setup registers admin-related routes
func (h *AdminApi) Setup(app *fiber.App) {
	group := app.Group("/api/admin", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/modules", h.Controller.ListModules)
	group.Get("/actions/:module", h.Controller.ListActions)
	group.Post("/actions/:module/:action",
		middleware.RateLimitMiddleware(h.config.ReportsRateLimitRPS, h.config.ReportsRateLimitBurst),
		h.Controller.RunAction,
	)
}
