package report

import (
	"crm-reports/internal/common/api"
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	ReportController *ReportController
	Config           *config.Config
}

func NewReportApi(reportController *ReportController, config *config.Config) api.Route {
	return &ReportApi{
		ReportController: reportController,
		Config:           config,
	}
}

func (h *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports", middleware.AuthMiddleware(h.Config.SkipAuth))

	group.Get("/definitions", h.ReportController.Definitions)

	group.Get("/saved", h.ReportController.ListSaved)
	group.Get("/saved/:id", h.ReportController.GetSaved)
	group.Get("/saved/:id/download", h.ReportController.Download)
	group.Delete("/saved/:id", h.ReportController.DeleteSaved)
}
