package metrics

import (
	"crm-reports/internal/common/api"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type MetricsApi struct {
	metrics *Metrics
}

func NewMetricsApi(metrics *Metrics) api.Route {
	return &MetricsApi{metrics: metrics}
}

func (h *MetricsApi) Setup(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(h.metrics.Handler()))
}
