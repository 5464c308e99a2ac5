package file

import (
	"crm-reports/internal/common/api"
	"crm-reports/internal/config"
	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// FileApi serves locally stored report files.
type FileApi struct {
	config *config.Config
}

func NewFileApi(config *config.Config) api.Route {
	return &FileApi{config: config}
}

func (h *FileApi) Setup(app *fiber.App) {
	if h.config.StorageMode == StorageTypeS3 {
		return
	}
	app.Use(h.config.FSURL, middleware.AuthMiddleware(h.config.SkipAuth))
	app.Static(h.config.FSURL, h.config.FSPath)
}
