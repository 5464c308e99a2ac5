package admin

import (
	"errors"

	"crm-reports/internal/common/models"
	"crm-reports/internal/features/record"
	"crm-reports/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminController struct {
	site     *Site
	selector record.Selector
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAdminController(site *Site, selector record.Selector, logger *zap.Logger) *AdminController {
	return &AdminController{
		site:     site,
		selector: selector,
		validate: validator.New(),
		logger:   logger,
	}
}

type actionView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RunActionRequest selects records either by id or by filter.
type RunActionRequest struct {
	IDs    []string       `json:"ids" validate:"omitempty,dive,required"`
	Filter map[string]any `json:"filter"`
}

// ListModules godoc
func (c *AdminController) ListModules(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"data": c.site.Modules()})
}

// ListActions godoc
func (c *AdminController) ListActions(ctx *fiber.Ctx) error {
	actions, err := c.site.ActionsFor(ctx.Params("module"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	views := make([]actionView, len(actions))
	for i, a := range actions {
		views[i] = actionView{Name: a.Name(), Description: a.Description()}
	}
	return ctx.JSON(fiber.Map{"data": views})
}

// RunAction godoc
func (c *AdminController) RunAction(ctx *fiber.Ctx) error {
	moduleName := ctx.Params("module")
	action, err := c.site.Action(moduleName, ctx.Params("action"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	var body RunActionRequest
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := c.validate.Struct(body); err != nil || (len(body.IDs) == 0 && len(body.Filter) == 0) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Items must be selected in order to perform actions on them.",
		})
	}

	tenantID, _ := ctx.UserContext().Value(models.TenantIDKey).(string)
	selection, err := c.selector.Select(ctx.UserContext(), record.Query{
		Module:   moduleName,
		TenantID: tenantID,
		IDs:      body.IDs,
		Filter:   body.Filter,
	})
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := action.Execute(ctx.UserContext(), ActionRequest{
		UserID:    middleware.CurrentUserID(ctx),
		TenantID:  tenantID,
		Module:    moduleName,
		Selection: selection,
	})
	if err != nil {
		c.logger.Error("Admin action failed",
			zap.String("module", moduleName),
			zap.String("action", action.Name()),
			zap.Error(err))
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(result)
}
