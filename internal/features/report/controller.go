package report

import (
	"errors"
	"fmt"
	"strconv"

	"crm-reports/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	ReportService ReportService
}

func NewReportController(reportService ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// Definitions godoc
func (c *ReportController) Definitions(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"data": c.ReportService.Definitions()})
}

// ListSaved godoc
func (c *ReportController) ListSaved(ctx *fiber.Ctx) error {
	page, _ := strconv.ParseInt(ctx.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(ctx.Query("limit", "20"), 10, 64)

	filter := SavedReportFilter{
		TenantID: tenantID(ctx),
		Module:   ctx.Query("module"),
		Page:     page,
		Limit:    limit,
	}
	if ctx.QueryBool("mine") {
		filter.RunBy = middleware.CurrentUserID(ctx)
	}

	reports, total, err := c.ReportService.ListSaved(ctx.UserContext(), filter)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{
		"data":  reports,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetSaved godoc
func (c *ReportController) GetSaved(ctx *fiber.Ctx) error {
	saved, err := c.saved(ctx)
	if err != nil {
		return savedError(ctx, err)
	}
	return ctx.JSON(saved)
}

// Download godoc
func (c *ReportController) Download(ctx *fiber.Ctx) error {
	if _, err := c.saved(ctx); err != nil {
		return savedError(ctx, err)
	}
	saved, data, err := c.ReportService.Download(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return savedError(ctx, err)
	}

	ctx.Set("Content-Type", saved.ContentType)
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", saved.FileName))
	return ctx.Send(data)
}

// DeleteSaved godoc
func (c *ReportController) DeleteSaved(ctx *fiber.Ctx) error {
	if _, err := c.saved(ctx); err != nil {
		return savedError(ctx, err)
	}
	if err := c.ReportService.DeleteSaved(ctx.UserContext(), ctx.Params("id")); err != nil {
		return savedError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

// saved loads the report and hides other tenants' reports.
func (c *ReportController) saved(ctx *fiber.Ctx) (*SavedReport, error) {
	saved, err := c.ReportService.GetSaved(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return nil, err
	}
	if saved.TenantID != tenantID(ctx) {
		return nil, ErrSavedReportNotFound
	}
	return saved, nil
}

func savedError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, ErrSavedReportNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Saved report not found"})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func tenantID(ctx *fiber.Ctx) string {
	return contextTenant(ctx.UserContext())
}
