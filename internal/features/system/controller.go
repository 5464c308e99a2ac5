package system

import (
	"context"
	"time"

	"crm-reports/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency whose reachability is part of the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyChecker reports whether report discovery has finished.
type ReadyChecker interface {
	Sealed() bool
}

type SystemController struct {
	db      Pinger
	reports ReadyChecker
}

func NewSystemController(db Pinger, reports ReadyChecker) *SystemController {
	return &SystemController{db: db, reports: reports}
}

// Health godoc
func (c *SystemController) Health(ctx *fiber.Ctx) error {
	pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()

	if err := c.db.Ping(pingCtx); err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"status":        "ok",
		"reports_ready": c.reports.Sealed(),
	})
}

// GetCurrentUser godoc
func (c *SystemController) GetCurrentUser(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}
	return ctx.JSON(fiber.Map{
		"user_id":   claims.UserID,
		"tenant_id": claims.TenantID,
		"roles":     claims.Roles,
	})
}
