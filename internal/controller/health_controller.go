package controller

import (
	"context"
	"time"

	"qbwc-sync-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	ping func(ctx context.Context) error
}

// NewHealthController reports unhealthy when ping fails.
func NewHealthController(ping func(ctx context.Context) error) IHealthController {
	return &healthController{ping: ping}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()

	if c.ping != nil {
		if err := c.ping(pingCtx); err != nil {
			return ctx.Status(fiber.StatusServiceUnavailable).
				JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, "database unavailable"))
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{"status": "up"}))
}
