package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MarkerAnn/wine-backend/internal/pkg/serverutils"
	"github.com/MarkerAnn/wine-backend/internal/service"
)

type IStatsController interface {
	RegisterRoutes(r fiber.Router)
	Countries(ctx *fiber.Ctx) error
}

type statsController struct {
	statsService service.IStatsService
}

func NewStatsController(statsService service.IStatsService) IStatsController {
	return &statsController{
		statsService: statsService,
	}
}

func (c *statsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/stats/v1")
	h.Get("countries", c.Countries)
}

func (c *statsController) Countries(ctx *fiber.Ctx) error {
	minWines := ctx.QueryInt("min_wines", 0)

	res, err := c.statsService.CountryStats(ctx.Context(), minWines)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success country stats", res))
}
