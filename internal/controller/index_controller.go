package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MarkerAnn/wine-backend/internal/dto"
	"github.com/MarkerAnn/wine-backend/internal/pkg/serverutils"
	"github.com/MarkerAnn/wine-backend/internal/service"
)

type IIndexController interface {
	RegisterRoutes(r fiber.Router)
	Rebuild(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type indexController struct {
	ingestService service.IIngestService
}

func NewIndexController(ingestService service.IIngestService) IIndexController {
	return &indexController{
		ingestService: ingestService,
	}
}

func (c *indexController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/index/v1")
	h.Post("rebuild", c.Rebuild)
	h.Get("status", c.Status)
}

func (c *indexController) Rebuild(ctx *fiber.Ctx) error {
	// The body is optional; an empty POST rebuilds with defaults.
	var req dto.RebuildIndexRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.TriggerRebuild(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success trigger index rebuild", res))
}

func (c *indexController) Status(ctx *fiber.Ctx) error {
	res, err := c.ingestService.Status(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show index status", res))
}
