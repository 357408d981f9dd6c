package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/MarkerAnn/wine-backend/internal/dto"
	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"
	"github.com/MarkerAnn/wine-backend/internal/pkg/serverutils"
	"github.com/MarkerAnn/wine-backend/internal/service"
)

type IWineController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	SemanticSearch(ctx *fiber.Ctx) error
}

type wineController struct {
	wineService service.IWineService
}

func NewWineController(wineService service.IWineService) IWineController {
	return &wineController{
		wineService: wineService,
	}
}

func (c *wineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/wine/v1")
	// Literal routes before the :id wildcard.
	h.Get("search", c.Search)
	h.Get("semantic-search", c.SemanticSearch)
	h.Get("", c.List)
	h.Get(":id", c.Show)
}

func (c *wineController) List(ctx *fiber.Ctx) error {
	req := dto.ListWinesRequest{
		Country:   ctx.Query("country"),
		Variety:   ctx.Query("variety"),
		MinPrice:  ctx.Query("min_price"),
		MaxPrice:  ctx.Query("max_price"),
		MinPoints: ctx.Query("min_points"),
		MaxPoints: ctx.Query("max_points"),
		Page:      ctx.QueryInt("page", 0),
		Size:      ctx.QueryInt("size", 0),
	}

	res, err := c.wineService.List(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list wines", res))
}

func (c *wineController) Show(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return apperror.Invalid("wine id must be an integer")
	}

	res, err := c.wineService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show wine", res))
}

func (c *wineController) Search(ctx *fiber.Ctx) error {
	req := dto.SearchRequest{
		Query:     ctx.Query("q"),
		Country:   ctx.Query("country"),
		Variety:   ctx.Query("variety"),
		MinPrice:  ctx.Query("min_price"),
		MaxPrice:  ctx.Query("max_price"),
		MinPoints: ctx.Query("min_points"),
		MaxPoints: ctx.Query("max_points"),
		Page:      ctx.QueryInt("page", 0),
		Size:      ctx.QueryInt("size", 0),
	}

	res, err := c.wineService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search wines", res))
}

func (c *wineController) SemanticSearch(ctx *fiber.Ctx) error {
	req := dto.SemanticSearchRequest{
		Query: ctx.Query("q"),
		Page:  ctx.QueryInt("page", 0),
		Size:  ctx.QueryInt("size", 0),
	}

	res, err := c.wineService.SemanticSearch(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success semantic search wines", res))
}
