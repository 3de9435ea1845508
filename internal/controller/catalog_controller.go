package controller

import (
	"catalog-assistant-be/internal/pkg/serverutils"
	"catalog-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	GetFormations(ctx *fiber.Ctx) error
	GetSessions(ctx *fiber.Ctx) error
	Sync(ctx *fiber.Ctx) error
	Index(ctx *fiber.Ctx) error
	IndexStats(ctx *fiber.Ctx) error
}

type catalogController struct {
	catalogService service.ICatalogService
	indexerService service.IIndexerService
}

func NewCatalogController(catalogService service.ICatalogService, indexerService service.IIndexerService) ICatalogController {
	return &catalogController{
		catalogService: catalogService,
		indexerService: indexerService,
	}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog")
	h.Get("formations", c.GetFormations)
	h.Get("sessions", c.GetSessions)
	h.Post("sync", c.Sync)

	r.Post("/index", c.Index)
	r.Get("/index/stats", c.IndexStats)
}

func (c *catalogController) GetFormations(ctx *fiber.Ctx) error {
	formations, err := c.catalogService.GetFormations(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get formations", formations))
}

func (c *catalogController) GetSessions(ctx *fiber.Ctx) error {
	sessions, err := c.catalogService.GetSessions(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", sessions))
}

func (c *catalogController) Sync(ctx *fiber.Ctx) error {
	stats, err := c.catalogService.ForceSync(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success sync catalog", stats))
}

func (c *catalogController) Index(ctx *fiber.Ctx) error {
	stats, err := c.indexerService.IndexAllData(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success index catalog", stats))
}

func (c *catalogController) IndexStats(ctx *fiber.Ctx) error {
	stats, err := c.indexerService.Stats(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get index stats", stats))
}
