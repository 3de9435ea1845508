package controller

import (
	"errors"

	"catalog-assistant-be/internal/dto"
	"catalog-assistant-be/internal/pkg/serverutils"
	"catalog-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService      service.IChatService
	retrievalService service.IRetrievalService
	searchLimit      int
}

func NewChatController(chatService service.IChatService, retrievalService service.IRetrievalService, searchLimit int) IChatController {
	if searchLimit <= 0 {
		searchLimit = 5
	}
	return &chatController{
		chatService:      chatService,
		retrievalService: retrievalService,
		searchLimit:      searchLimit,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
	r.Get("/search", c.Search)
}

// Chat always answers 200 with a degraded answer on provider failures; only a
// blank question is a client error.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing question"))
	}

	res, err := c.chatService.Chat(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrMissingQuestion) {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing question"))
		}
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) Search(ctx *fiber.Ctx) error {
	question := ctx.Query("q")
	if question == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "query parameter is required"))
	}
	limit := ctx.QueryInt("limit", c.searchLimit)

	res, err := c.retrievalService.Retrieve(ctx.Context(), question, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search catalog", res))
}
