package controller

import (
	"subscout-be/internal/apperror"
	"subscout-be/internal/dto"
	"subscout-be/internal/entity"
	"subscout-be/internal/pkg/serverutils"
	"subscout-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUnsubscribeController interface {
	RegisterRoutes(r fiber.Router)
	Initiate(ctx *fiber.Ctx) error
	Execute(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type unsubscribeController struct {
	service service.IUnsubscribeService
}

func NewUnsubscribeController(service service.IUnsubscribeService) IUnsubscribeController {
	return &unsubscribeController{service: service}
}

func (c *unsubscribeController) RegisterRoutes(r fiber.Router) {
	subs := r.Group("/subscriptions")
	subs.Use(serverutils.JwtMiddleware)
	subs.Post(":id/unsubscribe", c.Initiate)

	h := r.Group("/unsubscribe")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":id/execute", c.Execute)
	h.Get(":id", c.Show)
}

func (c *unsubscribeController) Initiate(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	subscriptionId, err := paramId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.InitiateUnsubscribeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Invalid("body", "malformed JSON")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Initiate(ctx.Context(), userId, subscriptionId, entity.UnsubscribeStrategy(req.Strategy))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Cancellation initiated", res))
}

func (c *unsubscribeController) Execute(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	actionId, err := paramId(ctx, "id")
	if err != nil {
		return err
	}

	// Ownership check before executing on the caller's behalf.
	if _, err := c.service.Show(ctx.Context(), userId, actionId); err != nil {
		return err
	}

	res, err := c.service.Execute(ctx.Context(), actionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Cancellation executed", res))
}

func (c *unsubscribeController) Show(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	actionId, err := paramId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), userId, actionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show unsubscribe action", res))
}
