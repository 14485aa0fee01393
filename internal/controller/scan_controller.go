package controller

import (
	"subscout-be/internal/apperror"
	"subscout-be/internal/dto"
	"subscout-be/internal/pkg/serverutils"
	"subscout-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IScanController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	Fail(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type scanController struct {
	service service.ISessionService
}

func NewScanController(service service.ISessionService) IScanController {
	return &scanController{service: service}
}

func (c *scanController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/scans")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Start)
	h.Get(":id", c.Show)
	h.Post(":id/progress", c.Progress)
	h.Post(":id/complete", c.Complete)
	h.Post(":id/fail", c.Fail)
	h.Post(":id/cancel", c.Cancel)
}

func (c *scanController) Start(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.StartScanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Invalid("body", "malformed JSON")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Start(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Scan started", res))
}

func (c *scanController) Progress(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := paramId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.ScanProgressRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Invalid("body", "malformed JSON")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RecordProgress(ctx.Context(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Progress recorded", res))
}

func (c *scanController) Complete(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := paramId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Complete(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Scan completed", res))
}

func (c *scanController) Fail(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := paramId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.FailScanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Invalid("body", "malformed JSON")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Fail(ctx.Context(), userId, sessionId, req.Reason)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Scan marked failed", res))
}

func (c *scanController) Cancel(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := paramId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Cancel(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Scan cancelled", res))
}

func (c *scanController) Show(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := paramId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show scan", res))
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user id in token")
	}
	return userId, nil
}

func paramId(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Invalid(name, "must be a UUID")
	}
	return id, nil
}
