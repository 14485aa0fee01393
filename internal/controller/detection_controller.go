package controller

import (
	"encoding/json"

	"subscout-be/internal/apperror"
	"subscout-be/internal/dto"
	"subscout-be/internal/pkg/serverutils"
	"subscout-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// DetectionController accepts manual subscription facts and hands them to
// the same pipeline the email classifier feeds.
type IDetectionController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
}

type detectionController struct {
	publisher service.IPublisherService
}

func NewDetectionController(publisher service.IPublisherService) IDetectionController {
	return &detectionController{publisher: publisher}
}

func (c *detectionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/detections")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Submit)
}

func (c *detectionController) Submit(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var fact dto.ClassifiedEmailFact
	if err := ctx.BodyParser(&fact); err != nil {
		return apperror.Invalid("body", "malformed JSON")
	}

	// The caller never speaks for another user.
	fact.UserId = userId

	if err := serverutils.ValidateRequest(fact); err != nil {
		return err
	}

	payload, err := json.Marshal(fact)
	if err != nil {
		return err
	}
	if err := c.publisher.Publish(ctx.Context(), payload); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Fact queued for detection", nil))
}
