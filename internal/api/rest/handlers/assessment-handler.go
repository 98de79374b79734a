package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

type AssessmentHandler struct {
	svc services.AssessmentService
}

func NewAssessmentHandler(svc services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{svc: svc}
}

func (h *AssessmentHandler) SetupRoutes(app *fiber.App, g middleware.Guards) {
	assessments := app.Group("/api/assessments")

	assessments.Post("/", g.Admin, h.Upsert)
	assessments.Get("/", g.Admin, h.List)
}

// Upsert records the caller's scores, replacing any earlier scores they gave
// the same application.
func (h *AssessmentHandler) Upsert(ctx *fiber.Ctx) error {
	var requestBody dto.AssessmentRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}

	a, err := h.svc.Upsert(ctx.UserContext(), middleware.CurrentUser(ctx), requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, a)
}

func (h *AssessmentHandler) List(ctx *fiber.Ctx) error {
	filter := dto.AssessmentFilter{ApplicationID: queryUint(ctx, "application_id")}
	rows, err := h.svc.List(ctx.UserContext(), middleware.CurrentUser(ctx), filter)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, rows)
}
