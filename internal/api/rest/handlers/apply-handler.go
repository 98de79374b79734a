package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

// ApplyHandler serves the applicant side of the bursary form.
type ApplyHandler struct {
	svc services.ApplicationService
}

func NewApplyHandler(svc services.ApplicationService) *ApplyHandler {
	return &ApplyHandler{svc: svc}
}

func (h *ApplyHandler) SetupRoutes(app *fiber.App, g middleware.Guards) {
	apply := app.Group("/api/apply")

	apply.Post("/", g.Applicant, h.Submit)
	apply.Post("/draft", g.Applicant, h.SaveDraft)
	apply.Get("/draft", g.Applicant, h.GetDraft)
	apply.Get("/mine", g.Applicant, h.ListMine)
}

func (h *ApplyHandler) SaveDraft(ctx *fiber.Ctx) error {
	var payload dto.ApplicationPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return bodyError(ctx, err)
	}

	id, err := h.svc.SaveDraft(ctx.UserContext(), middleware.CurrentUser(ctx).ID, payload)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.DraftSavedResponse{DraftID: id})
}

func (h *ApplyHandler) GetDraft(ctx *fiber.Ctx) error {
	app, err := h.svc.GetDraft(ctx.UserContext(), middleware.CurrentUser(ctx).ID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, app)
}

func (h *ApplyHandler) ListMine(ctx *fiber.Ctx) error {
	apps, err := h.svc.ListMine(ctx.UserContext(), middleware.CurrentUser(ctx).ID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, apps)
}

func (h *ApplyHandler) Submit(ctx *fiber.Ctx) error {
	var payload dto.ApplicationPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return bodyError(ctx, err)
	}

	app, err := h.svc.Submit(ctx.UserContext(), middleware.CurrentUser(ctx).ID, payload)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.SubmittedResponse{
		ApplicationID: app.ID,
		Status:        string(app.Status),
	})
}
