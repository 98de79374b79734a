package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

type CycleHandler struct {
	svc services.CycleService
}

func NewCycleHandler(svc services.CycleService) *CycleHandler {
	return &CycleHandler{svc: svc}
}

func (h *CycleHandler) SetupRoutes(app *fiber.App, g middleware.Guards) {
	cycles := app.Group("/api/cycles")

	cycles.Get("/current", h.Current)
	cycles.Get("/", g.Admin, h.List)
	cycles.Post("/", g.SuperAdmin, h.Create)
	cycles.Patch("/:id", g.SuperAdmin, h.Update)
}

// Current is public so the form can show whether applications are open.
func (h *CycleHandler) Current(ctx *fiber.Ctx) error {
	cycle, err := h.svc.Current(ctx.UserContext())
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"open":  cycle != nil,
		"cycle": cycle,
	})
}

func (h *CycleHandler) List(ctx *fiber.Ctx) error {
	cycles, err := h.svc.List(ctx.UserContext())
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, cycles)
}

func (h *CycleHandler) Create(ctx *fiber.Ctx) error {
	var requestBody dto.CreateCycleRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}
	cycle, err := h.svc.Create(ctx.UserContext(), requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, cycle)
}

func (h *CycleHandler) Update(ctx *fiber.Ctx) error {
	id, ok := paramID(ctx)
	if !ok {
		return badID(ctx)
	}
	var requestBody dto.UpdateCycleRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}
	cycle, err := h.svc.Update(ctx.UserContext(), id, requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, cycle)
}
