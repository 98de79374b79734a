package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

// ApplicationHandler is the committee's view of submitted applications.
type ApplicationHandler struct {
	svc services.ApplicationService
}

func NewApplicationHandler(svc services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

func (h *ApplicationHandler) SetupRoutes(app *fiber.App, g middleware.Guards) {
	apps := app.Group("/api/admin/applications")

	apps.Get("/", g.Admin, h.List)
	apps.Get("/:id", g.Admin, h.Get)
	apps.Patch("/:id", g.Admin, h.SetStatus)
	apps.Post("/:id/disburse", g.Admin, h.Disburse)
}

func applicationFilter(ctx *fiber.Ctx) dto.ApplicationFilter {
	limit, offset := page(ctx)
	return dto.ApplicationFilter{
		Status:  ctx.Query("status"),
		CycleID: queryUint(ctx, "cycle_id"),
		Search:  ctx.Query("search"),
		Limit:   limit,
		Offset:  offset,
	}
}

func (h *ApplicationHandler) List(ctx *fiber.Ctx) error {
	list, err := h.svc.List(ctx.UserContext(), applicationFilter(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, list)
}

func (h *ApplicationHandler) Get(ctx *fiber.Ctx) error {
	id, ok := paramID(ctx)
	if !ok {
		return badID(ctx)
	}
	app, err := h.svc.Get(ctx.UserContext(), id)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, app)
}

func (h *ApplicationHandler) SetStatus(ctx *fiber.Ctx) error {
	id, ok := paramID(ctx)
	if !ok {
		return badID(ctx)
	}
	var requestBody dto.SetApplicationStatusRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}

	app, err := h.svc.SetStatus(ctx.UserContext(), middleware.CurrentUser(ctx), id, requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, app)
}

func (h *ApplicationHandler) Disburse(ctx *fiber.Ctx) error {
	id, ok := paramID(ctx)
	if !ok {
		return badID(ctx)
	}
	var requestBody dto.DisburseRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}

	app, err := h.svc.Disburse(ctx.UserContext(), middleware.CurrentUser(ctx), id, requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, app)
}
