package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

// AdminUserHandler lets a SuperAdmin manage committee accounts.
type AdminUserHandler struct {
	svc services.AdminService
}

func NewAdminUserHandler(svc services.AdminService) *AdminUserHandler {
	return &AdminUserHandler{svc: svc}
}

func (h *AdminUserHandler) SetupRoutes(app *fiber.App, g middleware.Guards) {
	users := app.Group("/api/admin/users")

	users.Get("/", g.SuperAdmin, h.List)
	users.Post("/", g.SuperAdmin, h.Create)
	users.Patch("/:id", g.SuperAdmin, h.Update)
	users.Delete("/:id", g.SuperAdmin, h.Delete)
}

func (h *AdminUserHandler) List(ctx *fiber.Ctx) error {
	users, err := h.svc.List(ctx.UserContext(), ctx.Query("status"))
	if err != nil {
		return respondError(ctx, err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, services.NewUserResponse(&users[i]))
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, out)
}

func (h *AdminUserHandler) Create(ctx *fiber.Ctx) error {
	var requestBody dto.CreateAdminRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}

	user, err := h.svc.Create(ctx.UserContext(), middleware.CurrentUser(ctx), requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, services.NewUserResponse(user))
}

func (h *AdminUserHandler) Update(ctx *fiber.Ctx) error {
	id, ok := paramID(ctx)
	if !ok {
		return badID(ctx)
	}
	var requestBody dto.UpdateAdminRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}

	user, err := h.svc.Update(ctx.UserContext(), middleware.CurrentUser(ctx), id, requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, services.NewUserResponse(user))
}

func (h *AdminUserHandler) Delete(ctx *fiber.Ctx) error {
	id, ok := paramID(ctx)
	if !ok {
		return badID(ctx)
	}
	if err := h.svc.Delete(ctx.UserContext(), middleware.CurrentUser(ctx), id); err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "user deleted")
}
