package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

type AuthHandler struct {
	svc          services.AuthService
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthHandler(svc services.AuthService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

func (h *AuthHandler) SetupRoutes(app *fiber.App, g middleware.Guards) {
	auth := app.Group("/api/auth")

	auth.Post("/register", g.RateLimit, h.Register)
	auth.Post("/admin/register", g.RateLimit, h.RegisterAdmin)
	auth.Post("/login", g.RateLimit, h.Login)
	auth.Post("/logout", h.Logout)
	auth.Get("/me", g.Authenticated, h.Me)
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}

	user, err := h.svc.RegisterApplicant(ctx.UserContext(), requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, services.NewUserResponse(user))
}

// RegisterAdmin signs up a committee member; the account stays Pending
// until a SuperAdmin approves it.
func (h *AuthHandler) RegisterAdmin(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}

	user, err := h.svc.RegisterAdmin(ctx.UserContext(), requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, services.NewUserResponse(user))
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email and password are required")
	}

	resp, err := h.svc.Login(ctx.UserContext(), requestBody)
	if err != nil {
		return respondError(ctx, err)
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    resp.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.ResponseSuccess(ctx, fiber.StatusOK, resp)
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	ctx.ClearCookie("access_token")
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "logged out")
}

func (h *AuthHandler) Me(ctx *fiber.Ctx) error {
	user, err := h.svc.Me(ctx.UserContext(), middleware.UserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, services.NewUserResponse(user))
}
