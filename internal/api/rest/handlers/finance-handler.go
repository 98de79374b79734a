package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

// FinanceHandler covers the ledger, budgets and donations.
type FinanceHandler struct {
	svc services.FinanceService
}

func NewFinanceHandler(svc services.FinanceService) *FinanceHandler {
	return &FinanceHandler{svc: svc}
}

func (h *FinanceHandler) SetupRoutes(app *fiber.App, g middleware.Guards) {
	// public donation flow
	donations := app.Group("/api/donations")
	donations.Post("/", g.RateLimit, h.CreateDonation)
	donations.Post("/verify", g.RateLimit, h.VerifyDonation)

	admin := app.Group("/api/admin")
	admin.Get("/finance", g.Admin, h.Summary)
	admin.Get("/finance/transactions", g.Admin, h.ListTransactions)
	admin.Post("/finance/transactions", g.Admin, h.RecordTransaction)
	admin.Get("/budgets", g.Admin, h.ListBudgets)
	admin.Post("/budgets", g.Admin, h.CreateBudget)
	admin.Post("/budgets/:id/expenses", g.Admin, h.AddBudgetExpense)
	admin.Get("/donations", g.Admin, h.ListDonations)
}

func (h *FinanceHandler) Summary(ctx *fiber.Ctx) error {
	summary, err := h.svc.Summary(ctx.UserContext())
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, summary)
}

func (h *FinanceHandler) ListTransactions(ctx *fiber.Ctx) error {
	limit, offset := page(ctx)
	items, total, err := h.svc.ListTransactions(ctx.UserContext(), dto.TransactionFilter{
		Type:   ctx.Query("type"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"items": items, "total": total})
}

func (h *FinanceHandler) RecordTransaction(ctx *fiber.Ctx) error {
	var requestBody dto.RecordTransactionRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}
	txn, err := h.svc.RecordTransaction(ctx.UserContext(), middleware.CurrentUser(ctx), requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, txn)
}

func (h *FinanceHandler) ListBudgets(ctx *fiber.Ctx) error {
	budgets, err := h.svc.ListBudgets(ctx.UserContext())
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, budgets)
}

func (h *FinanceHandler) CreateBudget(ctx *fiber.Ctx) error {
	var requestBody dto.CreateBudgetRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}
	budget, err := h.svc.CreateBudget(ctx.UserContext(), requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, budget)
}

func (h *FinanceHandler) AddBudgetExpense(ctx *fiber.Ctx) error {
	id, ok := paramID(ctx)
	if !ok {
		return badID(ctx)
	}
	var requestBody dto.BudgetExpenseRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}
	budget, err := h.svc.AddBudgetExpense(ctx.UserContext(), middleware.CurrentUser(ctx), id, requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, budget)
}

func (h *FinanceHandler) ListDonations(ctx *fiber.Ctx) error {
	donations, err := h.svc.ListDonations(ctx.UserContext(), ctx.Query("status"))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, donations)
}

func (h *FinanceHandler) CreateDonation(ctx *fiber.Ctx) error {
	var requestBody dto.DonationRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}
	donation, err := h.svc.CreateDonation(ctx.UserContext(), requestBody)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, donation)
}

func (h *FinanceHandler) VerifyDonation(ctx *fiber.Ctx) error {
	var requestBody dto.VerifyDonationRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return bodyError(ctx, err)
	}
	donation, err := h.svc.VerifyDonation(ctx.UserContext(), requestBody.Reference)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, donation)
}
