package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

// respondError maps a service error to its status code. Anything outside
// the taxonomy is logged and hidden behind a generic 500.
func respondError(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrUpstream):
		status = fiber.StatusBadGateway
	}
	if status == fiber.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": ctx.Method(),
			"path":   ctx.Path(),
		}).Errorf("request failed: %v", err)
		return utils.ResponseError(ctx, status, "internal server error")
	}
	return utils.ResponseError(ctx, status, err.Error())
}

// bodyError answers a BodyParser failure. A value the payload types reject
// is a validation failure; malformed JSON is a bad request.
func bodyError(ctx *fiber.Ctx, err error) error {
	var fe *dto.FieldError
	if errors.As(err, &fe) {
		return utils.ResponseError(ctx, fiber.StatusUnprocessableEntity, fe.Error())
	}
	return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
}

func paramID(ctx *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func badID(ctx *fiber.Ctx) error {
	return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid id")
}

func queryUint(ctx *fiber.Ctx, key string) uint {
	v, err := strconv.ParseUint(ctx.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func page(ctx *fiber.Ctx) (int, int) {
	return utils.ClampPage(ctx.QueryInt("limit", utils.DefaultLimit), ctx.QueryInt("offset", 0))
}
