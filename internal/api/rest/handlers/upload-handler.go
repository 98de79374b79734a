package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	"github.com/SundayYogurt/bursary_service/pkg/imageutil"
)

const (
	maxUploadSize   = 5 * 1024 * 1024 // 5MB
	passportWidth   = 600
	passportQuality = 85
	uploadTimeout   = 20 * time.Second
)

var documentExts = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type UploadResponse struct {
	Key string `json:"key"`
}

// UploadHandler stores supporting documents and returns their storage key.
type UploadHandler struct {
	up interfaces.Uploader
}

func NewUploadHandler(up interfaces.Uploader) *UploadHandler {
	return &UploadHandler{up: up}
}

func (h *UploadHandler) SetupRoutes(app *fiber.App, g middleware.Guards) {
	uploads := app.Group("/api/uploads")

	uploads.Post("/document", g.Authenticated, h.UploadDocument)
	uploads.Post("/passport", g.Authenticated, h.UploadPassport)
}

// readFile loads the "file" form field; the returned *fiber.Error is the
// response to send when the upload is unusable.
func readFile(ctx *fiber.Ctx) ([]byte, string, *fiber.Error) {
	file, err := ctx.FormFile("file")
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if file.Size > maxUploadSize {
		return nil, "", fiber.NewError(fiber.StatusUnprocessableEntity, "file too large (max 5MB)")
	}

	f, err := file.Open()
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusInternalServerError, "cannot open uploaded file")
	}
	defer f.Close()

	b, err := imageutil.ReadAllLimit(f, maxUploadSize)
	if errors.Is(err, imageutil.ErrTooLarge) {
		return nil, "", fiber.NewError(fiber.StatusUnprocessableEntity, "file too large (max 5MB)")
	}
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusInternalServerError, "cannot read uploaded file")
	}
	if len(b) == 0 {
		return nil, "", fiber.NewError(fiber.StatusUnprocessableEntity, "file is empty")
	}
	return b, strings.ToLower(filepath.Ext(file.Filename)), nil
}

func (h *UploadHandler) store(ctx *fiber.Ctx, b []byte, ext, resourceType string) error {
	if h.up == nil {
		return utils.ResponseError(ctx, fiber.StatusBadGateway, "uploads are not configured")
	}
	userID := middleware.UserID(ctx)
	folder := fmt.Sprintf("bursary/%d/tmp", userID)

	c, cancel := context.WithTimeout(ctx.UserContext(), uploadTimeout)
	defer cancel()

	res, err := h.up.UploadBytes(c, folder, uuid.NewString()+ext, resourceType, b)
	if err != nil {
		log.WithField("user_id", userID).Errorf("upload failed: %v", err)
		return utils.ResponseError(ctx, fiber.StatusBadGateway, "upload failed")
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, UploadResponse{Key: res.PublicID})
}

// POST /api/uploads/document
// form-data: file=<pdf or image>
func (h *UploadHandler) UploadDocument(ctx *fiber.Ctx) error {
	b, ext, fe := readFile(ctx)
	if fe != nil {
		return utils.ResponseError(ctx, fe.Code, fe.Message)
	}
	if !documentExts[ext] {
		return utils.ResponseError(ctx, fiber.StatusUnprocessableEntity, "only pdf/jpg/jpeg/png/webp allowed")
	}

	resourceType := "image"
	if ext == ".pdf" {
		if !bytes.HasPrefix(b, []byte("%PDF-")) {
			return utils.ResponseError(ctx, fiber.StatusUnprocessableEntity, "file is not a pdf")
		}
		resourceType = "raw"
	} else if imageutil.DetectFormat(b) == "" {
		return utils.ResponseError(ctx, fiber.StatusUnprocessableEntity, "file is not a supported image")
	}
	return h.store(ctx, b, ext, resourceType)
}

// POST /api/uploads/passport
// form-data: file=<image>; stored as an upright JPEG at most 600px wide.
func (h *UploadHandler) UploadPassport(ctx *fiber.Ctx) error {
	b, _, fe := readFile(ctx)
	if fe != nil {
		return utils.ResponseError(ctx, fe.Code, fe.Message)
	}

	jpg, err := imageutil.NormalizeToJPG(b, passportWidth, passportQuality)
	if errors.Is(err, imageutil.ErrUnsupportedFormat) {
		return utils.ResponseError(ctx, fiber.StatusUnprocessableEntity, "only jpg/jpeg/png/webp allowed")
	}
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnprocessableEntity, "image could not be processed")
	}
	return h.store(ctx, jpg, ".jpg", "image")
}
