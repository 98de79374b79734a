package handlers

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

type ReportHandler struct {
	svc services.ReportService
}

func NewReportHandler(svc services.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) SetupRoutes(app *fiber.App, g middleware.Guards) {
	admin := app.Group("/api/admin")

	admin.Get("/analytics", g.Admin, h.Analytics)
	admin.Get("/reports", g.Admin, h.Report)
}

func (h *ReportHandler) Analytics(ctx *fiber.Ctx) error {
	stats, err := h.svc.Analytics(ctx.UserContext(), queryUint(ctx, "cycle_id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, stats)
}

// Report returns every matching application; format=csv sends a file.
func (h *ReportHandler) Report(ctx *fiber.Ctx) error {
	rows, err := h.svc.Report(ctx.UserContext(), dto.ApplicationFilter{
		Status:  ctx.Query("status"),
		CycleID: queryUint(ctx, "cycle_id"),
		Search:  ctx.Query("search"),
	})
	if err != nil {
		return respondError(ctx, err)
	}
	if !strings.EqualFold(ctx.Query("format"), "csv") {
		return utils.ResponseSuccess(ctx, fiber.StatusOK, rows)
	}

	filename := fmt.Sprintf("bursary-report-%s.csv", time.Now().UTC().Format("20060102"))
	ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Status(fiber.StatusOK)
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := writeCSV(w, rows); err != nil {
			log.Errorf("stream report csv: %v", err)
		}
	})
	return nil
}

func writeCSV(out io.Writer, rows []dto.ReportRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(dto.ReportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		values := r.Values()
		for i := range values {
			values[i] = neutralizeFormula(values[i])
		}
		if err := w.Write(values); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// neutralizeFormula prefixes cells a spreadsheet would evaluate. Plain
// numbers such as "-5" are left alone.
func neutralizeFormula(cell string) string {
	if cell == "" || !strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return cell
	}
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return cell
	}
	return "'" + cell
}
