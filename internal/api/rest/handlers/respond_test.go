package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

func TestRespondErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
		msg  string
	}{
		{&services.Error{Kind: services.ErrUnauthorized, Msg: "invalid email or password"}, http.StatusUnauthorized, "invalid email or password"},
		{&services.Error{Kind: services.ErrForbidden, Msg: "nope"}, http.StatusForbidden, "nope"},
		{&services.Error{Kind: services.ErrValidation, Msg: "missing required fields"}, http.StatusUnprocessableEntity, "missing required fields"},
		{&services.Error{Kind: services.ErrNotFound, Msg: "application not found"}, http.StatusNotFound, "application not found"},
		{&services.Error{Kind: services.ErrConflict, Msg: "applications are closed"}, http.StatusConflict, "applications are closed"},
		{&services.Error{Kind: services.ErrUpstream, Msg: "payment could not be verified"}, http.StatusBadGateway, "payment could not be verified"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		app := fiber.New()
		err := tc.err
		app.Get("/", func(ctx *fiber.Ctx) error { return respondError(ctx, err) })

		resp, e := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, e)
		assert.Equal(t, tc.want, resp.StatusCode)

		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, tc.msg, body.Error)
	}
}

func TestBodyError(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(ctx *fiber.Ctx) error {
		var p dto.ApplicationPayload
		if err := ctx.BodyParser(&p); err != nil {
			return bodyError(ctx, err)
		}
		return ctx.SendStatus(http.StatusNoContent)
	})

	post := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, post(`{"age":"12","churchMember":"Yes"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, post(`{"churchMember":"Maybe"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, post(`{"classSize":"many"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"surname":`))
}

func TestWriteCSV(t *testing.T) {
	var b strings.Builder
	require.NoError(t, writeCSV(&b, []dto.ReportRow{{ApplicationID: 7, Surname: "O'Neil, Jr", Status: "Approved"}}))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(dto.ReportHeader, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `7,"O'Neil, Jr",`))
}

func TestWriteCSVNeutralizesFormulas(t *testing.T) {
	var b strings.Builder
	require.NoError(t, writeCSV(&b, []dto.ReportRow{{ApplicationID: 8, Surname: "=HYPERLINK(\"http://x\")", FirstName: "@SUM(A1)", Status: "Pending"}}))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `8,"'=HYPERLINK(""http://x"")",'@SUM(A1),`), lines[1])
}

func TestNeutralizeFormula(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"Doe":       "Doe",
		"-5":        "-5",
		"+2348012":  "+2348012",
		"-1+cmd":    "'-1+cmd",
		"+A1":       "'+A1",
		"=1+1":      "'=1+1",
		"@me":       "'@me",
		"\tlead":   "'\tlead",
		"150000.00": "150000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, neutralizeFormula(in), in)
	}
}
