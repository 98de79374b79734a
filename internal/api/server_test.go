package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SundayYogurt/bursary_service/config"
	"github.com/SundayYogurt/bursary_service/infra/database"
	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/helper"
	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	"github.com/SundayYogurt/bursary_service/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type fakeUploader struct {
	folder, filename, resourceType string
}

func (f *fakeUploader) UploadBytes(_ context.Context, folder, filename, resourceType string, _ []byte) (interfaces.UploadResult, error) {
	f.folder, f.filename, f.resourceType = folder, filename, resourceType
	return interfaces.UploadResult{PublicID: folder + "/" + filename}, nil
}

type testServer struct {
	app   *fiber.App
	repos *repository.Repositories
	up    *fakeUploader
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, database.SeedCycle(context.Background(), db, time.Now().UTC()))

	repos := repository.New(db)
	up := &fakeUploader{}
	app := NewApp(Deps{
		Config: config.Config{
			AccessSecret:   "test-secret",
			TokenTTL:       time.Hour,
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
		Repos:    repos,
		Uploader: up,
	})
	return &testServer{app: app, repos: repos, up: up}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, env.Error)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.Token
}

func (s *testServer) superAdmin(t *testing.T) string {
	t.Helper()
	hash, err := helper.HashPassword("boss-password")
	require.NoError(t, err)
	require.NoError(t, s.repos.Users.Create(context.Background(), &domain.User{
		Email: "boss@example.com", PasswordHash: hash, DisplayName: "Boss",
		Role: domain.RoleSuperAdmin, Status: domain.UserStatusApproved,
	}))
	return s.login(t, "boss@example.com", "boss-password")
}

func (s *testServer) applicant(t *testing.T, email string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "applicant-pw", "display_name": "Jane",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	return s.login(t, email, "applicant-pw")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "bursary_http_requests_total")
}

func TestApplicationLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	applicantToken := s.applicant(t, "jane@example.com")
	bossToken := s.superAdmin(t)

	status, env := s.do(t, http.MethodPost, "/api/apply/draft", applicantToken, map[string]any{
		"surname": "Doe", "age": "12", "churchMember": "Yes", "fatherAlive": "No",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	var draft struct {
		DraftID uint `json:"draft_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	require.NotZero(t, draft.DraftID)

	status, env = s.do(t, http.MethodPost, "/api/apply/draft", applicantToken, map[string]any{"age": "twelve"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.False(t, env.Success)

	status, _ = s.do(t, http.MethodPost, "/api/apply", applicantToken, map[string]any{"draftId": draft.DraftID})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env = s.do(t, http.MethodPost, "/api/apply", applicantToken, map[string]any{
		"draftId": draft.DraftID, "firstName": "Jane", "dob": "2010-05-01", "schoolName": "St. Mary's",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var submitted struct {
		ApplicationID uint   `json:"application_id"`
		Status        string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	assert.Equal(t, draft.DraftID, submitted.ApplicationID)
	assert.Equal(t, "Pending", submitted.Status)

	status, _ = s.do(t, http.MethodGet, "/api/admin/applications", applicantToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodGet, "/api/apply/mine", bossToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodGet, "/api/admin/applications?status=pending", bossToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.EqualValues(t, 1, list.Total)

	path := "/api/admin/applications/" + itoa(submitted.ApplicationID)
	status, env = s.do(t, http.MethodPatch, path, bossToken, map[string]any{"status": "Disbursed"})
	assert.Equal(t, http.StatusConflict, status, env.Error)

	status, env = s.do(t, http.MethodPatch, path, bossToken, map[string]any{"status": "Approved", "approved_amount": "50000"})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = s.do(t, http.MethodPost, "/api/assessments", bossToken, map[string]any{
		"applicationId": submitted.ApplicationID, "financialScore": 40, "academicScore": 30, "churchScore": 20,
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = s.do(t, http.MethodPost, path+"/disburse", bossToken, map[string]any{"payment_reference": "TRF-001"})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = s.do(t, http.MethodGet, "/api/admin/finance", bossToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), `"total_disbursed":"50000.00"`)

	resp, err := s.app.Test(authed(httptest.NewRequest(http.MethodGet, "/api/admin/reports?format=csv", nil), bossToken), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	body, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "application_id,surname"))
	assert.Contains(t, lines[1], "TRF-001")
}

func TestCommitteeRegistrationNeedsApproval(t *testing.T) {
	s := newTestServer(t)
	bossToken := s.superAdmin(t)

	status, env := s.do(t, http.MethodPost, "/api/auth/admin/register", "", map[string]string{
		"email": "member@example.com", "password": "member-pw", "display_name": "Member",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var member struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &member))

	status, _ = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "member@example.com", "password": "member-pw"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodPatch, "/api/admin/users/"+itoa(member.ID), bossToken, map[string]string{"status": "Approved"})
	require.Equal(t, http.StatusOK, status, env.Error)

	memberToken := s.login(t, "member@example.com", "member-pw")
	status, _ = s.do(t, http.MethodGet, "/api/admin/users", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodGet, "/api/cycles", memberToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// revoking approval takes effect on the next request
	status, _ = s.do(t, http.MethodPatch, "/api/admin/users/"+itoa(member.ID), bossToken, map[string]string{"status": "Rejected"})
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/cycles", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/api/cycles/current", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"open":true`)

	status, env = s.do(t, http.MethodPost, "/api/donations", "", map[string]any{"amount": "2500"})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var donation struct {
		Reference string `json:"reference"`
		DonorName string `json:"donor_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &donation))
	assert.Equal(t, "Anonymous", donation.DonorName)

	status, _ = s.do(t, http.MethodPost, "/api/donations/verify", "", map[string]string{"reference": donation.Reference})
	assert.Equal(t, http.StatusBadGateway, status)

	status, _ = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestDocumentUpload(t *testing.T) {
	s := newTestServer(t)
	token := s.applicant(t, "jane@example.com")

	status, env := s.upload(t, token, "/api/uploads/document", "letter.pdf", []byte("%PDF-1.4 test"))
	require.Equal(t, http.StatusCreated, status, env.Error)
	assert.Equal(t, "raw", s.up.resourceType)
	assert.True(t, strings.HasPrefix(s.up.folder, "bursary/"))
	assert.True(t, strings.HasSuffix(s.up.folder, "/tmp"))
	assert.True(t, strings.HasSuffix(s.up.filename, ".pdf"))

	status, _ = s.upload(t, token, "/api/uploads/document", "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.upload(t, token, "/api/uploads/document", "fake.pdf", []byte("not a pdf"))
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.upload(t, "", "/api/uploads/document", "letter.pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func (s *testServer) upload(t *testing.T, token, path, filename string, content []byte) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		authed(req, token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
