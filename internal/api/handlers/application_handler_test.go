package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/talentrail/talentrail/internal/models"
	"github.com/talentrail/talentrail/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubApplicationService lets each test pin down just the method it exercises.
type stubApplicationService struct {
	apply        func(ctx context.Context, userID, jobPostID, notes string) (*models.ApplicationRecord, error)
	withdraw     func(ctx context.Context, userID, applicationID string) (*models.ApplicationRecord, error)
	toggleSave   func(ctx context.Context, userID, jobPostID string, isSaved bool) (string, *models.ApplicationRecord, error)
	updateStatus func(ctx context.Context, recruiterID, jobPostID, userID string, status models.ApplicationStatus) (*models.ApplicationRecord, error)
	history      func(ctx context.Context, userID, applicationID string) ([]models.AuditEntry, error)
	get          func(ctx context.Context, userID, applicationID string) (*models.ApplicationRecord, error)
	listMine     func(ctx context.Context, userID string) ([]models.ApplicationView, error)
}

func (s *stubApplicationService) Apply(ctx context.Context, userID, jobPostID, notes string) (*models.ApplicationRecord, error) {
	return s.apply(ctx, userID, jobPostID, notes)
}

func (s *stubApplicationService) Withdraw(ctx context.Context, userID, applicationID string) (*models.ApplicationRecord, error) {
	return s.withdraw(ctx, userID, applicationID)
}

func (s *stubApplicationService) ToggleSave(ctx context.Context, userID, jobPostID string, isSaved bool) (string, *models.ApplicationRecord, error) {
	return s.toggleSave(ctx, userID, jobPostID, isSaved)
}

func (s *stubApplicationService) UpdateStatus(ctx context.Context, recruiterID, jobPostID, userID string, status models.ApplicationStatus) (*models.ApplicationRecord, error) {
	return s.updateStatus(ctx, recruiterID, jobPostID, userID, status)
}

func (s *stubApplicationService) History(ctx context.Context, userID, applicationID string) ([]models.AuditEntry, error) {
	return s.history(ctx, userID, applicationID)
}

func (s *stubApplicationService) Get(ctx context.Context, userID, applicationID string) (*models.ApplicationRecord, error) {
	return s.get(ctx, userID, applicationID)
}

func (s *stubApplicationService) ListMine(ctx context.Context, userID string) ([]models.ApplicationView, error) {
	return s.listMine(ctx, userID)
}

func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func appRouter(svc *stubApplicationService, userID string) *gin.Engine {
	h := NewApplicationHandler(svc)
	r := gin.New()
	r.Use(asUser(userID))
	r.POST("/applications/:job_post_id", h.Apply)
	r.GET("/applications/all", h.ListMine)
	r.GET("/applications/history/:id", h.History)
	r.PATCH("/applications/withdraw/:id", h.Withdraw)
	r.PATCH("/applications/saved/:job_post_id", h.ToggleSave)
	r.GET("/applications/:id", h.Get)
	r.PUT("/job-posts/:job_post_id/:user_id", h.UpdateStatus)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response %q is not a JSON object: %v", w.Body.String(), err)
	}
	return out
}

func sampleRecord(userID string) *models.ApplicationRecord {
	applied := models.StatusApplied
	now := time.Now().UTC()
	return &models.ApplicationRecord{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		JobPostID: primitive.NewObjectID(),
		Status:    &applied,
		InteractionHistory: []models.AuditEntry{
			models.NewTransitionEntry(nil, models.StatusApplied, now),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestApplyHandler_Created(t *testing.T) {
	rec := sampleRecord("user-1")
	svc := &stubApplicationService{
		apply: func(_ context.Context, userID, jobPostID, notes string) (*models.ApplicationRecord, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q", userID)
			}
			if jobPostID != rec.JobPostID.Hex() {
				t.Errorf("jobPostID = %q", jobPostID)
			}
			if notes != "hello" {
				t.Errorf("notes = %q", notes)
			}
			return rec, nil
		},
	}

	w := doJSON(t, appRouter(svc, "user-1"), http.MethodPost, "/applications/"+rec.JobPostID.Hex(), `{"notes":"hello"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if _, ok := decodeBody(t, w)["job"]; !ok {
		t.Errorf("body %q missing job key", w.Body.String())
	}
}

func TestApplyHandler_EmptyBodyAllowed(t *testing.T) {
	rec := sampleRecord("user-1")
	svc := &stubApplicationService{
		apply: func(_ context.Context, _, _, notes string) (*models.ApplicationRecord, error) {
			if notes != "" {
				t.Errorf("notes = %q, want empty", notes)
			}
			return rec, nil
		},
	}

	w := doJSON(t, appRouter(svc, "user-1"), http.MethodPost, "/applications/"+rec.JobPostID.Hex(), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestApplyHandler_ConflictIs400(t *testing.T) {
	svc := &stubApplicationService{
		apply: func(_ context.Context, _, _, _ string) (*models.ApplicationRecord, error) {
			return nil, utils.E(utils.CodeConflict, "ApplicationService.Apply", "already in status: Interview", nil)
		},
	}

	w := doJSON(t, appRouter(svc, "user-1"), http.MethodPost, "/applications/"+primitive.NewObjectID().Hex(), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != utils.CodeConflict {
		t.Errorf("code = %s, want conflict", apiErr.Code)
	}
	if apiErr.Message != "already in status: Interview" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestApplyHandler_Unauthenticated(t *testing.T) {
	svc := &stubApplicationService{
		apply: func(_ context.Context, _, _, _ string) (*models.ApplicationRecord, error) {
			t.Fatal("service must not be reached without a user")
			return nil, nil
		},
	}

	w := doJSON(t, appRouter(svc, ""), http.MethodPost, "/applications/"+primitive.NewObjectID().Hex(), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", w.Code, w.Body.String())
	}
}

func TestListMineHandler_EmptyIs404(t *testing.T) {
	svc := &stubApplicationService{
		listMine: func(_ context.Context, _ string) ([]models.ApplicationView, error) {
			return nil, utils.E(utils.CodeNotFound, "ApplicationService.ListMine", "no applications found", nil)
		},
	}

	w := doJSON(t, appRouter(svc, "user-1"), http.MethodGet, "/applications/all", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Message != "no applications found" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestListMineHandler_OK(t *testing.T) {
	rec := sampleRecord("user-1")
	svc := &stubApplicationService{
		listMine: func(_ context.Context, userID string) ([]models.ApplicationView, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q", userID)
			}
			return []models.ApplicationView{{ApplicationRecord: *rec}}, nil
		},
	}

	w := doJSON(t, appRouter(svc, "user-1"), http.MethodGet, "/applications/all", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if _, ok := decodeBody(t, w)["jobs"]; !ok {
		t.Errorf("body %q missing jobs key", w.Body.String())
	}
}

func TestToggleSaveHandler_RequiresFlag(t *testing.T) {
	svc := &stubApplicationService{
		toggleSave: func(_ context.Context, _, _ string, _ bool) (string, *models.ApplicationRecord, error) {
			t.Fatal("service must not be reached without is_saved")
			return "", nil, nil
		},
	}

	w := doJSON(t, appRouter(svc, "user-1"), http.MethodPatch, "/applications/saved/"+primitive.NewObjectID().Hex(), `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestToggleSaveHandler_MessageAndRecord(t *testing.T) {
	rec := sampleRecord("user-1")
	rec.IsSaved = true
	svc := &stubApplicationService{
		toggleSave: func(_ context.Context, _, _ string, isSaved bool) (string, *models.ApplicationRecord, error) {
			if !isSaved {
				t.Error("is_saved should be true")
			}
			return "Job saved successfully", rec, nil
		},
	}

	w := doJSON(t, appRouter(svc, "user-1"), http.MethodPatch, "/applications/saved/"+rec.JobPostID.Hex(), `{"is_saved":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	var msg string
	if err := json.Unmarshal(body["message"], &msg); err != nil || msg != "Job saved successfully" {
		t.Errorf("message = %q (err %v)", msg, err)
	}
	if _, ok := body["job"]; !ok {
		t.Errorf("body %q missing job key", w.Body.String())
	}
}

func TestWithdrawHandler_Conflict(t *testing.T) {
	svc := &stubApplicationService{
		withdraw: func(_ context.Context, _, _ string) (*models.ApplicationRecord, error) {
			return nil, utils.E(utils.CodeConflict, "ApplicationService.Withdraw", "cannot withdraw from status: Rejected", nil)
		},
	}

	w := doJSON(t, appRouter(svc, "user-1"), http.MethodPatch, "/applications/withdraw/"+primitive.NewObjectID().Hex(), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestHistoryHandler_OK(t *testing.T) {
	rec := sampleRecord("user-1")
	svc := &stubApplicationService{
		history: func(_ context.Context, _, _ string) ([]models.AuditEntry, error) {
			return rec.InteractionHistory, nil
		},
	}

	w := doJSON(t, appRouter(svc, "user-1"), http.MethodGet, "/applications/history/"+rec.ID.Hex(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	var entries []models.AuditEntry
	if err := json.Unmarshal(body["data"], &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Action != models.ActionApplied {
		t.Errorf("entries = %+v", entries)
	}
}

func TestUpdateStatusHandler_OK(t *testing.T) {
	rec := sampleRecord("user-1")
	interview := models.StatusInterview
	rec.Status = &interview
	svc := &stubApplicationService{
		updateStatus: func(_ context.Context, recruiterID, jobPostID, userID string, status models.ApplicationStatus) (*models.ApplicationRecord, error) {
			if recruiterID != "recruiter-1" {
				t.Errorf("recruiterID = %q", recruiterID)
			}
			if userID != "user-1" {
				t.Errorf("userID = %q", userID)
			}
			if status != models.StatusInterview {
				t.Errorf("status = %q", status)
			}
			return rec, nil
		},
	}

	w := doJSON(t, appRouter(svc, "recruiter-1"), http.MethodPut,
		"/job-posts/"+rec.JobPostID.Hex()+"/user-1", `{"status":"Interview"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateStatusHandler_MissingStatus(t *testing.T) {
	svc := &stubApplicationService{
		updateStatus: func(_ context.Context, _, _, _ string, _ models.ApplicationStatus) (*models.ApplicationRecord, error) {
			t.Fatal("service must not be reached without a status")
			return nil, nil
		},
	}

	w := doJSON(t, appRouter(svc, "recruiter-1"), http.MethodPut,
		"/job-posts/"+primitive.NewObjectID().Hex()+"/user-1", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestUpdateStatusHandler_Forbidden(t *testing.T) {
	svc := &stubApplicationService{
		updateStatus: func(_ context.Context, _, _, _ string, _ models.ApplicationStatus) (*models.ApplicationRecord, error) {
			return nil, utils.E(utils.CodeForbidden, "ApplicationService.UpdateStatus", "not the owner of this job post", nil)
		},
	}

	w := doJSON(t, appRouter(svc, "recruiter-2"), http.MethodPut,
		"/job-posts/"+primitive.NewObjectID().Hex()+"/user-1", `{"status":"Rejected"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
}
