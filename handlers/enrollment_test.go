package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"nursery_app_backend/models"
	"nursery_app_backend/services"
)

type fakeIntake struct {
	req    *models.IntakeRequest
	docs   []services.IntakeDocument
	result *models.IntakeResult
	err    error
}

func (f *fakeIntake) Submit(req *models.IntakeRequest, docs []services.IntakeDocument) (*models.IntakeResult, error) {
	f.req = req
	f.docs = docs
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeDecider struct {
	approveReq *models.ApproveEnrollmentRequest
	rejectReq  *models.RejectEnrollmentRequest
	result     *models.DecisionResult
	detail     *models.EnrollmentDetail
	err        error
}

func (f *fakeDecider) Approve(id int, req *models.ApproveEnrollmentRequest) (*models.DecisionResult, error) {
	f.approveReq = req
	return f.result, f.err
}

func (f *fakeDecider) Reject(id int, req *models.RejectEnrollmentRequest) (*models.DecisionResult, error) {
	f.rejectReq = req
	return f.result, f.err
}

func (f *fakeDecider) List(status string, page, pageSize int) (*models.EnrollmentList, error) {
	return &models.EnrollmentList{Enrollments: []models.EnrollmentDetail{}}, f.err
}

func (f *fakeDecider) Get(id int) (*models.EnrollmentDetail, error) {
	return f.detail, f.err
}

func (f *fakeDecider) Stats() (*models.EnrollmentStats, error) {
	return &models.EnrollmentStats{Total: 1, Pending: 1}, f.err
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asPrincipal injects an authenticated user the way AuthMiddleware does.
func asPrincipal(userID int, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Next()
	}
}

func multipartIntakeBody(t *testing.T, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := map[string]string{
		"guardian_first_name": "Nadia",
		"guardian_last_name":  "Ben Ali",
		"guardian_email":      "parent@test.com",
		"guardian_phone":      "+21612345678",
		"guardian_password":   "correct horse",
		"child_first_name":    "Yasmine",
		"child_last_name":     "Ben Ali",
		"child_birth_date":    "2021-03-15",
		"regulation_accepted": "true",
		"lunch_assistance":    "true",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field error: %v", err)
		}
	}
	if withFile {
		fw, err := w.CreateFormFile(models.DocBirthCertificate, "birth.pdf")
		if err != nil {
			t.Fatalf("create file error: %v", err)
		}
		if _, err := fw.Write([]byte("%PDF-1.4 test")); err != nil {
			t.Fatalf("write file error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer error: %v", err)
	}
	return body, w.FormDataContentType()
}

func TestSubmitParsesMultipartForm(t *testing.T) {
	intake := &fakeIntake{result: &models.IntakeResult{GuardianID: 1, ChildID: 2, EnrollmentID: 3, Notified: true}}
	h := NewEnrollmentHandler(intake, &fakeDecider{})

	r := newTestRouter()
	r.POST("/enrollments", h.Submit)

	body, contentType := multipartIntakeBody(t, true)
	req := httptest.NewRequest(http.MethodPost, "/enrollments", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if intake.req == nil || intake.req.GuardianEmail != "parent@test.com" {
		t.Fatalf("request not forwarded: %+v", intake.req)
	}
	if !intake.req.RegulationAccepted || !intake.req.LunchAssistance {
		t.Fatalf("boolean flags not parsed: %+v", intake.req)
	}
	if len(intake.docs) != 1 || intake.docs[0].Category != models.DocBirthCertificate {
		t.Fatalf("unexpected documents: %+v", intake.docs)
	}

	var result models.IntakeResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if result.EnrollmentID != 3 || !result.Notified {
		t.Fatalf("unexpected body: %+v", result)
	}
}

func TestSubmitMissingFields(t *testing.T) {
	h := NewEnrollmentHandler(&fakeIntake{}, &fakeDecider{})

	r := newTestRouter()
	r.POST("/enrollments", h.Submit)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	_ = w.WriteField("guardian_first_name", "Nadia")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/enrollments", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestErrorKindStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ValidationError("bad"), http.StatusBadRequest},
		{services.ConflictError("dup"), http.StatusConflict},
		{services.NotFoundError("missing"), http.StatusNotFound},
		{services.AuthorizationError("nope"), http.StatusForbidden},
		{services.InternalError("boom", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewEnrollmentHandler(&fakeIntake{}, &fakeDecider{err: tc.err})

		r := newTestRouter()
		r.PUT("/enrollments/:id/approve", h.Approve)

		req := httptest.NewRequest(http.MethodPut, "/enrollments/5/approve", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Fatalf("error %v: expected status %d, got %d", tc.err, tc.want, w.Code)
		}
	}
}

func TestApproveWithEmptyBody(t *testing.T) {
	decider := &fakeDecider{result: &models.DecisionResult{EnrollmentID: 5, Notified: true}}
	h := NewEnrollmentHandler(&fakeIntake{}, decider)

	r := newTestRouter()
	r.PUT("/enrollments/:id/approve", h.Approve)

	req := httptest.NewRequest(http.MethodPut, "/enrollments/5/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if decider.approveReq == nil || decider.approveReq.AppointmentDate != "" {
		t.Fatalf("expected empty approve request, got %+v", decider.approveReq)
	}
}

func TestApproveInvalidID(t *testing.T) {
	h := NewEnrollmentHandler(&fakeIntake{}, &fakeDecider{})

	r := newTestRouter()
	r.PUT("/enrollments/:id/approve", h.Approve)

	req := httptest.NewRequest(http.MethodPut, "/enrollments/abc/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestGetHidesForeignEnrollmentFromGuardian(t *testing.T) {
	detail := &models.EnrollmentDetail{}
	detail.ID = 5
	detail.GuardianID = 77
	decider := &fakeDecider{detail: detail}
	h := NewEnrollmentHandler(&fakeIntake{}, decider)

	r := newTestRouter()
	r.GET("/enrollments/:id", asPrincipal(10, models.RoleGuardian), h.Get)

	req := httptest.NewRequest(http.MethodGet, "/enrollments/5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another guardian's enrollment, got %d", w.Code)
	}
}

func TestGetAllowsOwnerAndStaff(t *testing.T) {
	detail := &models.EnrollmentDetail{}
	detail.ID = 5
	detail.GuardianID = 10
	detail.Status = models.EnrollmentApproved

	for _, principal := range []struct {
		id   int
		role string
	}{
		{10, models.RoleGuardian},
		{1, models.RoleStaff},
		{2, models.RoleAdmin},
	} {
		h := NewEnrollmentHandler(&fakeIntake{}, &fakeDecider{detail: detail})

		r := newTestRouter()
		r.GET("/enrollments/:id", asPrincipal(principal.id, principal.role), h.Get)

		req := httptest.NewRequest(http.MethodGet, "/enrollments/5", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s should see the enrollment, got %d", principal.role, w.Code)
		}

		var got models.EnrollmentDetail
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		if got.Status != models.EnrollmentApproved {
			t.Fatalf("unexpected status in body: %s", got.Status)
		}
	}
}

func TestRejectForwardsReason(t *testing.T) {
	decider := &fakeDecider{result: &models.DecisionResult{EnrollmentID: 5}}
	h := NewEnrollmentHandler(&fakeIntake{}, decider)

	r := newTestRouter()
	r.PUT("/enrollments/:id/reject", h.Reject)

	payload := `{"reason": "group is full", "admin_comment": "waitlisted"}`
	req := httptest.NewRequest(http.MethodPut, "/enrollments/5/reject", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if decider.rejectReq == nil || decider.rejectReq.Reason != "group is full" {
		t.Fatalf("reason not forwarded: %+v", decider.rejectReq)
	}
}
