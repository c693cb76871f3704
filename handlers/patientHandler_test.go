package handlers

import (
	"PatientRegistry/metrics"
	"PatientRegistry/middlewares"
	"PatientRegistry/models"
	"PatientRegistry/repositories"
	"PatientRegistry/services"
	"PatientRegistry/testutil"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router    *gin.Engine
	collector *metrics.Collector
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := services.NewPatientService(repositories.NewPatientRepository(db), nil, time.Minute, zap.NewNop())
	collector := metrics.NewCollector("test")

	patients := NewPatientHandler(service, collector)
	statistics := NewStatisticsHandler(service)

	r := gin.New()
	r.POST("/api/patients", patients.RegisterPatient)
	r.GET("/api/patients", patients.GetAllPatients)
	r.GET("/api/patients/search", patients.SearchPatients)
	r.DELETE("/api/patients/:protocol_number", patients.DeletePatient)
	r.GET("/api/statistics", statistics.GetStatistics)

	return &testServer{router: r, collector: collector}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestRegisterPatient(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/patients", testutil.NewRegistration("P-1", "male", "1980-01-01", "J18.9", "I10"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.RegisterResponse
	decode(t, w, &resp)
	if !resp.Success || resp.PatientID == 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if got := prom.ToFloat64(s.collector.PatientsRegisteredTotal); got != 1 {
		t.Errorf("expected registered counter 1, got %v", got)
	}
}

func TestRegisterPatient_Rejected(t *testing.T) {
	s := newTestServer(t)

	noCodes := testutil.NewRegistration("P-2", "female", "1990-05-05")
	noCodes.ICDCodes = nil

	blankCodes := testutil.NewRegistration("P-3", "female", "1990-05-05")
	blankCodes.ICDCodes = []models.ICDCodeInput{{Code: "  "}}

	missingName := testutil.NewRegistration("P-4", "female", "1990-05-05")
	missingName.Name = ""

	tests := []struct {
		name string
		body interface{}
	}{
		{"no icd codes", noCodes},
		{"blank icd codes", blankCodes},
		{"missing name", missingName},
		{"malformed json", "not an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/patients", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			var resp middlewares.ErrorResponse
			decode(t, w, &resp)
			if resp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}

	w := s.do(t, http.MethodGet, "/api/patients", nil)
	var patients []models.PatientView
	decode(t, w, &patients)
	if len(patients) != 0 {
		t.Errorf("expected no stored patients, got %d", len(patients))
	}
}

func TestRegisterPatient_ValidationDetails(t *testing.T) {
	s := newTestServer(t)

	req := testutil.NewRegistration("P-5", "unknown", "1990-05-05")
	w := s.do(t, http.MethodPost, "/api/patients", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp middlewares.ErrorResponse
	decode(t, w, &resp)
	if resp.Code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %q", resp.Code)
	}
	if _, ok := resp.Details["gender"]; !ok {
		t.Errorf("expected gender in details, got %v", resp.Details)
	}
}

func TestRegisterPatient_Duplicate(t *testing.T) {
	s := newTestServer(t)

	req := testutil.NewRegistration("P-6", "male", "1970-02-02")
	if w := s.do(t, http.MethodPost, "/api/patients", req); w.Code != http.StatusOK {
		t.Fatalf("first registration failed: %d", w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/patients", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp middlewares.ErrorResponse
	decode(t, w, &resp)
	if resp.Code != "DUPLICATE_PROTOCOL" {
		t.Errorf("expected DUPLICATE_PROTOCOL, got %q", resp.Code)
	}
}

func TestSearchPatients(t *testing.T) {
	s := newTestServer(t)

	for _, req := range []models.RegisterPatientRequest{
		testutil.NewRegistration("S-1", "male", "1940-01-01", "I10"),
		testutil.NewRegistration("S-2", "female", "1945-01-01", "I10.1"),
		testutil.NewRegistration("S-3", "male", "2000-01-01", "I10"),
		testutil.NewRegistration("S-4", "male", "1930-01-01", "J18.9"),
	} {
		if w := s.do(t, http.MethodPost, "/api/patients", req); w.Code != http.StatusOK {
			t.Fatalf("register %s: %d %s", req.ProtocolNumber, w.Code, w.Body.String())
		}
	}

	w := s.do(t, http.MethodGet, "/api/patients/search?icd_code=I10&gender=male&min_age=65", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var result models.SearchResult
	decode(t, w, &result)
	if result.Count != 1 || len(result.Patients) != 1 {
		t.Fatalf("expected 1 match, got %+v", result)
	}
	if result.Patients[0].ProtocolNumber != "S-1" {
		t.Errorf("expected S-1, got %s", result.Patients[0].ProtocolNumber)
	}

	w = s.do(t, http.MethodGet, "/api/patients/search", nil)
	decode(t, w, &result)
	if result.Count != 4 {
		t.Errorf("expected unfiltered search to return 4, got %d", result.Count)
	}
}

func TestSearchPatients_GenderIsCaseInsensitive(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(t, http.MethodPost, "/api/patients", testutil.NewRegistration("G-1", "Male", "1980-01-01")); w.Code != http.StatusOK {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}

	for _, gender := range []string{"male", "Male", "%20MALE%20"} {
		w := s.do(t, http.MethodGet, "/api/patients/search?gender="+gender, nil)
		var result models.SearchResult
		decode(t, w, &result)
		if result.Count != 1 {
			t.Errorf("gender=%s: expected 1 match, got %d", gender, result.Count)
		}
	}
}

func TestSearchPatients_InvalidMinAge(t *testing.T) {
	s := newTestServer(t)

	for _, q := range []string{"abc", "-1", "3.5"} {
		w := s.do(t, http.MethodGet, "/api/patients/search?min_age="+q, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("min_age=%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestDeletePatient(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(t, http.MethodPost, "/api/patients", testutil.NewRegistration("D-1", "female", "1985-03-03")); w.Code != http.StatusOK {
		t.Fatalf("register failed: %d", w.Code)
	}

	w := s.do(t, http.MethodDelete, "/api/patients/D-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := prom.ToFloat64(s.collector.PatientsDeletedTotal); got != 1 {
		t.Errorf("expected deleted counter 1, got %v", got)
	}

	w = s.do(t, http.MethodDelete, "/api/patients/D-1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestGetStatistics(t *testing.T) {
	s := newTestServer(t)

	for _, req := range []models.RegisterPatientRequest{
		testutil.NewRegistration("T-1", "male", "2015-01-01"),
		testutil.NewRegistration("T-2", "female", "1980-01-01"),
		testutil.NewRegistration("T-3", "female", "1940-01-01"),
	} {
		if w := s.do(t, http.MethodPost, "/api/patients", req); w.Code != http.StatusOK {
			t.Fatalf("register %s: %d", req.ProtocolNumber, w.Code)
		}
	}

	w := s.do(t, http.MethodGet, "/api/statistics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var stats models.Statistics
	decode(t, w, &stats)
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}

	var genderSum int64
	for _, g := range stats.ByGender {
		genderSum += g.Count
	}
	if genderSum != stats.Total {
		t.Errorf("gender breakdown %d does not sum to total %d", genderSum, stats.Total)
	}
	if groups := stats.AgeGroups; groups.Children+groups.Adults+groups.Seniors != stats.Total {
		t.Errorf("age groups %+v do not sum to total %d", groups, stats.Total)
	}
}
