package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"milpay/internal/domain/auth"
	"milpay/internal/domain/payroll"
	"milpay/internal/domain/roster"
	"milpay/internal/transport/http/middleware"
)

const testSecret = "test-secret"

type memStore struct {
	batches []payroll.Batch
	nextID  int
}

func (m *memStore) FindByPeriod(_ context.Context, month string, year int) (*payroll.Batch, error) {
	for i := range m.batches {
		if m.batches[i].Month == month && m.batches[i].Year == year {
			return &m.batches[i], nil
		}
	}
	return nil, payroll.ErrNotFound
}

func (m *memStore) Insert(_ context.Context, batch payroll.Batch) (*payroll.Batch, error) {
	for i := range m.batches {
		if m.batches[i].Month == batch.Month && m.batches[i].Year == batch.Year {
			return nil, payroll.ErrDuplicatePeriod
		}
	}
	m.nextID++
	batch.ID = "00000000-0000-0000-0000-" + padID(m.nextID)
	batch.CreatedAt = time.Now().UTC()
	batch.UpdatedAt = batch.CreatedAt
	m.batches = append(m.batches, batch)
	return &batch, nil
}

func padID(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 12 {
		s = "0" + s
	}
	return s
}

func (m *memStore) List(_ context.Context, filter payroll.HistoryFilter, limit int) ([]payroll.Batch, error) {
	var out []payroll.Batch
	for i := len(m.batches) - 1; i >= 0 && len(out) < limit; i-- {
		b := m.batches[i]
		if filter.Year != 0 && b.Year != filter.Year {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*payroll.Batch, error) {
	for i := range m.batches {
		if m.batches[i].ID == id {
			return &m.batches[i], nil
		}
	}
	return nil, payroll.ErrNotFound
}

func (m *memStore) Delete(_ context.Context, id string) error {
	for i := range m.batches {
		if m.batches[i].ID == id {
			m.batches = append(m.batches[:i], m.batches[i+1:]...)
			return nil
		}
	}
	return payroll.ErrNotFound
}

type memRoster struct {
	soldiers []roster.Soldier
}

func (m *memRoster) ListActive(_ context.Context) ([]roster.Soldier, error) {
	var active []roster.Soldier
	for _, s := range m.soldiers {
		if s.Status == roster.StatusActive {
			active = append(active, s)
		}
	}
	return active, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestServer(t *testing.T, store *memStore, rosterStore *memRoster) *httptest.Server {
	t.Helper()
	svc := payroll.NewService(store, rosterStore, payroll.PolicyTrustClient)
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(testSecret))
	handler := NewHandler(svc)
	handler.RegisterRoutes(router)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func authToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u1", FullName: "Maj. Ade", Rank: "Major", ServiceNumber: "NA/1"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return token
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return res, env
}

func approveBody(month string, year int) map[string]any {
	return map[string]any{
		"month": month,
		"year":  year,
		"personnel": []map[string]any{
			{"personnelId": "p1", "netPay": 1500.0, "salary": map[string]any{"conafss": 2000.0}, "deductions": map[string]any{"tax": 500.0}},
		},
	}
}

func TestApproveEndpoint(t *testing.T) {
	ts := newTestServer(t, &memStore{}, &memRoster{})
	token := authToken(t)

	res, env := doJSON(t, http.MethodPost, ts.URL+"/payroll/approve", token, approveBody("March", 2025))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var batch payroll.Batch
	if err := json.Unmarshal(env.Data, &batch); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if batch.Status != payroll.StatusApproved {
		t.Fatalf("expected approved, got %q", batch.Status)
	}
	if batch.ApprovedBy != "Maj. Ade" {
		t.Fatalf("expected authenticated user as approver, got %q", batch.ApprovedBy)
	}
	if batch.TotalAmount != 1500 {
		t.Fatalf("expected total 1500, got %v", batch.TotalAmount)
	}
}

func TestApproveEndpointRequiresAuth(t *testing.T) {
	ts := newTestServer(t, &memStore{}, &memRoster{})
	res, _ := doJSON(t, http.MethodPost, ts.URL+"/payroll/approve", "", approveBody("March", 2025))
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestApproveEndpointDuplicate(t *testing.T) {
	ts := newTestServer(t, &memStore{}, &memRoster{})
	token := authToken(t)

	if res, _ := doJSON(t, http.MethodPost, ts.URL+"/payroll/approve", token, approveBody("March", 2025)); res.StatusCode != http.StatusCreated {
		t.Fatalf("first approval failed: %d", res.StatusCode)
	}
	res, env := doJSON(t, http.MethodPost, ts.URL+"/payroll/approve", token, approveBody("March", 2025))
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "duplicate_period" {
		t.Fatalf("expected duplicate_period code, got %+v", env.Error)
	}
}

func TestApproveEndpointValidation(t *testing.T) {
	ts := newTestServer(t, &memStore{}, &memRoster{})
	token := authToken(t)

	res, env := doJSON(t, http.MethodPost, ts.URL+"/payroll/approve", token, map[string]any{"month": "March", "year": 2025})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error code, got %+v", env.Error)
	}
}

func TestActivePersonnelEndpoint(t *testing.T) {
	rosterStore := &memRoster{soldiers: []roster.Soldier{
		{ID: "1", Status: roster.StatusActive, Salary: map[string]float64{"base": 100}},
		{ID: "2", Status: roster.StatusActive, Salary: map[string]float64{"base": 200}},
		{ID: "3", Status: roster.StatusActive, Salary: map[string]float64{"base": 300}},
		{ID: "4", Status: roster.StatusInactive, Salary: map[string]float64{"base": 400}},
	}}
	ts := newTestServer(t, &memStore{}, rosterStore)

	res, env := doJSON(t, http.MethodGet, ts.URL+"/payroll/active-personnel", "", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var preview payroll.Preview
	if err := json.Unmarshal(env.Data, &preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if preview.Count != 3 {
		t.Fatalf("expected count 3, got %d", preview.Count)
	}
	if preview.TotalAmount != 600 {
		t.Fatalf("expected total 600, got %v", preview.TotalAmount)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	ts := newTestServer(t, &memStore{}, &memRoster{})
	token := authToken(t)

	for _, period := range []struct {
		month string
		year  int
	}{{"January", 2025}, {"February", 2025}, {"December", 2024}} {
		if res, _ := doJSON(t, http.MethodPost, ts.URL+"/payroll/approve", token, approveBody(period.month, period.year)); res.StatusCode != http.StatusCreated {
			t.Fatalf("approval for %s %d failed: %d", period.month, period.year, res.StatusCode)
		}
	}

	res, env := doJSON(t, http.MethodGet, ts.URL+"/payroll/history?year=2025&limit=10", "", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var result struct {
		Payrolls []payroll.Batch `json:"payrolls"`
		Total    int             `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 batches for 2025, got %d", result.Total)
	}
	for _, b := range result.Payrolls {
		if b.Year != 2025 {
			t.Fatalf("unexpected year %d in filtered history", b.Year)
		}
	}
}

func TestGetByIDEndpoint(t *testing.T) {
	store := &memStore{}
	ts := newTestServer(t, store, &memRoster{})
	token := authToken(t)

	_, env := doJSON(t, http.MethodPost, ts.URL+"/payroll/approve", token, approveBody("March", 2025))
	var batch payroll.Batch
	if err := json.Unmarshal(env.Data, &batch); err != nil {
		t.Fatalf("decode batch: %v", err)
	}

	res, _ := doJSON(t, http.MethodGet, ts.URL+"/payroll/"+batch.ID, "", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	res, env = doJSON(t, http.MethodGet, ts.URL+"/payroll/not-a-uuid", "", nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", res.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "invalid_id" {
		t.Fatalf("expected invalid_id code, got %+v", env.Error)
	}

	res, _ = doJSON(t, http.MethodGet, ts.URL+"/payroll/11111111-1111-1111-1111-111111111111", "", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", res.StatusCode)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	store := &memStore{}
	ts := newTestServer(t, store, &memRoster{})
	token := authToken(t)

	_, env := doJSON(t, http.MethodPost, ts.URL+"/payroll/approve", token, approveBody("March", 2025))
	var batch payroll.Batch
	if err := json.Unmarshal(env.Data, &batch); err != nil {
		t.Fatalf("decode batch: %v", err)
	}

	res, _ := doJSON(t, http.MethodDelete, ts.URL+"/payroll/11111111-1111-1111-1111-111111111111", token, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodDelete, ts.URL+"/payroll/"+batch.ID, token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if len(store.batches) != 0 {
		t.Fatalf("expected batch removed, got %d", len(store.batches))
	}

	res, _ = doJSON(t, http.MethodDelete, ts.URL+"/payroll/"+batch.ID, "", nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", res.StatusCode)
	}
}
