package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/rodify-dispatch/internal/config"
	"github.com/nurpe/rodify-dispatch/internal/db"
	"github.com/nurpe/rodify-dispatch/internal/excel"
	"github.com/nurpe/rodify-dispatch/internal/http/middleware"
	"github.com/nurpe/rodify-dispatch/internal/model"
	"github.com/nurpe/rodify-dispatch/internal/pdf"
	"github.com/nurpe/rodify-dispatch/internal/repository"
	"github.com/nurpe/rodify-dispatch/internal/service"
)

var daytime = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	if err := db.SeedMemory(store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clock := func() time.Time { return daytime }
	pricing := service.NewPricingService(store, time.UTC, "USD")
	lifecycle := service.NewLifecycleService(store, pricing, clock)
	handler := NewHandler(Services{
		Lifecycle:   lifecycle,
		Pricing:     pricing,
		Technicians: service.NewTechnicianService(store),
		Reports:     service.NewReportService(store, lifecycle, excel.NewGenerator(), pdf.NewGenerator(), "USD"),
		System:      service.NewSystemService(store),
	}, zerolog.Nop())
	handler.now = clock

	cfg := &config.Config{
		Environment: "test",
		HTTP:        config.HTTPConfig{AllowedOrigins: []string{"*"}},
	}
	return NewRouter(handler, zerolog.Nop(), cfg)
}

func doRequest(t *testing.T, router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

const createBattery = `{
	"customer_id": 1,
	"service_type": "bateria",
	"location": {"lat": 8.98, "lng": -79.52, "address": "Calle 50", "zone": "ciudad"},
	"payment_method": "efectivo"
}`

func TestCreateAndFetchService(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/services", createBattery)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID          int64   `json:"id"`
		Code        string  `json:"code"`
		Status      string  `json:"status"`
		QuotedPrice float64 `json:"quoted_price"`
	}
	decode(t, rec, &created)
	if created.ID != 1 || created.Code != "SVC-00001" || created.Status != "pending" || created.QuotedPrice != 18 {
		t.Fatalf("unexpected create response %+v", created)
	}

	rec = doRequest(t, router, http.MethodGet, "/services/SVC-00001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var fetched map[string]interface{}
	decode(t, rec, &fetched)
	if fetched["technician_id"] != nil || fetched["address"] != "Calle 50" || fetched["payment_method"] != "efectivo" {
		t.Fatalf("unexpected projection %+v", fetched)
	}
}

func TestLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	if rec := doRequest(t, router, http.MethodPost, "/services", createBattery); rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	rec := doRequest(t, router, http.MethodPost, "/services/SVC-00001/accept?technician_id=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		OK           bool   `json:"ok"`
		Status       string `json:"status"`
		TechnicianID int64  `json:"technician_id"`
	}
	decode(t, rec, &accepted)
	if !accepted.OK || accepted.Status != "assigned" || accepted.TechnicianID != 1 {
		t.Fatalf("unexpected accept response %+v", accepted)
	}

	rec = doRequest(t, router, http.MethodPost, "/services/SVC-00001/status", `{"status":"en_route","notes":"saliendo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status body: %d %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, router, http.MethodPost, "/services/SVC-00001/status?status=arrived&notes=lleg%C3%B3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status query: %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/services/SVC-00001", "")
	var fetched struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	decode(t, rec, &fetched)
	if fetched.Status != "arrived" || fetched.Notes != "saliendo | llegó" {
		t.Fatalf("unexpected service after updates %+v", fetched)
	}

	rec = doRequest(t, router, http.MethodGet, "/services/SVC-00001/events", "")
	var events []map[string]interface{}
	decode(t, rec, &events)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[1]["notes"] != "assigned to 1" {
		t.Fatalf("unexpected accept event %+v", events[1])
	}
}

func TestAcceptWithJSONBody(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/services", createBattery)

	rec := doRequest(t, router, http.MethodPost, "/services/SVC-00001/accept", `{"technician_id": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/services/SVC-00001/accept", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without technician_id, got %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/services", createBattery)

	cases := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown customer", http.MethodPost, "/services", strings.Replace(createBattery, `"customer_id": 1`, `"customer_id": 999`, 1), http.StatusBadRequest, "customer_not_found"},
		{"invalid zone", http.MethodPost, "/services", strings.Replace(createBattery, `"ciudad"`, `"norte"`, 1), http.StatusBadRequest, "invalid_input"},
		{"missing location", http.MethodPost, "/services", `{"customer_id":1,"service_type":"bateria","payment_method":"yappy"}`, http.StatusBadRequest, "invalid_input"},
		{"unknown service", http.MethodGet, "/services/SVC-00404", "", http.StatusNotFound, "service_not_found"},
		{"unknown service accept", http.MethodPost, "/services/SVC-00404/accept?technician_id=1", "", http.StatusNotFound, "service_not_found"},
		{"unknown technician", http.MethodPost, "/services/SVC-00001/accept?technician_id=999", "", http.StatusBadRequest, "technician_not_found"},
		{"bad technician id", http.MethodPost, "/services/SVC-00001/accept?technician_id=abc", "", http.StatusBadRequest, "invalid_input"},
		{"invalid status", http.MethodPost, "/services/SVC-00001/status", `{"status":"flying"}`, http.StatusBadRequest, "invalid_input"},
		{"unknown service status", http.MethodPost, "/services/SVC-00404/status?status=completed", "", http.StatusNotFound, "service_not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, tc.method, tc.target, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			var body struct {
				Error string `json:"error"`
				Code  string `json:"code"`
			}
			decode(t, rec, &body)
			if body.Code != tc.code || body.Error == "" {
				t.Fatalf("unexpected error body %+v", body)
			}
		})
	}

	rec := doRequest(t, router, http.MethodGet, "/services/SVC-00001", "")
	var svc struct {
		Status       string `json:"status"`
		TechnicianID *int64 `json:"technician_id"`
	}
	decode(t, rec, &svc)
	if svc.Status != "pending" || svc.TechnicianID != nil {
		t.Fatalf("failed requests must not change the service, got %+v", svc)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name  string
		body  string
		price float64
		at    string
	}{
		{"explicit night", `{"service_type":"cerrajeria","zone":"chepo","date_time_iso":"2025-03-14T23:15:00","is_holiday":true}`, 43, "2025-03-14T23:15:00Z"},
		{"explicit day", `{"service_type":"llanta","zone":"este","date_time_iso":"2025-03-14T06:00:00Z"}`, 18, "2025-03-14T06:00:00Z"},
		{"default now", `{"service_type":"bateria","zone":"ciudad"}`, 18, "2025-03-14T10:30:00Z"},
		{"date only is midnight", `{"service_type":"bateria","zone":"ciudad","date_time_iso":"2025-01-01"}`, 24, "2025-01-01T00:00:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/services/quote", tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			var quote struct {
				Price    float64 `json:"price"`
				Currency string  `json:"currency"`
				At       string  `json:"at"`
			}
			decode(t, rec, &quote)
			if quote.Price != tc.price || quote.Currency != "USD" || quote.At != tc.at {
				t.Fatalf("unexpected quote %+v", quote)
			}
		})
	}

	rec := doRequest(t, router, http.MethodPost, "/services/quote", `{"service_type":"bateria","zone":"ciudad","date_time_iso":"mañana"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestAvailableTechnicians(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/technicians/available?zone=este", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var techs []technicianResponse
	decode(t, rec, &techs)
	if len(techs) != 1 || techs[0].ID != 1 || len(techs[0].Zones) != 2 || !techs[0].Online {
		t.Fatalf("unexpected technicians %+v", techs)
	}

	rec = doRequest(t, router, http.MethodGet, "/technicians/available?zone=chepo", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list for chepo, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/technicians/available", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without zone, got %d", rec.Code)
	}
}

func TestReceiptAndExport(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/services", createBattery)

	rec := doRequest(t, router, http.MethodGet, "/services/SVC-00001/receipt", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("receipt: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != pdfContentType || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("unexpected receipt response %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "svc-00001.pdf") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}

	today := time.Now().UTC().Format("2006-01-02")
	rec = doRequest(t, router, http.MethodGet, "/services/export?from="+today+"&to="+today+"&zone=ciudad", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != xlsxContentType || rec.Body.Len() == 0 {
		t.Fatalf("unexpected export response %q", rec.Header().Get("Content-Type"))
	}

	rec = doRequest(t, router, http.MethodGet, "/services/export?from=2025-03-20&to=2025-03-01", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted period, got %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/services/export?from=2025-03-01", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without to, got %d", rec.Code)
	}
}

func TestSystemRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected health %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Header().Get(middleware.RequestIDHeader) != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", rec.Header().Get(middleware.RequestIDHeader))
	}

	rec = doRequest(t, router, http.MethodGet, "/system/demo-users", "")
	var demo struct {
		Customer   contactResponse `json:"customer"`
		Technician contactResponse `json:"technician"`
	}
	decode(t, rec, &demo)
	if demo.Customer.Phone != "+50760000001" || demo.Technician.Phone != "+50760000002" {
		t.Fatalf("unexpected demo users %+v", demo)
	}

	rec = doRequest(t, router, http.MethodGet, "/pricing/rules", "")
	var rules []map[string]interface{}
	decode(t, rec, &rules)
	if len(rules) != 15 {
		t.Fatalf("expected 15 rules, got %d", len(rules))
	}
}

func TestParseDateTime(t *testing.T) {
	panama, err := time.LoadLocation("America/Panama")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	got, err := parseDateTime("2025-03-14T21:59:59", panama)
	if err != nil {
		t.Fatalf("parse naive: %v", err)
	}
	if got.Location() != panama || got.Hour() != 21 {
		t.Fatalf("naive time must be read in the pricing location, got %v", got)
	}

	got, err = parseDateTime("2025-03-14T22:00:00-05:00", time.UTC)
	if err != nil {
		t.Fatalf("parse offset: %v", err)
	}
	if got.UTC().Hour() != 3 {
		t.Fatalf("unexpected offset time %v", got)
	}

	got, err = parseDateTime("2025-01-01", panama)
	if err != nil {
		t.Fatalf("parse date only: %v", err)
	}
	if got.Location() != panama || got.Hour() != 0 || got.Day() != 1 {
		t.Fatalf("date only must be midnight in the pricing location, got %v", got)
	}

	if _, err := parseDateTime("14/03/2025", time.UTC); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
}

type brokenRulesStore struct {
	repository.Store
}

func (brokenRulesStore) ListPricingRules(context.Context) ([]model.PricingRule, error) {
	return nil, errors.New("connection reset")
}

func TestInternalErrorLogsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := brokenRulesStore{Store: repository.NewMemoryStore()}

	var logs bytes.Buffer
	handler := NewHandler(Services{
		Pricing: service.NewPricingService(store, time.UTC, "USD"),
		System:  service.NewSystemService(store),
	}, zerolog.New(&logs))
	router := NewRouter(handler, zerolog.Nop(), &config.Config{Environment: "test"})

	req := httptest.NewRequest(http.MethodGet, "/pricing/rules", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-500")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Fatalf("internal error details must not leak: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), `"request_id":"req-500"`) {
		t.Fatalf("expected request id in error log, got %s", logs.String())
	}
}
