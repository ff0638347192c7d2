package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yarey/backend/internal/service"
	"yarey/backend/internal/store/memory"
)

// newTestAPI builds a full API over the seeded in-memory store so handler
// tests exercise the complete request path.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	now := time.Date(2025, 2, 1, 3, 30, 0, 0, time.UTC)
	svc := service.New(memory.NewSeeded(), service.Options{
		Location: time.FixedZone("ICT", 7*60*60),
		Now:      func() time.Time { return now },
	})
	return New(svc, "*").Handler()
}

func doJSON(t *testing.T, handler http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v (raw %q)", err, rec.Body.String())
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t)
	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected security headers on every response")
	}
}

func TestUnknownMethodAndRoute(t *testing.T) {
	handler := newTestAPI(t)

	if rec := doJSON(t, handler, http.MethodPatch, "/api/v1/checkout", map[string]any{}); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodGet, "/api/v1/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodOptions, "/api/v1/checkout", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
}

func TestVoucherValidateDistinguishesReasons(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/vouchers/validate", map[string]any{"code": "promo-welcom"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/vouchers/validate", map[string]any{
		"code":         "PROMO-WELCOM",
		"appliedCodes": []string{"PROMO-WELCOM"},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a code already in the cart, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/vouchers/validate", map[string]any{"code": "PROMO-ZZZZZZ"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/vouchers", map[string]any{
		"clientId":     "somchai@example.com",
		"treatmentId":  "t-aroma",
		"pricePaid":    1000,
		"validity":     "CUSTOM",
		"customExpiry": "2025-01-15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on issue, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	issued := decodeBody(t, rec)["voucher"].(map[string]any)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/vouchers/validate", map[string]any{"code": issued["code"]})
	if rec.Code != http.StatusGone {
		t.Fatalf("expected 410 for expired voucher, got %d", rec.Code)
	}
}

func TestCheckoutEndpoint(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/checkout", map[string]any{
		"date":          "Today",
		"salesmanId":    "st-ann",
		"paymentMethod": "Cash",
		"lines": []map[string]any{
			{"treatmentId": "t-aroma", "name": "Jane", "email": "jane@x.com", "manualDiscount": "100"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["revenue"] != float64(1400) {
		t.Fatalf("expected revenue 1400, got %v", body["revenue"])
	}
	if !strings.HasPrefix(body["groupId"].(string), "grp-") {
		t.Fatalf("expected grp- group id, got %v", body["groupId"])
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/checkout", map[string]any{
		"date":          "Today",
		"paymentMethod": "Cash",
		"lines":         []map[string]any{{"treatmentId": "t-aroma", "email": "not-an-email"}},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid line, got %d", rec.Code)
	}
	fields := decodeBody(t, rec)["fields"].(map[string]any)
	if fields["CheckoutRequest.Lines[0].Name"] != "required" {
		t.Fatalf("expected name field error, got %v", fields)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/checkout", map[string]any{"date": "Today", "unknown": true})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestClientSyncAndLoyalty(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/clients/sync", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	report := decodeBody(t, rec)["report"].(map[string]any)
	if report["updatedClients"] != float64(1) || report["creditedVouchers"] != float64(1) {
		t.Fatalf("unexpected sync report %v", report)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/clients/somchai@example.com/loyalty", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	summary := decodeBody(t, rec)
	if summary["spend"] != float64(3000) {
		t.Fatalf("expected spend 3000, got %v", summary["spend"])
	}
	if tier := summary["tier"].(map[string]any); tier["tierName"] != "Seeker" || tier["nextTierName"] != "Initiate" {
		t.Fatalf("unexpected tier %v", tier)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/clients/ghost@example.com/loyalty", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/clients", map[string]any{"name": "Somchai", "email": "SOMCHAI@example.com"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate member, got %d", rec.Code)
	}
}

func TestPayrollEndpoints(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/payroll/2025-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	summary := decodeBody(t, rec)["summary"].(map[string]any)
	if summary["totalRevenue"] != float64(1800) {
		t.Fatalf("expected revenue 1800, got %v", summary["totalRevenue"])
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/payroll/2025-01/export.xlsx", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != contentTypeXLSX {
		t.Fatalf("expected xlsx download, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/payroll/2025-01/payslips/st-nok", nil)
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf payslip, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/payroll/January", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad month, got %d", rec.Code)
	}
}

func TestStaffAndSettings(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/staff", map[string]any{"name": "Pim", "commissionRate": 1.5})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for commission above 1, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/staff/st-lek", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if staff := decodeBody(t, rec)["staff"].(map[string]any); staff["active"] != false {
		t.Fatalf("expected soft delete, got %v", staff)
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/settings/outsource-rate", map[string]any{"rate": 350})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/settings/outsource-rate", nil)
	if body := decodeBody(t, rec); body["rate"] != float64(350) {
		t.Fatalf("expected rate 350, got %v", body["rate"])
	}
}

func TestExpensesAndDailyClosing(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/expenses", map[string]any{"month": "2025-01", "title": "Rent", "amount": 20000})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	id := decodeBody(t, rec)["expense"].(map[string]any)["id"].(string)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/expenses?month=2025-01", nil)
	if expenses := decodeBody(t, rec)["expenses"].([]any); len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}

	if rec := doJSON(t, handler, http.MethodDelete, "/api/v1/expenses/"+id, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodDelete, "/api/v1/expenses/"+id, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/daily-closing?date=2025-01-10", nil)
	if body := decodeBody(t, rec); body["cash"] != float64(1800) {
		t.Fatalf("expected 1800 cash, got %v", body["cash"])
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/daily-closing?date=2025-01-10&format=text", nil)
	if !strings.Contains(rec.Body.String(), "2025-01-10") {
		t.Fatalf("expected closing text to carry the date, got %q", rec.Body.String())
	}
}

func TestTiersEndpoint(t *testing.T) {
	handler := newTestAPI(t)
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/tiers", nil)
	tiers := decodeBody(t, rec)["tiers"].([]any)
	if len(tiers) != 5 {
		t.Fatalf("expected 5 default tiers, got %d", len(tiers))
	}
}
