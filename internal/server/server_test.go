package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go.uber.org/zap"

	"github.com/mokoena/sla-app/internal/db"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.SeedTemplates(gdb)

	ts := httptest.NewServer(New(gdb, zap.NewNop()))
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	return ts, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := c.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func getJSON(t *testing.T, c *http.Client, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealthz(t *testing.T) {
	ts, c := newTestServer(t)
	resp, body := getJSON(t, c, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts, c := newTestServer(t)
	resp, _ := getJSON(t, c, ts.URL+"/clients")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSignupLoginLogout(t *testing.T) {
	ts, c := newTestServer(t)

	resp, _ := postJSON(t, c, ts.URL+"/signup", map[string]any{
		"email": "owner@example.co.za", "password": "secret123", "first_name": "Lerato",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}

	// Duplicate email is rejected.
	resp, _ = postJSON(t, c, ts.URL+"/signup", map[string]any{"email": "owner@example.co.za", "password": "x"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d", resp.StatusCode)
	}

	// Session from signup grants access.
	resp, _ = getJSON(t, c, ts.URL+"/clients")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clients after signup = %d", resp.StatusCode)
	}

	postJSON(t, c, ts.URL+"/logout", nil)
	resp, _ = getJSON(t, c, ts.URL+"/clients")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("clients after logout = %d, want 401", resp.StatusCode)
	}

	resp, _ = postJSON(t, c, ts.URL+"/login", map[string]any{"email": "owner@example.co.za", "password": "secret123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	resp, _ = postJSON(t, c, ts.URL+"/login", map[string]any{"email": "owner@example.co.za", "password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", resp.StatusCode)
	}
}

// End-to-end: setup, client, quote lifecycle, SLA auto-generation, invoice.
func TestQuoteToAgreementFlow(t *testing.T) {
	ts, c := newTestServer(t)

	postJSON(t, c, ts.URL+"/signup", map[string]any{"email": "owner@example.co.za", "password": "secret123"})
	resp, _ := postJSON(t, c, ts.URL+"/setup", map[string]any{
		"trading_name": "Mokoena Digital", "vat_enabled": true, "vat_rate": 0.15,
		"address1": "12 Long Street", "postal_code": "8001", "city": "Cape Town", "country": "ZA",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("setup status = %d", resp.StatusCode)
	}

	resp, clientBody := postJSON(t, c, ts.URL+"/clients", map[string]any{
		"name": "Thandi's Boutique", "email": "thandi@example.co.za",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create client = %d", resp.StatusCode)
	}
	clientID := clientBody["ID"].(float64)

	resp, quoteBody := postJSON(t, c, ts.URL+"/quotes", map[string]any{
		"client_id":       clientID,
		"deposit_percent": 30,
		"items": []map[string]any{
			{"description": "Online store with shopping cart and checkout", "quantity": 1, "unit_price": 80000},
			{"description": "Payment gateway integration", "quantity": 1, "unit_price": 40000},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create quote = %d (%v)", resp.StatusCode, quoteBody)
	}
	quoteID := quoteBody["ID"].(float64)

	// Draft cannot be accepted directly.
	resp, _ = postJSON(t, c, ts.URL+"/quotes/accept", map[string]any{"id": quoteID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("accept draft = %d, want 400", resp.StatusCode)
	}

	resp, _ = postJSON(t, c, ts.URL+"/quotes/send", map[string]any{"id": quoteID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send = %d", resp.StatusCode)
	}
	resp, acceptBody := postJSON(t, c, ts.URL+"/quotes/accept", map[string]any{"id": quoteID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept = %d", resp.StatusCode)
	}
	agreement, ok := acceptBody["agreement"].(map[string]any)
	if !ok {
		t.Fatalf("no agreement auto-generated: %v", acceptBody)
	}
	if agreement["Status"] != "generated" {
		t.Errorf("agreement status = %v", agreement["Status"])
	}

	// Generating again for the same quote conflicts.
	resp, _ = postJSON(t, c, ts.URL+"/agreements/generate", map[string]any{"quote_id": quoteID})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second generate = %d, want 409", resp.StatusCode)
	}

	resp, listBody := getJSON(t, c, ts.URL+fmt.Sprintf("/agreements?quote_id=%.0f", quoteID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list agreements = %d", resp.StatusCode)
	}
	if n := len(listBody["agreements"].([]any)); n != 1 {
		t.Fatalf("agreements = %d, want 1", n)
	}

	// Convert the accepted quote to a deposit invoice.
	resp, invBody := postJSON(t, c, ts.URL+"/quotes/convert", map[string]any{"id": quoteID, "kind": "deposit"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("convert = %d (%v)", resp.StatusCode, invBody)
	}
}

func TestDetectEndpoint(t *testing.T) {
	ts, c := newTestServer(t)
	postJSON(t, c, ts.URL+"/signup", map[string]any{"email": "owner@example.co.za", "password": "secret123"})

	resp, body := postJSON(t, c, ts.URL+"/detect", map[string]any{
		"quote_id":    1,
		"client_name": "Acme",
		"notes":       "workflow automation with crm integration",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detect = %d", resp.StatusCode)
	}
	if body["category"] != "business_process" {
		t.Errorf("category = %v", body["category"])
	}

	// Missing client identity is a validation error.
	resp, _ = postJSON(t, c, ts.URL+"/detect", map[string]any{"quote_id": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("detect without identity = %d, want 400", resp.StatusCode)
	}
}

func TestOpenAPISpecServed(t *testing.T) {
	ts, c := newTestServer(t)
	resp, err := c.Get(ts.URL + "/openapi.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("content type = %s", ct)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	ts, c := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("X-Request-Id", "test-trace-1")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-Id"); got != "test-trace-1" {
		t.Errorf("request id = %q", got)
	}
}
