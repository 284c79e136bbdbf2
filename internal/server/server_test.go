package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	billingrepo "github.com/watchline/watchline/internal/billing/repository"
	billingservice "github.com/watchline/watchline/internal/billing/service"
	clientrepo "github.com/watchline/watchline/internal/client/repository"
	clientservice "github.com/watchline/watchline/internal/client/service"
	"github.com/watchline/watchline/internal/clock"
	"github.com/watchline/watchline/internal/config"
	referencerepo "github.com/watchline/watchline/internal/reference/repository"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func newTestServer(t *testing.T) (*Server, *gorm.DB, *snowflake.Node) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), testDBSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS zones (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sites (
			id BIGINT PRIMARY KEY,
			zone_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			address TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			contact_name TEXT,
			contact_phone TEXT,
			monthly_rate NUMERIC NOT NULL DEFAULT 0,
			billing_start_date TIMESTAMP,
			contract_start_date TIMESTAMP,
			contract_end_date TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS client_sites (
			client_id BIGINT NOT NULL,
			site_id BIGINT NOT NULL,
			PRIMARY KEY (client_id, site_id)
		)`,
		`CREATE TABLE IF NOT EXISTS payment_records (
			id BIGINT PRIMARY KEY,
			client_id BIGINT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			amount_due NUMERIC NOT NULL DEFAULT 0,
			amount_paid NUMERIC NOT NULL DEFAULT 0,
			prepaid_amount NUMERIC NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_payment_cell ON payment_records (client_id, year, month)`,
	}
	for _, stmt := range ddl {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	log := zaptest.NewLogger(t)
	clk := clock.NewFakeClock(time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC))

	clientSvc := clientservice.New(clientservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  clientrepo.Provide(),
	})
	billingSvc := billingservice.New(billingservice.Params{
		DB:         conn,
		Log:        log,
		GenID:      node,
		Clock:      clk,
		Repo:       billingrepo.Provide(),
		BillingCfg: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{},
		DB:         conn,
		ClientSvc:  clientSvc,
		BillingSvc: billingSvc,
		Refrepo:    referencerepo.Provide(),
	})
	srv.RegisterAPIRoutes()
	return srv, conn, node
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	return w
}

func TestClientCRUDOverHTTP(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/clients", `{
		"name": "Acme Warehousing",
		"monthly_rate": "150.00",
		"billing_start_date": "2024-01-01"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" || created.Name != "Acme Warehousing" {
		t.Fatalf("unexpected create response: %s", w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/api/v1/clients/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodPatch, "/api/v1/clients/"+created.ID, `{"name": "Acme East"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodDelete, "/api/v1/clients/"+created.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/v1/clients/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", w.Code)
	}
}

func TestReconciliationEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/clients", `{
		"name": "Harbor Logistics",
		"monthly_rate": "100.00",
		"billing_start_date": "2024-01-01"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/v1/billing/reconciliation?year=2024", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reconciliation status = %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Year    int `json:"year"`
		Overall struct {
			TotalClients int    `json:"total_clients"`
			TotalDue     string `json:"total_due"`
		} `json:"overall_summary"`
		Sites []json.RawMessage `json:"sites"`
		Zones []json.RawMessage `json:"zones"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Year != 2024 {
		t.Fatalf("year = %d", body.Year)
	}
	if body.Overall.TotalClients != 1 {
		t.Fatalf("total clients = %d, want 1", body.Overall.TotalClients)
	}
	// Jan through June at 100 each.
	if body.Overall.TotalDue != "600" {
		t.Fatalf("total due = %s, want 600", body.Overall.TotalDue)
	}
	if body.Sites == nil || body.Zones == nil {
		t.Fatal("reference lists must always be present")
	}
}

func TestReconciliationRejectsBadYear(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/billing/reconciliation?year=1900", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_year") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestToggleEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/clients", `{
		"name": "Northside Mall",
		"monthly_rate": "200.00",
		"billing_start_date": "2024-01-01"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	payload := fmt.Sprintf(`{"client_id": %q, "year": 2024, "month": 3}`, created.ID)
	w = doJSON(t, srv, http.MethodPost, "/api/v1/billing/payments/toggle", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, body %s", w.Code, w.Body.String())
	}

	var toggled struct {
		Record struct {
			Paid       bool   `json:"paid"`
			AmountPaid string `json:"amount_paid"`
		} `json:"record"`
		Delinquent bool `json:"delinquent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &toggled); err != nil {
		t.Fatalf("decode toggle response: %v", err)
	}
	if !toggled.Record.Paid {
		t.Fatal("first toggle should pay the month")
	}
	if toggled.Record.AmountPaid != "200" {
		t.Fatalf("amount paid = %s, want 200", toggled.Record.AmountPaid)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/v1/billing/payments/toggle",
		`{"client_id": "999999999999999999", "year": 2024, "month": 3}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown client status = %d, want 404", w.Code)
	}
}
