package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/watchline/watchline/internal/client/domain"
	"github.com/watchline/watchline/internal/client/repository"
	"github.com/watchline/watchline/internal/clock"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

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

	svc := &Service{
		db:    conn,
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: clock.NewFakeClock(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)),
		repo:  repository.Provide(),
	}
	return svc, conn, node
}

func TestCreateClientValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: "   "})
	if err != domain.ErrInvalidName {
		t.Fatalf("blank name: expected ErrInvalidName, got %v", err)
	}

	_, err = svc.Create(ctx, domain.CreateClientRequest{
		Name:        "Acme",
		MonthlyRate: decimal.NewFromInt(-10),
	})
	if err != domain.ErrInvalidRate {
		t.Fatalf("negative rate: expected ErrInvalidRate, got %v", err)
	}

	_, err = svc.Create(ctx, domain.CreateClientRequest{
		Name:    "Acme",
		SiteIDs: []string{"not-an-id"},
	})
	if err != domain.ErrInvalidID {
		t.Fatalf("bad site id: expected ErrInvalidID, got %v", err)
	}
}

func TestCreateClientRoundsRate(t *testing.T) {
	svc, _, _ := newTestService(t)

	rate, _ := decimal.NewFromString("99.999")
	created, err := svc.Create(context.Background(), domain.CreateClientRequest{
		Name:        "  Acme Warehousing  ",
		MonthlyRate: rate,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Name != "Acme Warehousing" {
		t.Fatalf("name should be trimmed, got %q", created.Name)
	}
	if got := created.MonthlyRate.String(); got != "100" {
		t.Fatalf("rate = %s, want rounded 100", got)
	}
	if created.ID == 0 {
		t.Fatal("expected generated id")
	}
}

func TestGetUpdateDeleteLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateClientRequest{
		Name:        "Harbor Logistics",
		MonthlyRate: decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fetched, err := svc.GetByID(ctx, domain.GetClientRequest{ID: created.ID.String()})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Name != "Harbor Logistics" {
		t.Fatalf("fetched name = %q", fetched.Name)
	}

	newName := "Harbor Logistics East"
	newRate := decimal.NewFromInt(250)
	updated, err := svc.Update(ctx, domain.UpdateClientRequest{
		ID:          created.ID.String(),
		Name:        &newName,
		MonthlyRate: &newRate,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("updated name = %q", updated.Name)
	}
	if !updated.MonthlyRate.Equal(newRate) {
		t.Fatalf("updated rate = %s", updated.MonthlyRate)
	}

	if err := svc.Delete(ctx, domain.GetClientRequest{ID: created.ID.String()}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, domain.GetClientRequest{ID: created.ID.String()}); err != domain.ErrNotFound {
		t.Fatalf("get after delete: expected ErrNotFound, got %v", err)
	}
}

func TestGetByIDUnknownClient(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.GetByID(context.Background(), domain.GetClientRequest{ID: node.Generate().String()})
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = svc.GetByID(context.Background(), domain.GetClientRequest{ID: "garbage"})
	if err != domain.ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestListClientsSearchAndPagination(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("Harbor Site %d", i)
		if i%2 == 1 {
			name = fmt.Sprintf("Mall Unit %d", i)
		}
		if _, err := svc.Create(ctx, domain.CreateClientRequest{
			Name:        name,
			MonthlyRate: decimal.NewFromInt(100),
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	resp, err := svc.List(ctx, domain.ListClientRequest{Search: "harbor"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("search total = %d, want 3", resp.Total)
	}

	req := domain.ListClientRequest{}
	req.Page = 2
	req.PerPage = 2
	resp, err = svc.List(ctx, req)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if resp.Total != 5 {
		t.Fatalf("total = %d, want 5", resp.Total)
	}
	if len(resp.Clients) != 2 {
		t.Fatalf("page 2 size = %d, want 2", len(resp.Clients))
	}
	if resp.TotalPages != 3 {
		t.Fatalf("total pages = %d, want 3", resp.TotalPages)
	}
}

func TestDeleteRemovesPaymentRows(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateClientRequest{
		Name:        "Doomed",
		MonthlyRate: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()
	err = conn.Exec(`INSERT INTO payment_records
		(id, client_id, year, month, paid, amount_due, amount_paid, prepaid_amount, created_at, updated_at)
		VALUES (?, ?, 2024, 1, TRUE, 100, 100, 0, ?, ?)`,
		node.Generate().Int64(), created.ID.Int64(), now, now).Error
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	if err := svc.Delete(ctx, domain.GetClientRequest{ID: created.ID.String()}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	conn.Table("payment_records").Where("client_id = ?", created.ID).Count(&count)
	if count != 0 {
		t.Fatalf("payment rows survived the delete: %d", count)
	}
}
