package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/watchline/watchline/internal/billing/repository"
	"github.com/watchline/watchline/internal/clock"
	"github.com/watchline/watchline/internal/config"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A unique name per open keeps pooled connections on one database
	// without sharing state across tests.
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
	return conn
}

func newTestService(t *testing.T, now time.Time, cfg config.BillingConfig) (*Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	conn := newTestDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(now)

	svc := &Service{
		db:         conn,
		log:        zaptest.NewLogger(t),
		genID:      node,
		clock:      fake,
		repo:       repository.Provide(),
		billingCfg: config.NewStaticBillingConfigHolder(cfg),
	}
	return svc, conn, node, fake
}

func seedClient(t *testing.T, conn *gorm.DB, node *snowflake.Node, name string, rate string, billingStart *time.Time, createdAt time.Time) snowflake.ID {
	t.Helper()

	id := node.Generate()
	monthly, err := decimal.NewFromString(rate)
	if err != nil {
		t.Fatalf("bad rate %q: %v", rate, err)
	}
	err = conn.Exec(`INSERT INTO clients
		(id, name, monthly_rate, billing_start_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id.Int64(), name, monthly, billingStart, createdAt, createdAt).Error
	if err != nil {
		t.Fatalf("failed to seed client %s: %v", name, err)
	}
	return id
}

func seedPayment(t *testing.T, conn *gorm.DB, node *snowflake.Node, clientID snowflake.ID, year, month int, paid bool, amountDue, amountPaid string, at time.Time) {
	t.Helper()

	due, err := decimal.NewFromString(amountDue)
	if err != nil {
		t.Fatalf("bad due %q: %v", amountDue, err)
	}
	paidAmount, err := decimal.NewFromString(amountPaid)
	if err != nil {
		t.Fatalf("bad paid %q: %v", amountPaid, err)
	}
	err = conn.Exec(`INSERT INTO payment_records
		(id, client_id, year, month, paid, amount_due, amount_paid, prepaid_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		node.Generate().Int64(), clientID.Int64(), year, month, paid, due, paidAmount, at, at).Error
	if err != nil {
		t.Fatalf("failed to seed payment %d/%d: %v", year, month, err)
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}
