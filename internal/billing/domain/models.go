package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PaymentRecord is one client/year/month ledger cell. Rows are created
// lazily on the first toggle for a cell and never deleted; the unique
// (client_id, year, month) index backs the concurrent get-or-create.
type PaymentRecord struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	ClientID      snowflake.ID    `gorm:"not null;uniqueIndex:uq_payment_cell,priority:1" json:"client_id"`
	Year          int             `gorm:"not null;uniqueIndex:uq_payment_cell,priority:2" json:"year"`
	Month         int             `gorm:"not null;uniqueIndex:uq_payment_cell,priority:3" json:"month"`
	Paid          bool            `gorm:"not null;default:false" json:"paid"`
	AmountDue     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount_due"`
	AmountPaid    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount_paid"`
	PrepaidAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"prepaid_amount"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// CellSource tags where a ledger cell's due amount came from.
type CellSource int

const (
	// CellComputed means the due was derived from the monthly rate and
	// billing window; no persisted row (or no usable persisted due) exists.
	CellComputed CellSource = iota
	// CellPersisted means a stored payment row supplied the amounts.
	CellPersisted
)

// Cell is one month of a client's evaluated ledger.
type Cell struct {
	Month      int             `json:"month"`
	Due        decimal.Decimal `json:"amount_due"`
	PaidAmount decimal.Decimal `json:"amount_paid"`
	Paid       bool            `json:"paid"`
	Source     CellSource      `json:"-"`
}

// Ledger is a client's evaluated year.
type Ledger struct {
	Cells       map[int]Cell
	TotalDue    decimal.Decimal
	TotalPaid   decimal.Decimal
	Outstanding decimal.Decimal
	UnpaidCount int
}

// ClientSummary is the derived per-client financial snapshot for one year.
// It is recomputed on every listing request and never persisted.
type ClientSummary struct {
	ExpectedAmount    decimal.Decimal `json:"expected_amount"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	OutstandingMonths int             `json:"outstanding_months"`
	BillingStart      time.Time       `json:"billing_start"`
}

// OverdueClient is one entry of the top-overdue ranking.
type OverdueClient struct {
	ClientID    snowflake.ID    `json:"client_id"`
	Name        string          `json:"name"`
	Outstanding decimal.Decimal `json:"outstanding_amount"`
	Months      int             `json:"outstanding_months"`
}

// OverallSummary aggregates the whole filtered client set.
type OverallSummary struct {
	TotalClients           int             `json:"total_clients"`
	ClientsWithOutstanding int             `json:"clients_with_outstanding"`
	TotalDue               decimal.Decimal `json:"total_due"`
	TotalPaid              decimal.Decimal `json:"total_paid"`
	CollectionRate         float64         `json:"collection_rate"`
	MaxOutstandingMonths   int             `json:"max_outstanding_months"`
	TopOverdue             []OverdueClient `json:"top_overdue"`
}

// ClientLite carries just enough of a client to sort and summarize without
// rehydrating the full row.
type ClientLite struct {
	ID                snowflake.ID
	Name              string
	MonthlyRate       decimal.Decimal
	BillingStartDate  *time.Time
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
	CreatedAt         time.Time
}
