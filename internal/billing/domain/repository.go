package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/watchline/watchline/internal/client/domain"
	"gorm.io/gorm"
)

// Repository exposes exactly the batched operations the aggregation
// pipeline needs. No per-row lazy loading happens behind these calls.
type Repository interface {
	// ListClients returns up to limit clients with id > afterID, id-ordered,
	// matching the search/site/zone pre-filter. Only the lightweight columns
	// are selected.
	ListClients(ctx context.Context, db *gorm.DB, filter clientdomain.ListClientFilter, afterID snowflake.ID, limit int) ([]ClientLite, error)

	// ListPayments fetches one year's payment rows for a batch of clients
	// in a single query.
	ListPayments(ctx context.Context, db *gorm.DB, year int, clientIDs []snowflake.ID) ([]PaymentRecord, error)

	// FindClientsByIDs hydrates full client rows (with sites) for the
	// current page, preserving the order of ids.
	FindClientsByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]clientdomain.Client, error)

	// FindClientByID loads one client without relations, nil when absent.
	FindClientByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*clientdomain.Client, error)

	// EnsurePayment inserts the record if its (client, year, month) cell is
	// vacant and returns the winning row either way. Safe under concurrent
	// first-time toggles.
	EnsurePayment(ctx context.Context, db *gorm.DB, record *PaymentRecord) (*PaymentRecord, error)

	// UpdatePayment persists a toggled cell.
	UpdatePayment(ctx context.Context, db *gorm.DB, record *PaymentRecord) error
}
