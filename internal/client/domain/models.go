package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	referencedomain "github.com/watchline/watchline/internal/reference/domain"
)

// Client is a guarded-services customer. The date trio drives the billing
// window: billing_start_date wins, then contract_start_date, then the
// record's creation date.
type Client struct {
	ID                snowflake.ID           `gorm:"primaryKey" json:"id"`
	Name              string                 `gorm:"not null" json:"name"`
	ContactName       string                 `json:"contact_name,omitempty"`
	ContactPhone      string                 `json:"contact_phone,omitempty"`
	MonthlyRate       decimal.Decimal        `gorm:"type:numeric(12,2);not null" json:"monthly_rate"`
	BillingStartDate  *time.Time             `json:"billing_start_date,omitempty"`
	ContractStartDate *time.Time             `json:"contract_start_date,omitempty"`
	ContractEndDate   *time.Time             `json:"contract_end_date,omitempty"`
	Sites             []referencedomain.Site `gorm:"many2many:client_sites" json:"sites,omitempty"`
	CreatedAt         time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
