package domain

import (
	"context"
	"errors"

	clientdomain "github.com/watchline/watchline/internal/client/domain"
	"github.com/watchline/watchline/pkg/db/pagination"
)

type SortField string

const (
	SortByName        SortField = "name"
	SortByExpected    SortField = "expected_amount"
	SortByOutstanding SortField = "outstanding_amount"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type StatusFilter string

const (
	StatusAll  StatusFilter = "all"
	StatusLate StatusFilter = "late"
	StatusPaid StatusFilter = "paid"
)

type ReconciliationRequest struct {
	Year          int
	Page          int
	PerPage       int
	SortField     SortField
	SortDirection SortDirection
	Search        string
	SiteID        string
	ZoneID        string
	Status        StatusFilter
}

// PaymentCell is the wire shape of one month in the page's detail ledgers.
type PaymentCell struct {
	Paid       bool   `json:"paid"`
	AmountDue  string `json:"amount_due"`
	AmountPaid string `json:"amount_paid"`
}

type ReconciliationFilters struct {
	Year          int           `json:"year"`
	Search        string        `json:"search,omitempty"`
	SiteID        string        `json:"site_id,omitempty"`
	ZoneID        string        `json:"zone_id,omitempty"`
	Status        StatusFilter  `json:"status"`
	SortField     SortField     `json:"sort_field"`
	SortDirection SortDirection `json:"sort_direction"`
}

type ReconciliationResponse struct {
	Year      int                               `json:"year"`
	Clients   []clientdomain.Client             `json:"clients"`
	PageInfo  pagination.PageInfo               `json:"page_info"`
	Payments  map[string]map[int]PaymentCell    `json:"payments"`
	Flags     map[string]bool                   `json:"flags"`
	Summaries map[string]ClientSummary          `json:"summaries"`
	Overall   OverallSummary                    `json:"overall_summary"`
	Filters   ReconciliationFilters             `json:"filters"`
}

type ToggleRequest struct {
	ClientID string `json:"client_id"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
}

type ToggleResponse struct {
	Record      PaymentRecord `json:"record"`
	UnpaidCount int           `json:"unpaid_count"`
	Delinquent  bool          `json:"delinquent"`
}

type Service interface {
	Reconcile(context.Context, ReconciliationRequest) (ReconciliationResponse, error)
	TogglePayment(context.Context, ToggleRequest) (ToggleResponse, error)
}

var (
	ErrInvalidYear     = errors.New("invalid_year")
	ErrInvalidMonth    = errors.New("invalid_month")
	ErrInvalidClientID = errors.New("invalid_client_id")
	ErrInvalidSort     = errors.New("invalid_sort")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidSite     = errors.New("invalid_site")
	ErrInvalidZone     = errors.New("invalid_zone")
	ErrClientNotFound  = errors.New("client_not_found")
)
