package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/watchline/watchline/pkg/db/pagination"
)

type CreateClientRequest struct {
	Name              string
	ContactName       string
	ContactPhone      string
	MonthlyRate       decimal.Decimal
	BillingStartDate  *time.Time
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
	SiteIDs           []string
}

type UpdateClientRequest struct {
	ID                string
	Name              *string
	ContactName       *string
	ContactPhone      *string
	MonthlyRate       *decimal.Decimal
	BillingStartDate  *time.Time
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
	SiteIDs           []string
}

type ListClientRequest struct {
	pagination.Pagination
	Search string
	SiteID string
	ZoneID string
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type GetClientRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(context.Context, GetClientRequest) (Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
	Delete(context.Context, GetClientRequest) error
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidRate = errors.New("invalid_rate")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
)
