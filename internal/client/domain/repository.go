package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/watchline/watchline/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListClientFilter struct {
	Search string
	SiteID *snowflake.ID
	ZoneID *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, client *Client) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Client, error)
	List(ctx context.Context, db *gorm.DB, filter ListClientFilter, page pagination.Pagination) ([]*Client, int, error)
	Update(ctx context.Context, db *gorm.DB, client *Client) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ReplaceSites(ctx context.Context, db *gorm.DB, client *Client, siteIDs []snowflake.ID) error
}
