package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Zone is a patrol zone grouping one or more guarded sites.
type Zone struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Site is a guarded location; its zone is the coverage pre-filter unit.
type Site struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ZoneID    snowflake.ID `gorm:"not null;index" json:"zone_id"`
	Name      string       `gorm:"not null" json:"name"`
	Address   string       `json:"address,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type Repository interface {
	ListSites(ctx context.Context, db *gorm.DB) ([]Site, error)
	ListZones(ctx context.Context, db *gorm.DB) ([]Zone, error)
	FindSiteByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Site, error)
}
