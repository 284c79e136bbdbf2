package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/watchline/watchline/internal/reference/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListSites(ctx context.Context, db *gorm.DB) ([]domain.Site, error) {
	var sites []domain.Site
	err := db.WithContext(ctx).
		Model(&domain.Site{}).
		Order("name asc").
		Find(&sites).Error
	if err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *repo) ListZones(ctx context.Context, db *gorm.DB) ([]domain.Zone, error) {
	var zones []domain.Zone
	err := db.WithContext(ctx).
		Model(&domain.Zone{}).
		Order("name asc").
		Find(&zones).Error
	if err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *repo) FindSiteByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Site, error) {
	var site domain.Site
	err := db.WithContext(ctx).Raw(
		`SELECT id, zone_id, name, address, created_at FROM sites WHERE id = ?`,
		id,
	).Scan(&site).Error
	if err != nil {
		return nil, err
	}
	if site.ID == 0 {
		return nil, nil
	}
	return &site, nil
}
