package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/watchline/watchline/internal/client/domain"
	referencedomain "github.com/watchline/watchline/internal/reference/domain"
	"github.com/watchline/watchline/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Omit("Sites").Create(client).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).
		Preload("Sites").
		Where("id = ?", id).
		Limit(1).
		Find(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListClientFilter, page pagination.Pagination) ([]*domain.Client, int, error) {
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Client{}), filter)

	var total int64
	if err := stmt.Distinct("clients.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []*domain.Client
	low, _ := page.Bounds(int(total))
	err := applyFilter(db.WithContext(ctx).Model(&domain.Client{}), filter).
		Distinct().
		Preload("Sites").
		Order("clients.name asc, clients.id asc").
		Offset(low).
		Limit(page.PerPage).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, int(total), nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Omit("Sites").Save(client).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM client_sites WHERE client_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM payment_records WHERE client_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM clients WHERE id = ?`, id).Error
	})
}

func (r *repo) ReplaceSites(ctx context.Context, db *gorm.DB, client *domain.Client, siteIDs []snowflake.ID) error {
	sites := make([]referencedomain.Site, 0, len(siteIDs))
	for _, id := range siteIDs {
		sites = append(sites, referencedomain.Site{ID: id})
	}
	return db.WithContext(ctx).Model(client).Association("Sites").Replace(sites)
}

func applyFilter(stmt *gorm.DB, filter domain.ListClientFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		stmt = stmt.Where("LOWER(clients.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.SiteID != nil {
		stmt = stmt.
			Joins("JOIN client_sites ON client_sites.client_id = clients.id").
			Where("client_sites.site_id = ?", *filter.SiteID)
	}
	if filter.ZoneID != nil {
		stmt = stmt.
			Joins("JOIN client_sites cs_zone ON cs_zone.client_id = clients.id").
			Joins("JOIN sites ON sites.id = cs_zone.site_id").
			Where("sites.zone_id = ?", *filter.ZoneID)
	}
	return stmt
}
