package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	referencedomain "github.com/watchline/watchline/internal/reference/domain"
	"gorm.io/gorm"
)

const (
	defaultZoneName = "Central"
	defaultSiteName = "Head Office"
)

// EnsureDefaults seeds a default zone and site so a fresh install can
// assign clients immediately. Idempotent.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		zone, err := ensureZoneTx(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensureSiteTx(ctx, tx, node, zone.ID)
	})
}

func ensureZoneTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (referencedomain.Zone, error) {
	var zone referencedomain.Zone
	err := tx.WithContext(ctx).
		Where("name = ?", defaultZoneName).
		Limit(1).
		Find(&zone).Error
	if err != nil {
		return referencedomain.Zone{}, err
	}
	if zone.ID != 0 {
		return zone, nil
	}

	zone = referencedomain.Zone{
		ID:        node.Generate(),
		Name:      defaultZoneName,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&zone).Error; err != nil {
		return referencedomain.Zone{}, err
	}
	return zone, nil
}

func ensureSiteTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, zoneID snowflake.ID) error {
	var site referencedomain.Site
	err := tx.WithContext(ctx).
		Where("name = ?", defaultSiteName).
		Limit(1).
		Find(&site).Error
	if err != nil {
		return err
	}
	if site.ID != 0 {
		return nil
	}

	return tx.WithContext(ctx).Create(&referencedomain.Site{
		ID:        node.Generate(),
		ZoneID:    zoneID,
		Name:      defaultSiteName,
		CreatedAt: time.Now().UTC(),
	}).Error
}
