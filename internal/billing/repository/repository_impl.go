package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/watchline/watchline/internal/billing/domain"
	clientdomain "github.com/watchline/watchline/internal/client/domain"
	"github.com/watchline/watchline/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListClients(ctx context.Context, conn *gorm.DB, filter clientdomain.ListClientFilter, afterID snowflake.ID, limit int) ([]domain.ClientLite, error) {
	stmt := conn.WithContext(ctx).
		Table("clients").
		Select("clients.id, clients.name, clients.monthly_rate, clients.billing_start_date, clients.contract_start_date, clients.contract_end_date, clients.created_at").
		Where("clients.id > ?", afterID)

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

	var clients []domain.ClientLite
	err := stmt.
		Distinct().
		Order("clients.id asc").
		Limit(limit).
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) ListPayments(ctx context.Context, conn *gorm.DB, year int, clientIDs []snowflake.ID) ([]domain.PaymentRecord, error) {
	if len(clientIDs) == 0 {
		return nil, nil
	}
	var records []domain.PaymentRecord
	err := conn.WithContext(ctx).
		Model(&domain.PaymentRecord{}).
		Where("year = ?", year).
		Where("client_id IN ?", clientIDs).
		Order("client_id asc, month asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) FindClientsByIDs(ctx context.Context, conn *gorm.DB, ids []snowflake.ID) ([]clientdomain.Client, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var clients []clientdomain.Client
	err := conn.WithContext(ctx).
		Preload("Sites").
		Where("id IN ?", ids).
		Find(&clients).Error
	if err != nil {
		return nil, err
	}

	// Database order is undefined; restore the caller's sort order.
	byID := make(map[snowflake.ID]clientdomain.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	ordered := make([]clientdomain.Client, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (r *repo) FindClientByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*clientdomain.Client, error) {
	var client clientdomain.Client
	err := conn.WithContext(ctx).
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

func (r *repo) EnsurePayment(ctx context.Context, conn *gorm.DB, record *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	err := conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}, {Name: "year"}, {Name: "month"}},
			DoNothing: true,
		}).
		Create(record).Error
	if err != nil && !db.IsDuplicateKeyErr(err) {
		return nil, err
	}

	// Re-read so both sides of a creation race observe the same row.
	var winner domain.PaymentRecord
	err = conn.WithContext(ctx).
		Where("client_id = ? AND year = ? AND month = ?", record.ClientID, record.Year, record.Month).
		Limit(1).
		Find(&winner).Error
	if err != nil {
		return nil, err
	}
	return &winner, nil
}

func (r *repo) UpdatePayment(ctx context.Context, conn *gorm.DB, record *domain.PaymentRecord) error {
	return conn.WithContext(ctx).
		Model(&domain.PaymentRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"paid":        record.Paid,
			"amount_due":  record.AmountDue,
			"amount_paid": record.AmountPaid,
			"updated_at":  record.UpdatedAt,
		}).Error
}
