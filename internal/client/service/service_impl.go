package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/watchline/watchline/internal/client/domain"
	"github.com/watchline/watchline/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}
	if req.MonthlyRate.IsNegative() {
		return domain.Client{}, domain.ErrInvalidRate
	}

	siteIDs, err := s.parseIDs(req.SiteIDs)
	if err != nil {
		return domain.Client{}, err
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:                s.genID.Generate(),
		Name:              name,
		ContactName:       strings.TrimSpace(req.ContactName),
		ContactPhone:      strings.TrimSpace(req.ContactPhone),
		MonthlyRate:       req.MonthlyRate.Round(2),
		BillingStartDate:  req.BillingStartDate,
		ContractStartDate: req.ContractStartDate,
		ContractEndDate:   req.ContractEndDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}
	if len(siteIDs) > 0 {
		if err := s.repo.ReplaceSites(ctx, s.db, &client, siteIDs); err != nil {
			return domain.Client{}, err
		}
	}

	return client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	filter := domain.ListClientFilter{Search: strings.TrimSpace(req.Search)}

	siteID, err := s.parseOptionalID(req.SiteID)
	if err != nil {
		return domain.ListClientResponse{}, err
	}
	filter.SiteID = siteID

	zoneID, err := s.parseOptionalID(req.ZoneID)
	if err != nil {
		return domain.ListClientResponse{}, err
	}
	filter.ZoneID = zoneID

	page := req.Pagination.Normalize(20)
	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}

	return domain.ListClientResponse{
		PageInfo: page.Info(total),
		Clients:  clients,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetClientRequest) (domain.Client, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.ContactName != nil {
		item.ContactName = strings.TrimSpace(*req.ContactName)
	}
	if req.ContactPhone != nil {
		item.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.MonthlyRate != nil {
		if req.MonthlyRate.IsNegative() {
			return domain.Client{}, domain.ErrInvalidRate
		}
		item.MonthlyRate = req.MonthlyRate.Round(2)
	}
	if req.BillingStartDate != nil {
		item.BillingStartDate = req.BillingStartDate
	}
	if req.ContractStartDate != nil {
		item.ContractStartDate = req.ContractStartDate
	}
	if req.ContractEndDate != nil {
		item.ContractEndDate = req.ContractEndDate
	}
	item.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Client{}, err
	}

	if req.SiteIDs != nil {
		siteIDs, err := s.parseIDs(req.SiteIDs)
		if err != nil {
			return domain.Client{}, err
		}
		if err := s.repo.ReplaceSites(ctx, s.db, item, siteIDs); err != nil {
			return domain.Client{}, err
		}
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetClientRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func (s *Service) parseOptionalID(value string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	id, err := s.parseID(trimmed)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *Service) parseIDs(values []string) ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(values))
	for _, value := range values {
		id, err := s.parseID(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
