package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/watchline/watchline/internal/billing/domain"
	clientdomain "github.com/watchline/watchline/internal/client/domain"
	"github.com/watchline/watchline/internal/clock"
	"github.com/watchline/watchline/internal/config"
	obsmetrics "github.com/watchline/watchline/internal/observability/metrics"
	"github.com/watchline/watchline/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	BillingCfg *config.BillingConfigHolder
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	billingCfg *config.BillingConfigHolder
	metrics    *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("billing.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		billingCfg: p.BillingCfg,
		metrics:    p.Metrics,
	}
}

// Reconcile computes the full reconciliation view: stream-and-fold every
// matching client, then filter/sort/paginate the derived summaries and
// hydrate only the requested page.
func (s *Service) Reconcile(ctx context.Context, req domain.ReconciliationRequest) (domain.ReconciliationResponse, error) {
	cfg := s.billingCfg.Get()
	now := s.clock.Now()
	started := now

	req, filter, err := s.normalizeRequest(req, cfg, now)
	if err != nil {
		return domain.ReconciliationResponse{}, err
	}

	agg, err := s.runPipeline(ctx, filter, req.Year, now, cfg.ChunkSize, cfg.DelinquencyThreshold)
	if err != nil {
		return domain.ReconciliationResponse{}, err
	}

	ids := filterByStatus(agg.order, agg.summaries, req.Status)
	sortIDs(ids, agg.lites, agg.summaries, req.SortField, req.SortDirection)

	page := pagination.Pagination{Page: req.Page, PerPage: req.PerPage}
	low, high := page.Bounds(len(ids))
	pageIDs := ids[low:high]

	clients, err := s.repo.FindClientsByIDs(ctx, s.db, pageIDs)
	if err != nil {
		return domain.ReconciliationResponse{}, err
	}

	payments, err := s.pagePayments(ctx, req.Year, pageIDs, agg, now)
	if err != nil {
		return domain.ReconciliationResponse{}, err
	}

	flags := make(map[string]bool, len(agg.flags))
	for id, delinquent := range agg.flags {
		flags[id.String()] = delinquent
	}
	summaries := make(map[string]domain.ClientSummary, len(agg.summaries))
	for id, summary := range agg.summaries {
		summaries[id.String()] = summary
	}

	s.metrics.RecordReconciliation(ctx, time.Since(started), len(agg.order))

	return domain.ReconciliationResponse{
		Year:      req.Year,
		Clients:   clients,
		PageInfo:  page.Info(len(ids)),
		Payments:  payments,
		Flags:     flags,
		Summaries: summaries,
		Overall:   agg.overallSummary(cfg.TopOverdueLimit),
		Filters: domain.ReconciliationFilters{
			Year:          req.Year,
			Search:        req.Search,
			SiteID:        req.SiteID,
			ZoneID:        req.ZoneID,
			Status:        req.Status,
			SortField:     req.SortField,
			SortDirection: req.SortDirection,
		},
	}, nil
}

// pagePayments refetches payment rows for just the page's clients and
// rebuilds their detail ledgers.
func (s *Service) pagePayments(ctx context.Context, year int, pageIDs []snowflake.ID, agg *aggregate, now time.Time) (map[string]map[int]domain.PaymentCell, error) {
	payments := make(map[string]map[int]domain.PaymentCell, len(pageIDs))
	if len(pageIDs) == 0 {
		return payments, nil
	}

	records, err := s.repo.ListPayments(ctx, s.db, year, pageIDs)
	if err != nil {
		return nil, err
	}
	byClient := make(map[snowflake.ID][]domain.PaymentRecord, len(pageIDs))
	for _, record := range records {
		byClient[record.ClientID] = append(byClient[record.ClientID], record)
	}

	for _, id := range pageIDs {
		lite, ok := agg.lites[id]
		if !ok {
			continue
		}
		start, end := ResolveWindow(lite)
		ledger := BuildLedger(lite, start, end, year, byClient[id], now)

		cells := make(map[int]domain.PaymentCell, len(ledger.Cells))
		for month, cell := range ledger.Cells {
			cells[month] = domain.PaymentCell{
				Paid:       cell.Paid,
				AmountDue:  cell.Due.StringFixed(2),
				AmountPaid: cell.PaidAmount.StringFixed(2),
			}
		}
		payments[id.String()] = cells
	}
	return payments, nil
}

func (s *Service) normalizeRequest(req domain.ReconciliationRequest, cfg config.BillingConfig, now time.Time) (domain.ReconciliationRequest, clientdomain.ListClientFilter, error) {
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if req.Year < cfg.MinYear || req.Year > cfg.MaxYear {
		return req, clientdomain.ListClientFilter{}, domain.ErrInvalidYear
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = cfg.DefaultPerPage
	}

	switch req.SortField {
	case "":
		req.SortField = domain.SortByName
	case domain.SortByName, domain.SortByExpected, domain.SortByOutstanding:
	default:
		return req, clientdomain.ListClientFilter{}, domain.ErrInvalidSort
	}

	switch req.SortDirection {
	case "":
		req.SortDirection = domain.SortAsc
	case domain.SortAsc, domain.SortDesc:
	default:
		return req, clientdomain.ListClientFilter{}, domain.ErrInvalidSort
	}

	switch req.Status {
	case "":
		req.Status = domain.StatusAll
	case domain.StatusAll, domain.StatusLate, domain.StatusPaid:
	default:
		return req, clientdomain.ListClientFilter{}, domain.ErrInvalidStatus
	}

	filter := clientdomain.ListClientFilter{Search: strings.TrimSpace(req.Search)}

	if trimmed := strings.TrimSpace(req.SiteID); trimmed != "" {
		id, err := snowflake.ParseString(trimmed)
		if err != nil || id == 0 {
			return req, clientdomain.ListClientFilter{}, domain.ErrInvalidSite
		}
		filter.SiteID = &id
	}
	if trimmed := strings.TrimSpace(req.ZoneID); trimmed != "" {
		id, err := snowflake.ParseString(trimmed)
		if err != nil || id == 0 {
			return req, clientdomain.ListClientFilter{}, domain.ErrInvalidZone
		}
		filter.ZoneID = &id
	}

	return req, filter, nil
}
