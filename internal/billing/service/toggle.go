package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/watchline/watchline/internal/billing/domain"
	"go.uber.org/zap"
)

// TogglePayment flips one client/year/month cell between paid and unpaid.
// The cell is created on first touch with the rate-derived due; the flip
// never drops a previously edited due amount.
func (s *Service) TogglePayment(ctx context.Context, req domain.ToggleRequest) (domain.ToggleResponse, error) {
	cfg := s.billingCfg.Get()

	if req.Year < cfg.MinYear || req.Year > cfg.MaxYear {
		return domain.ToggleResponse{}, domain.ErrInvalidYear
	}
	if req.Month < 1 || req.Month > 12 {
		return domain.ToggleResponse{}, domain.ErrInvalidMonth
	}
	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return domain.ToggleResponse{}, domain.ErrInvalidClientID
	}

	client, err := s.repo.FindClientByID(ctx, s.db, clientID)
	if err != nil {
		return domain.ToggleResponse{}, err
	}
	if client == nil {
		return domain.ToggleResponse{}, domain.ErrClientNotFound
	}

	lite := domain.ClientLite{
		ID:                client.ID,
		Name:              client.Name,
		MonthlyRate:       client.MonthlyRate,
		BillingStartDate:  client.BillingStartDate,
		ContractStartDate: client.ContractStartDate,
		ContractEndDate:   client.ContractEndDate,
		CreatedAt:         client.CreatedAt,
	}
	start, end := ResolveWindow(lite)

	defaultDue := decimal.Zero
	if inWindow(req.Year, req.Month, start, end) {
		defaultDue = lite.MonthlyRate.Round(2)
	}

	now := s.clock.Now()
	record, err := s.repo.EnsurePayment(ctx, s.db, &domain.PaymentRecord{
		ID:         s.genID.Generate(),
		ClientID:   clientID,
		Year:       req.Year,
		Month:      req.Month,
		Paid:       false,
		AmountDue:  defaultDue,
		AmountPaid: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return domain.ToggleResponse{}, err
	}

	due := record.AmountDue
	if !due.IsPositive() {
		due = defaultDue
	}

	record.Paid = !record.Paid
	record.AmountDue = due
	if record.Paid {
		record.AmountPaid = due
	} else {
		record.AmountPaid = decimal.Zero
	}
	record.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdatePayment(ctx, s.db, record); err != nil {
		return domain.ToggleResponse{}, err
	}
	s.metrics.RecordPaymentToggle(ctx, record.Paid)

	records, err := s.repo.ListPayments(ctx, s.db, req.Year, []snowflake.ID{clientID})
	if err != nil {
		return domain.ToggleResponse{}, err
	}
	ledger := BuildLedger(lite, start, end, req.Year, records, s.clock.Now())

	delinquent := Delinquent(ledger.UnpaidCount, cfg.DelinquencyThreshold)
	if delinquent {
		s.log.Info("client delinquent",
			zap.String("client_id", clientID.String()),
			zap.Int("year", req.Year),
			zap.Int("unpaid_months", ledger.UnpaidCount),
		)
		s.metrics.RecordDelinquentClient(ctx)
	}

	return domain.ToggleResponse{
		Record:      *record,
		UnpaidCount: ledger.UnpaidCount,
		Delinquent:  delinquent,
	}, nil
}
