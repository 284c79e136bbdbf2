package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/watchline/watchline/internal/billing/domain"
	clientdomain "github.com/watchline/watchline/internal/client/domain"
	"go.uber.org/zap"
)

// aggregate is the fold state of one listing computation. Memory here is
// proportional to the client count (small per-client summaries), never to
// client count x 12 payment rows: each chunk's rows are dropped once folded.
type aggregate struct {
	order     []snowflake.ID
	lites     map[snowflake.ID]domain.ClientLite
	summaries map[snowflake.ID]domain.ClientSummary
	flags     map[snowflake.ID]bool

	totalDue               decimal.Decimal
	totalPaid              decimal.Decimal
	clientsWithOutstanding int
	maxOutstandingMonths   int
	overdue                []domain.OverdueClient
}

func newAggregate() *aggregate {
	return &aggregate{
		lites:     make(map[snowflake.ID]domain.ClientLite),
		summaries: make(map[snowflake.ID]domain.ClientSummary),
		flags:     make(map[snowflake.ID]bool),
		totalDue:  decimal.Zero,
		totalPaid: decimal.Zero,
	}
}

// runPipeline streams all matching clients in id-ordered chunks, evaluates
// each client's year, and folds the results. A chunk fetch failure aborts
// the whole listing; a single client that cannot be evaluated is logged and
// folded in as neutral.
func (s *Service) runPipeline(ctx context.Context, filter clientdomain.ListClientFilter, year int, now time.Time, chunkSize, threshold int) (*aggregate, error) {
	agg := newAggregate()

	var afterID snowflake.ID
	for {
		batch, err := s.repo.ListClients(ctx, s.db, filter, afterID, chunkSize)
		if err != nil {
			return nil, fmt.Errorf("list clients after %d: %w", afterID, err)
		}
		if len(batch) == 0 {
			break
		}

		ids := make([]snowflake.ID, len(batch))
		for i, lite := range batch {
			ids[i] = lite.ID
		}

		records, err := s.repo.ListPayments(ctx, s.db, year, ids)
		if err != nil {
			return nil, fmt.Errorf("list payments for %d clients: %w", len(ids), err)
		}
		byClient := make(map[snowflake.ID][]domain.PaymentRecord, len(batch))
		for _, record := range records {
			byClient[record.ClientID] = append(byClient[record.ClientID], record)
		}

		for _, lite := range batch {
			s.foldClient(agg, lite, byClient[lite.ID], year, now, threshold)
		}

		afterID = batch[len(batch)-1].ID
		if len(batch) < chunkSize {
			break
		}
	}

	sort.SliceStable(agg.overdue, func(i, j int) bool {
		return agg.overdue[i].Outstanding.GreaterThan(agg.overdue[j].Outstanding)
	})
	return agg, nil
}

func (s *Service) foldClient(agg *aggregate, lite domain.ClientLite, records []domain.PaymentRecord, year int, now time.Time, threshold int) {
	agg.order = append(agg.order, lite.ID)
	agg.lites[lite.ID] = lite

	if lite.ID == 0 || lite.MonthlyRate.IsNegative() {
		// Malformed row; keep the listing alive with a neutral summary.
		s.log.Warn("skipping unevaluable client",
			zap.String("client_id", lite.ID.String()),
			zap.Int("year", year),
		)
		agg.summaries[lite.ID] = domain.ClientSummary{
			ExpectedAmount:    decimal.Zero,
			TotalPaid:         decimal.Zero,
			OutstandingAmount: decimal.Zero,
		}
		agg.flags[lite.ID] = false
		return
	}

	start, end := ResolveWindow(lite)
	ledger := BuildLedger(lite, start, end, year, records, now)
	summary := summaryFromLedger(ledger, start)
	delinquent := Delinquent(ledger.UnpaidCount, threshold)

	agg.summaries[lite.ID] = summary
	agg.flags[lite.ID] = delinquent

	agg.totalDue = agg.totalDue.Add(ledger.TotalDue)
	agg.totalPaid = agg.totalPaid.Add(ledger.TotalPaid)
	if ledger.Outstanding.IsPositive() {
		agg.clientsWithOutstanding++
	}
	if ledger.UnpaidCount > agg.maxOutstandingMonths {
		agg.maxOutstandingMonths = ledger.UnpaidCount
	}
	if delinquent && ledger.Outstanding.IsPositive() {
		agg.overdue = append(agg.overdue, domain.OverdueClient{
			ClientID:    lite.ID,
			Name:        lite.Name,
			Outstanding: ledger.Outstanding,
			Months:      ledger.UnpaidCount,
		})
	}
}

// overallSummary finalizes the cross-client aggregate.
func (agg *aggregate) overallSummary(topLimit int) domain.OverallSummary {
	collectionRate := 0.0
	if agg.totalDue.IsPositive() {
		collectionRate, _ = agg.totalPaid.Div(agg.totalDue).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}

	top := agg.overdue
	if len(top) > topLimit {
		top = top[:topLimit]
	}
	topOut := make([]domain.OverdueClient, len(top))
	copy(topOut, top)

	return domain.OverallSummary{
		TotalClients:           len(agg.order),
		ClientsWithOutstanding: agg.clientsWithOutstanding,
		TotalDue:               agg.totalDue.Round(2),
		TotalPaid:              agg.totalPaid.Round(2),
		CollectionRate:         collectionRate,
		MaxOutstandingMonths:   agg.maxOutstandingMonths,
		TopOverdue:             topOut,
	}
}
