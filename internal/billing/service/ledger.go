package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/watchline/watchline/internal/billing/domain"
)

// billingStartMonth is the first month of year the client can be billed:
// 1 when the window opened in a prior year, 13 (no months) when it opens in
// a later year.
func billingStartMonth(start time.Time, year int) int {
	switch {
	case start.Year() < year:
		return 1
	case start.Year() > year:
		return 13
	default:
		return int(start.Month())
	}
}

// limitMonth is the last billable month of year relative to now: full years
// in the past bill all 12 months, future years bill none, and the current
// year bills only through the current month.
func limitMonth(year int, now time.Time) int {
	switch {
	case year < now.Year():
		return 12
	case year > now.Year():
		return 0
	default:
		return int(now.Month())
	}
}

// BuildLedger evaluates one client's year: a cell per billable month plus
// due/paid totals and the unpaid-month count. Months with no stored row are
// unpaid with the rate-derived due; a stored amount_due of exactly zero
// falls back to the computed default.
func BuildLedger(client domain.ClientLite, start time.Time, end *time.Time, year int, records []domain.PaymentRecord, now time.Time) domain.Ledger {
	ledger := domain.Ledger{
		Cells:       make(map[int]domain.Cell),
		TotalDue:    decimal.Zero,
		TotalPaid:   decimal.Zero,
		Outstanding: decimal.Zero,
	}

	byMonth := make(map[int]domain.PaymentRecord, len(records))
	for _, record := range records {
		if record.Year == year {
			byMonth[record.Month] = record
		}
	}

	first := billingStartMonth(start, year)
	last := limitMonth(year, now)
	rate := client.MonthlyRate.Round(2)

	for m := first; m <= last; m++ {
		baseDue := decimal.Zero
		if inWindow(year, m, start, end) {
			baseDue = rate
		}

		cell := domain.Cell{
			Month:      m,
			Due:        baseDue,
			PaidAmount: decimal.Zero,
			Source:     domain.CellComputed,
		}

		if record, ok := byMonth[m]; ok {
			if record.AmountDue.IsPositive() {
				cell.Due = record.AmountDue.Round(2)
				cell.Source = domain.CellPersisted
			}
			cell.Paid = record.Paid
			if record.Paid {
				if record.AmountPaid.IsPositive() {
					cell.PaidAmount = record.AmountPaid.Round(2)
				} else {
					cell.PaidAmount = cell.Due
				}
			}
		}

		if !cell.Paid && cell.Due.IsPositive() {
			ledger.UnpaidCount++
		}

		ledger.TotalDue = ledger.TotalDue.Add(cell.Due)
		ledger.TotalPaid = ledger.TotalPaid.Add(cell.PaidAmount)
		ledger.Cells[m] = cell
	}

	ledger.TotalDue = ledger.TotalDue.Round(2)
	ledger.TotalPaid = ledger.TotalPaid.Round(2)
	ledger.Outstanding = ledger.TotalDue.Sub(ledger.TotalPaid).Round(2)
	return ledger
}

// Delinquent classifies a client by its unpaid-month count.
func Delinquent(unpaidCount, threshold int) bool {
	return unpaidCount >= threshold
}

// summaryFromLedger converts an evaluated ledger to the derived snapshot
// shared with the listing response.
func summaryFromLedger(ledger domain.Ledger, billingStart time.Time) domain.ClientSummary {
	return domain.ClientSummary{
		ExpectedAmount:    ledger.TotalDue,
		TotalPaid:         ledger.TotalPaid,
		OutstandingAmount: ledger.Outstanding,
		OutstandingMonths: ledger.UnpaidCount,
		BillingStart:      billingStart,
	}
}
