package service

import (
	"time"

	"github.com/watchline/watchline/internal/billing/domain"
)

// ResolveWindow determines a client's billable range. The start falls back
// through billing_start_date, contract_start_date, then the record's
// creation date, so it always resolves. A nil end means unbounded.
func ResolveWindow(client domain.ClientLite) (time.Time, *time.Time) {
	start := client.CreatedAt
	switch {
	case client.BillingStartDate != nil:
		start = *client.BillingStartDate
	case client.ContractStartDate != nil:
		start = *client.ContractStartDate
	}
	start = dateOnly(start)

	var end *time.Time
	if client.ContractEndDate != nil {
		e := dateOnly(*client.ContractEndDate)
		end = &e
	}
	return start, end
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// monthIndex flattens a year/month pair for window comparisons.
func monthIndex(year, month int) int {
	return year*12 + month - 1
}

// inWindow reports whether month m of year falls inside [start, end],
// compared at calendar-month granularity.
func inWindow(year, m int, start time.Time, end *time.Time) bool {
	idx := monthIndex(year, m)
	if idx < monthIndex(start.Year(), int(start.Month())) {
		return false
	}
	if end != nil && idx > monthIndex(end.Year(), int(end.Month())) {
		return false
	}
	return true
}
