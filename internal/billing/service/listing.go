package service

import (
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/watchline/watchline/internal/billing/domain"
)

// filterByStatus keeps the IDs matching the requested payment status.
// IDs without a summary only survive the "all" filter.
func filterByStatus(order []snowflake.ID, summaries map[snowflake.ID]domain.ClientSummary, status domain.StatusFilter) []snowflake.ID {
	if status == domain.StatusAll {
		out := make([]snowflake.ID, len(order))
		copy(out, order)
		return out
	}

	out := make([]snowflake.ID, 0, len(order))
	for _, id := range order {
		summary, ok := summaries[id]
		if !ok {
			continue
		}
		switch status {
		case domain.StatusLate:
			if summary.OutstandingAmount.IsPositive() {
				out = append(out, id)
			}
		case domain.StatusPaid:
			if !summary.OutstandingAmount.IsPositive() {
				out = append(out, id)
			}
		}
	}
	return out
}

// sortIDs orders the filtered IDs in place. The sort is stable, so equal
// keys keep the pipeline's id order and repeated requests paginate
// identically.
func sortIDs(ids []snowflake.ID, lites map[snowflake.ID]domain.ClientLite, summaries map[snowflake.ID]domain.ClientSummary, field domain.SortField, direction domain.SortDirection) {
	sign := 1
	if direction == domain.SortDesc {
		sign = -1
	}

	sort.SliceStable(ids, func(i, j int) bool {
		return compareIDs(ids[i], ids[j], lites, summaries, field)*sign < 0
	})
}

func compareIDs(a, b snowflake.ID, lites map[snowflake.ID]domain.ClientLite, summaries map[snowflake.ID]domain.ClientSummary, field domain.SortField) int {
	switch field {
	case domain.SortByExpected:
		return summaries[a].ExpectedAmount.Cmp(summaries[b].ExpectedAmount)
	case domain.SortByOutstanding:
		return summaries[a].OutstandingAmount.Cmp(summaries[b].OutstandingAmount)
	default:
		return strings.Compare(
			strings.ToLower(lites[a].Name),
			strings.ToLower(lites[b].Name),
		)
	}
}
