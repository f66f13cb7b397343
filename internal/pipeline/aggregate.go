package pipeline

import (
	"medals/internal"
	"medals/internal/util"
)

// Aggregate describes the synthetic summary row. Its NOC must not collide with a real one.
type Aggregate struct {
	NOC     string
	Name    string
	ISO2    string
	FlagURL string
}

// AddAggregateRow flags member rows and appends one row summing their medals.
// Run it before ComputeRank so the aggregate takes part in the ranking.
func AddAggregateRow(rows []internal.MedalRow, memberNOCs []string, agg Aggregate) []internal.MedalRow {
	members := make(map[string]struct{}, len(memberNOCs))
	for _, noc := range memberNOCs {
		if noc != "" {
			members[noc] = struct{}{}
		}
	}

	sum := internal.MedalRow{
		CountryName: agg.Name,
		NOC:         agg.NOC,
		IsEU:        true,
	}
	if agg.ISO2 != "" {
		sum.ISO2 = util.StringPtr(agg.ISO2)
	}
	if agg.FlagURL != "" {
		sum.FlagURL = util.StringPtr(agg.FlagURL)
	}

	out := make([]internal.MedalRow, 0, len(rows)+1)
	for _, r := range rows {
		_, member := members[r.NOC]
		r.IsEU = member
		if member {
			sum.Gold += r.Gold
			sum.Silver += r.Silver
			sum.Bronze += r.Bronze
		}
		out = append(out, r)
	}
	sum.Total = sum.Gold + sum.Silver + sum.Bronze
	return append(out, sum)
}
