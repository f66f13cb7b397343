package pipeline

import (
	"sort"

	"medals/internal"
)

// ComputeRank orders rows by gold, silver, bronze and total (descending), then by
// country name. Tied rows share a rank and the next distinct tally takes its 1-based
// position, so (3,2,1,6), (3,2,1,6), (2,0,0,2) rank 1, 1, 3.
func ComputeRank(rows []internal.MedalRow) []internal.MedalRow {
	out := make([]internal.MedalRow, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Tally(), out[j].Tally()
		if a != b {
			for k := range a {
				if a[k] != b[k] {
					return a[k] > b[k]
				}
			}
		}
		return out[i].CountryName < out[j].CountryName
	})

	rank := 0
	var prev [4]int
	for i := range out {
		tally := out[i].Tally()
		if i == 0 || tally != prev {
			rank = i + 1
			prev = tally
		}
		out[i].Rank = rank
	}
	return out
}
