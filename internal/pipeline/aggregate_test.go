package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"medals/internal"
	"medals/internal/util"
)

func TestAddAggregateRow(t *testing.T) {
	rows := []internal.MedalRow{
		{CountryName: "A", NOC: "AAA", Gold: 1, Total: 1},
		{CountryName: "B", NOC: "BBB", Silver: 1, Total: 1},
		{CountryName: "C", NOC: "CCC", Gold: 5, Total: 5, IsEU: true},
	}
	agg := Aggregate{NOC: "EU27", Name: "European Union", ISO2: "EU", FlagURL: "https://flags.test/eu.png"}

	got := AddAggregateRow(rows, []string{"AAA", "BBB", ""}, agg)
	require.Len(t, got, 4)
	require.True(t, got[0].IsEU)
	require.True(t, got[1].IsEU)
	require.False(t, got[2].IsEU)

	sum := got[3]
	require.Equal(t, "EU27", sum.NOC)
	require.Equal(t, "European Union", sum.CountryName)
	require.Equal(t, [4]int{1, 1, 0, 2}, sum.Tally())
	require.True(t, sum.IsEU)
	require.Equal(t, "EU", util.Deref(sum.ISO2))
	require.Equal(t, "https://flags.test/eu.png", util.Deref(sum.FlagURL))
	require.Zero(t, sum.Rank)
}

func TestAddAggregateRowNoMembers(t *testing.T) {
	got := AddAggregateRow([]internal.MedalRow{{NOC: "AAA", Gold: 2, Total: 2}}, nil, Aggregate{NOC: "EU27", Name: "European Union"})

	require.Len(t, got, 2)
	require.Equal(t, [4]int{}, got[1].Tally())
	require.Nil(t, got[1].ISO2)
	require.Nil(t, got[1].FlagURL)

	ranked := ComputeRank(got)
	require.Equal(t, "EU27", ranked[1].NOC)
	require.Equal(t, 2, ranked[1].Rank)
}
