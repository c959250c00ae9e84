package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leaderboardNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func TestMockLeaderboardRanking(t *testing.T) {
	board := newMockLeaderboard(testRNG(), leaderboardNow, 42)

	entries := board.Entries(PeriodAll, 0)
	require.Len(t, entries, len(mockNames)+1)

	var you int
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, entries[i-1].TreesPlanted, entry.TreesPlanted)
		}
		if entry.IsCurrentUser {
			you++
			assert.Equal(t, "You", entry.Name)
			assert.Equal(t, int64(42), entry.TreesPlanted)
		} else {
			assert.GreaterOrEqual(t, entry.TreesPlanted, int64(10))
			assert.Less(t, entry.TreesPlanted, int64(510))
			assert.False(t, entry.LastActive.After(leaderboardNow))
			assert.True(t, entry.LastActive.After(leaderboardNow.Add(-PeriodMonth.window())))
		}
	}
	assert.Equal(t, 1, you)
}

func TestLeaderboardPeriodFilter(t *testing.T) {
	board := newMockLeaderboard(testRNG(), leaderboardNow, 0)

	week := board.Entries(PeriodWeek, 0)
	cutoff := leaderboardNow.Add(-7 * 24 * time.Hour)
	for i, entry := range week {
		assert.Equal(t, i+1, entry.Rank)
		assert.False(t, entry.LastActive.Before(cutoff), entry.Name)
	}
	assert.LessOrEqual(t, len(week), len(board.Entries(PeriodMonth, 0)))

	var foundYou bool
	for _, entry := range week {
		foundYou = foundYou || entry.IsCurrentUser
	}
	assert.True(t, foundYou)
}

func TestLeaderboardLimit(t *testing.T) {
	board := newMockLeaderboard(testRNG(), leaderboardNow, 0)

	top := board.Entries(PeriodAll, 5)
	require.Len(t, top, 5)
	assert.Equal(t, board.Entries(PeriodAll, 0)[:5], top)
}

func TestLeaderboardSummary(t *testing.T) {
	board := newMockLeaderboard(testRNG(), leaderboardNow, 10000)

	summary := board.Summary()
	assert.Equal(t, len(mockNames)+1, summary.Participants)
	assert.Equal(t, 1, summary.MyRank)
	assert.Equal(t, int64(10000), summary.MyTrees)
	assert.InDelta(t, 10000*0.118*365, summary.MyOxygenKg, 1e-6)
	assert.InDelta(t, 10000*21.77, summary.MyCO2Kg, 1e-6)

	var total int64
	for _, entry := range board.Entries(PeriodAll, 0) {
		total += entry.TreesPlanted
	}
	assert.Equal(t, total, summary.TotalTrees)

	board.SetCurrentUserTrees(0)
	summary = board.Summary()
	assert.Equal(t, len(mockNames)+1, summary.MyRank)
	assert.Zero(t, summary.MyOxygenKg)
}

func TestParsePeriod(t *testing.T) {
	for raw, want := range map[string]Period{"": PeriodAll, "all": PeriodAll, "Month": PeriodMonth, " week ": PeriodWeek} {
		got, err := parsePeriod(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := parsePeriod("year")
	assert.EqualError(t, err, `unknown period "year" (want all, month or week)`)
}
