package main

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"
)

// Personal impact figures shown next to the user's rank.
const (
	personalOxygenKgPerTree = 0.118 * 365
	personalCO2KgPerTree    = 21.77
)

type Period string

const (
	PeriodAll   Period = "all"
	PeriodMonth Period = "month"
	PeriodWeek  Period = "week"
)

func parsePeriod(raw string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case PeriodAll, "":
		return PeriodAll, nil
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodWeek:
		return PeriodWeek, nil
	default:
		return "", fmt.Errorf("unknown period %q (want all, month or week)", raw)
	}
}

func (p Period) window() time.Duration {
	switch p {
	case PeriodMonth:
		return 30 * 24 * time.Hour
	case PeriodWeek:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

type Participant struct {
	ID            string
	Name          string
	Location      string
	TreesPlanted  int64
	LastActive    time.Time
	JoinDate      time.Time
	IsCurrentUser bool
}

type LeaderboardEntry struct {
	Rank int
	Participant
}

type LeaderboardSummary struct {
	Participants int
	TotalTrees   int64
	MyRank       int
	MyTrees      int64
	MyOxygenKg   float64
	MyCO2Kg      float64
}

// Leaderboard is a demo ranking: every participant except the current user
// is generated locally.
type Leaderboard struct {
	participants []Participant
	now          time.Time
}

var mockNames = []string{
	"Ahmed Al-Rashid", "Fatima Al-Zahra", "Mohammed Al-Saud", "Aisha Al-Qahtani",
	"Abdullah Al-Ghamdi", "Noor Al-Harbi", "Omar Al-Shamrani", "Layla Al-Mutairi",
	"Khalid Al-Otaibi", "Mariam Al-Dossary", "Yousef Al-Qahtani", "Hana Al-Shehri",
	"Ibrahim Al-Zahrani", "Rania Al-Balawi", "Hassan Al-Malki", "Dana Al-Rashidi",
	"Ali Al-Harbi", "Sara Al-Ghamdi", "Waleed Al-Shamrani", "Nada Al-Mutairi",
}

var mockCities = []string{
	"Riyadh", "Jeddah", "Mecca", "Medina", "Dammam", "Taif", "Tabuk", "Abha",
	"Jizan", "Najran", "Al-Ahsa", "Al-Khobar", "Dhahran", "Yanbu", "Al-Kharj",
}

func newMockLeaderboard(rng *rand.Rand, now time.Time, userTrees int64) *Leaderboard {
	participants := make([]Participant, 0, len(mockNames)+1)
	for i, name := range mockNames {
		participants = append(participants, Participant{
			ID:           fmt.Sprintf("mock-%d", i+1),
			Name:         name,
			Location:     mockCities[rng.IntN(len(mockCities))],
			TreesPlanted: int64(rng.IntN(500)) + 10,
			LastActive:   now.Add(-time.Duration(rng.Int64N(int64(30 * 24 * time.Hour)))),
			JoinDate:     now.Add(-time.Duration(rng.Int64N(int64(365 * 24 * time.Hour)))),
		})
	}
	participants = append(participants, Participant{
		ID:            "current",
		Name:          "You",
		Location:      "Saudi Arabia",
		TreesPlanted:  userTrees,
		LastActive:    now,
		JoinDate:      now,
		IsCurrentUser: true,
	})

	board := &Leaderboard{participants: participants, now: now}
	board.sort()
	return board
}

func (l *Leaderboard) sort() {
	sort.SliceStable(l.participants, func(i, j int) bool {
		return l.participants[i].TreesPlanted > l.participants[j].TreesPlanted
	})
}

// SetCurrentUserTrees updates the user's row and re-ranks.
func (l *Leaderboard) SetCurrentUserTrees(trees int64) {
	for i := range l.participants {
		if l.participants[i].IsCurrentUser {
			l.participants[i].TreesPlanted = trees
		}
	}
	l.sort()
}

// Entries returns the ranking for a period, capped at limit rows when limit > 0.
func (l *Leaderboard) Entries(period Period, limit int) []LeaderboardEntry {
	window := period.window()
	entries := []LeaderboardEntry{}
	for _, participant := range l.participants {
		if window > 0 && participant.LastActive.Before(l.now.Add(-window)) {
			continue
		}
		entries = append(entries, LeaderboardEntry{Rank: len(entries) + 1, Participant: participant})
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries
}

func (l *Leaderboard) Summary() LeaderboardSummary {
	summary := LeaderboardSummary{Participants: len(l.participants)}
	for i, participant := range l.participants {
		summary.TotalTrees += participant.TreesPlanted
		if participant.IsCurrentUser {
			summary.MyRank = i + 1
			summary.MyTrees = participant.TreesPlanted
		}
	}
	summary.MyOxygenKg = float64(summary.MyTrees) * personalOxygenKgPerTree
	summary.MyCO2Kg = float64(summary.MyTrees) * personalCO2KgPerTree
	return summary
}
