package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2e7d32"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7a8a7a"))
	highlight    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9a825"))
	gardenBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2e7d32")).Padding(0, 1)

	stageStyles = map[Stage]lipgloss.Style{
		StageSeed:    lipgloss.NewStyle().Faint(true),
		StageSapling: lipgloss.NewStyle(),
		StageMature:  lipgloss.NewStyle().Bold(true),
	}
)

const emptyCell = "· "

func renderClick(result ClickResult) string {
	if result.Planted {
		return titleStyle.Render(fmt.Sprintf("Tree planted! You have %d trees.", result.Trees))
	}
	return fmt.Sprintf("%d clicks until your next tree", result.ClicksRemaining)
}

func renderStatus(local ClickResult, global GlobalStats, globalErr error) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your impact") + "\n")
	fmt.Fprintf(&b, "  clicks:           %d\n", local.Clicks)
	fmt.Fprintf(&b, "  trees:            %d\n", local.Trees)
	fmt.Fprintf(&b, "  next tree in:     %d clicks\n", local.ClicksRemaining)
	b.WriteString(renderGlobal(global, globalErr))
	return b.String()
}

func renderGlobal(stats GlobalStats, err error) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Collective impact") + "\n")
	if err != nil && stats.UpdatedAt.IsZero() {
		b.WriteString(mutedStyle.Render("  global total unavailable: "+err.Error()) + "\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  trees planted:    %d\n", stats.TotalTrees)
	fmt.Fprintf(&b, "  oxygen (kg/yr):   %.2f\n", stats.OxygenKg)
	fmt.Fprintf(&b, "  CO2 (kg/yr):      %.2f\n", stats.CO2Kg)
	if err != nil {
		b.WriteString(mutedStyle.Render("  (stale: "+err.Error()+")") + "\n")
	}
	return b.String()
}

func renderGarden(garden *Garden, userTrees int64) string {
	grid := garden.Grid()
	rows := make([]string, 0, gardenSize)
	for _, row := range grid {
		var line strings.Builder
		for _, tree := range row {
			if tree == nil {
				line.WriteString(mutedStyle.Render(emptyCell))
				continue
			}
			line.WriteString(stageStyles[tree.Stage].Render(tree.Emoji))
		}
		rows = append(rows, line.String())
	}

	header := titleStyle.Render("Virtual garden")
	footer := fmt.Sprintf("%d trees in garden, %d planted", len(garden.Trees), userTrees)
	return lipgloss.JoinVertical(lipgloss.Left, header, gardenBorder.Render(strings.Join(rows, "\n")), mutedStyle.Render(footer))
}

func renderLeaderboard(entries []LeaderboardEntry, summary LeaderboardSummary, period Period) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Leaderboard (%s)", period)) + "\n")
	for _, entry := range entries {
		line := fmt.Sprintf("%3d. %-20s %-12s %5d trees", entry.Rank, entry.Name, entry.Location, entry.TreesPlanted)
		if entry.IsCurrentUser {
			line = highlight.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf(
		"%d participants, %d trees. Your rank: %d (%d trees, %.2f kg oxygen, %.2f kg CO2)",
		summary.Participants, summary.TotalTrees, summary.MyRank, summary.MyTrees, summary.MyOxygenKg, summary.MyCO2Kg,
	)) + "\n")
	return b.String()
}
