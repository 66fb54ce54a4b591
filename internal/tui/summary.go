package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
	"github.com/janekbaraniewski/ohmydashboard/internal/detect"
)

// Source is the subset of the dashboard façade the terminal views read.
type Source interface {
	Stats(ctx context.Context, rng core.DateRange) core.DashboardStats
	ActiveAgents(ctx context.Context) []core.AgentActivity
	AgentUsage(ctx context.Context, rng core.DateRange) []core.AgentUsage
	CostHistory(ctx context.Context) []core.CostHistoryEntry
	ModelUsage(ctx context.Context) []core.ModelUsage
	Backend() detect.Descriptor
	InvalidateCache()
}

// Snapshot is one consistent read of every view the summary shows.
type Snapshot struct {
	Range       core.DateRange          `json:"range"`
	Backend     detect.Descriptor       `json:"backend"`
	Stats       core.DashboardStats     `json:"stats"`
	Active      []core.AgentActivity    `json:"activeAgents"`
	Usage       []core.AgentUsage       `json:"agentUsage"`
	CostHistory []core.CostHistoryEntry `json:"costHistory"`
	Models      []core.ModelUsage       `json:"models"`
	FetchedAt   time.Time               `json:"fetchedAt"`
}

// LoadSnapshot queries src for every view concurrently.
func LoadSnapshot(ctx context.Context, src Source, rng core.DateRange) Snapshot {
	snap := Snapshot{Range: rng, Backend: src.Backend()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { snap.Stats = src.Stats(gctx, rng); return nil })
	g.Go(func() error { snap.Active = src.ActiveAgents(gctx); return nil })
	g.Go(func() error { snap.Usage = src.AgentUsage(gctx, rng); return nil })
	g.Go(func() error { snap.CostHistory = src.CostHistory(gctx); return nil })
	g.Go(func() error { snap.Models = src.ModelUsage(gctx); return nil })
	_ = g.Wait()
	snap.FetchedAt = time.Now()
	return snap
}

const (
	summaryLabelW = 18
	maxListRows   = 8
)

// RenderSummary lays the snapshot out for a terminal of width w.
func RenderSummary(s Snapshot, w int) string {
	w = max(w, 40)
	sections := []string{
		renderCards(s, w),
		renderActiveAgents(s.Active, w),
		renderAgentUsage(s.Usage, w),
		renderCostHistory(s.CostHistory, w),
		renderModels(s.Models, w),
	}
	return strings.Join(sections, "\n\n")
}

func renderCards(s Snapshot, w int) string {
	cards := []struct{ title, value string }{
		{"Sessions", formatNumber(float64(s.Stats.TotalSessions))},
		{"Messages", formatNumber(float64(s.Stats.TotalMessages))},
		{"Cost", formatUSD(s.Stats.TotalCost)},
		{"Tokens", formatNumber(float64(s.Stats.TotalTokens))},
		{"Active", formatNumber(float64(s.Stats.ActiveAgents))},
	}
	cardW := max((w-2*len(cards))/len(cards), 10)
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		body := cardTitleStyle.Render(c.title) + "\n" + cardValueStyle.Render(c.value)
		rendered = append(rendered, cardStyle.Width(cardW).Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderActiveAgents(active []core.AgentActivity, w int) string {
	lines := []string{sectionHeaderStyle.Render("Active agents")}
	if len(active) == 0 {
		return strings.Join(append(lines, dimStyle.Render("  No agents active in the last 5 minutes")), "\n")
	}
	for i, a := range active {
		if i == maxListRows {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("  … %d more", len(active)-maxListRows)))
			break
		}
		line := fmt.Sprintf("  %s %s  %s  %s  %s",
			runningBadgeStyle.Render("●"),
			valueStyle.Render(truncate(a.Agent, 16)),
			labelStyle.Render(truncate(a.Model, 24)),
			dimStyle.Render(formatElapsed(a.ElapsedMs)),
			dimStyle.Render(truncate(a.Directory, max(w-60, 10))),
		)
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderAgentUsage(usage []core.AgentUsage, w int) string {
	items := make([]chartItem, 0, min(len(usage), maxListRows))
	for i, u := range usage {
		if i == maxListRows {
			break
		}
		items = append(items, chartItem{
			Label:    u.Agent,
			Value:    float64(u.TotalMessages),
			Display:  fmt.Sprintf("%d%%", u.Percentage),
			Color:    agentColor(i),
			SubLabel: fmt.Sprintf("%d msgs · %d sessions", u.TotalMessages, u.Count),
		})
	}
	return sectionHeaderStyle.Render("Agent leaderboard") + "\n" + RenderHBarChart(items, barWidth(w), summaryLabelW)
}

func renderCostHistory(history []core.CostHistoryEntry, w int) string {
	values := make([]float64, len(history))
	total := 0.0
	for i, h := range history {
		values[i] = h.Cost
		total += h.Cost
	}
	header := sectionHeaderStyle.Render("Cost, last 14 days")
	if len(history) == 0 {
		return header + "\n" + dimStyle.Render("  No data yet")
	}
	spark := RenderSparkline(values, max(w-30, 14), colorGreen)
	span := dimStyle.Render(fmt.Sprintf("%s → %s", history[0].Label, history[len(history)-1].Label))
	return header + "\n  " + spark + "  " + valueStyle.Render(formatUSD(total)) + "  " + span
}

func renderModels(models []core.ModelUsage, w int) string {
	items := make([]chartItem, 0, min(len(models), maxListRows))
	for i, m := range models {
		if i == maxListRows {
			break
		}
		items = append(items, chartItem{
			Label:    m.Model,
			Value:    float64(m.Messages),
			Display:  fmt.Sprintf("%d%%", m.Percentage),
			Color:    lipgloss.Color(m.Color),
			SubLabel: fmt.Sprintf("%d msgs · %s", m.Messages, formatUSD(m.Cost)),
		})
	}
	return sectionHeaderStyle.Render("Models") + "\n" + RenderHBarChart(items, barWidth(w), summaryLabelW)
}

func barWidth(w int) int {
	return max(min(w-summaryLabelW-40, 40), 8)
}
