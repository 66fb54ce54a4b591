package analytics

import (
	"sort"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
)

var modelColors = map[string]string{
	"claude-sonnet-4.5":        "#3b82f6",
	"claude-opus-4.5":          "#8b5cf6",
	"claude-opus-4-5-thinking": "#7c3aed",
	"claude-sonnet-4-5":        "#3b82f6",
	"gpt-5.2":                  "#10b981",
	"gpt-5-mini":               "#6ee7b7",
	"gemini-3-pro":             "#f59e0b",
	"gemini-3-flash":           "#fbbf24",
	"gemini-3-flash-preview":   "#f59e0b",
	"claude-haiku-4.5":         "#93c5fd",
}

var fallbackPalette = []string{
	"#ef4444", "#ec4899", "#a855f7", "#6366f1", "#14b8a6",
	"#84cc16", "#f97316", "#06b6d4", "#d946ef", "#0ea5e9",
}

// ModelColor returns the fixed color of a known model, or the palette entry
// for the model's first-seen index.
func ModelColor(model string, index int) string {
	if c, ok := modelColors[model]; ok {
		return c
	}
	return fallbackPalette[index%len(fallbackPalette)]
}

// ModelUsage aggregates assistant messages that name a model. Colors are
// assigned by first-seen order before the result is sorted by message count.
func ModelUsage(messages []core.RawMessage) []core.ModelUsage {
	var order []string
	byModel := make(map[string]*core.ModelUsage)
	total := 0
	for _, m := range messages {
		if m.Role != "assistant" || m.ModelID == "" {
			continue
		}
		total++
		u, ok := byModel[m.ModelID]
		if !ok {
			u = &core.ModelUsage{Model: m.ModelID, Color: ModelColor(m.ModelID, len(order))}
			byModel[m.ModelID] = u
			order = append(order, m.ModelID)
		}
		u.Messages++
		u.Cost += m.CostValue()
	}

	out := make([]core.ModelUsage, 0, len(order))
	for _, model := range order {
		u := *byModel[model]
		u.Percentage = percentage(u.Messages, total)
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Messages != out[j].Messages {
			return out[i].Messages > out[j].Messages
		}
		return out[i].Model < out[j].Model
	})
	return out
}
