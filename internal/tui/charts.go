package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

type chartItem struct {
	Label    string
	Value    float64
	Display  string
	Color    lipgloss.Color
	SubLabel string
}

// RenderSparkline draws values as one row of block characters scaled between
// the series minimum and maximum. Longer series are down-sampled to w.
func RenderSparkline(values []float64, w int, color lipgloss.Color) string {
	if len(values) == 0 || w < 1 {
		return ""
	}

	if len(values) > w {
		step := float64(len(values)) / float64(w)
		sampled := make([]float64, w)
		for i := 0; i < w; i++ {
			idx := int(float64(i) * step)
			if idx >= len(values) {
				idx = len(values) - 1
			}
			sampled[i] = values[idx]
		}
		values = sampled
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	rng := maxV - minV
	if rng == 0 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		sb.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

// RenderHBarChart draws one labelled bar per item, scaled to the largest value.
func RenderHBarChart(items []chartItem, maxBarW, labelW int) string {
	if len(items) == 0 {
		return dimStyle.Render("  No data yet")
	}
	maxBarW = max(maxBarW, 4)

	maxVal := 0.0
	for _, item := range items {
		maxVal = math.Max(maxVal, item.Value)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		label := truncate(item.Label, labelW)
		labelRendered := labelStyle.Width(labelW).Render(label)

		barLen := int(item.Value / maxVal * float64(maxBarW))
		if barLen < 1 && item.Value > 0 {
			barLen = 1
		}
		bar := lipgloss.NewStyle().Foreground(item.Color).Render(strings.Repeat("█", barLen))
		track := lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("░", maxBarW-barLen))

		display := item.Display
		if display == "" {
			display = formatNumber(item.Value)
		}
		line := fmt.Sprintf("  %s %s%s  %s", labelRendered, bar, track,
			lipgloss.NewStyle().Foreground(item.Color).Bold(true).Render(display))
		if item.SubLabel != "" {
			line += "  " + dimStyle.Render(item.SubLabel)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func formatNumber(n float64) string {
	if n == 0 {
		return "0"
	}
	abs := math.Abs(n)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case abs >= 10_000:
		return fmt.Sprintf("%.1fK", n/1_000)
	case abs == math.Floor(abs):
		return fmt.Sprintf("%.0f", n)
	default:
		return fmt.Sprintf("%.2f", n)
	}
}

func formatUSD(n float64) string {
	if n == 0 {
		return "$0.00"
	}
	if n >= 1000 {
		return fmt.Sprintf("$%.0f", n)
	}
	return fmt.Sprintf("$%.2f", n)
}

func formatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	s := ms / 1000
	switch {
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 3600:
		return fmt.Sprintf("%dm%ds", s/60, s%60)
	case s < 86400:
		return fmt.Sprintf("%dh%dm", s/3600, (s%3600)/60)
	default:
		return fmt.Sprintf("%dd%dh", s/86400, (s%86400)/3600)
	}
}
