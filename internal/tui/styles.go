package tui

import "github.com/charmbracelet/lipgloss"

// Active palette. applyTheme rewrites these and rebuilds the styles below.
var (
	colorBase     lipgloss.Color
	colorSurface0 lipgloss.Color
	colorSurface1 lipgloss.Color
	colorText     lipgloss.Color
	colorSubtext  lipgloss.Color
	colorDim      lipgloss.Color
	colorAccent   lipgloss.Color
	colorBlue     lipgloss.Color
	colorSapphire lipgloss.Color
	colorGreen    lipgloss.Color
	colorYellow   lipgloss.Color
	colorRed      lipgloss.Color
	colorPeach    lipgloss.Color
	colorTeal     lipgloss.Color
	colorLavender lipgloss.Color
)

var (
	headerBrandStyle   lipgloss.Style
	sectionHeaderStyle lipgloss.Style
	helpStyle          lipgloss.Style
	helpKeyStyle       lipgloss.Style
	labelStyle         lipgloss.Style
	valueStyle         lipgloss.Style
	dimStyle           lipgloss.Style
	errorStyle         lipgloss.Style
	cardStyle          lipgloss.Style
	cardTitleStyle     lipgloss.Style
	cardValueStyle     lipgloss.Style
	rangeActiveStyle   lipgloss.Style
	rangeInactiveStyle lipgloss.Style
	runningBadgeStyle  lipgloss.Style
)

func applyTheme(t Theme) {
	colorBase = t.Base
	colorSurface0 = t.Surface0
	colorSurface1 = t.Surface1
	colorText = t.Text
	colorSubtext = t.Subtext
	colorDim = t.Dim
	colorAccent = t.Accent
	colorBlue = t.Blue
	colorSapphire = t.Sapphire
	colorGreen = t.Green
	colorYellow = t.Yellow
	colorRed = t.Red
	colorPeach = t.Peach
	colorTeal = t.Teal
	colorLavender = t.Lavender

	headerBrandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	helpStyle = lipgloss.NewStyle().Foreground(colorDim)
	helpKeyStyle = lipgloss.NewStyle().Foreground(colorSapphire).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(colorSubtext)
	valueStyle = lipgloss.NewStyle().Foreground(colorText)
	dimStyle = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	cardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSurface1).
		Padding(0, 1)
	cardTitleStyle = lipgloss.NewStyle().Foreground(colorSubtext)
	cardValueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorLavender)

	rangeActiveStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorBase).
		Background(colorAccent).
		Padding(0, 1)
	rangeInactiveStyle = lipgloss.NewStyle().
		Foreground(colorSubtext).
		Background(colorSurface0).
		Padding(0, 1)

	runningBadgeStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
}

// agentColor colors agent leaderboard bars by rank.
func agentColor(idx int) lipgloss.Color {
	palette := []lipgloss.Color{colorAccent, colorBlue, colorGreen, colorPeach, colorTeal, colorYellow, colorSapphire, colorRed}
	return palette[idx%len(palette)]
}
