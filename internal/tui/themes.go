package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the color token set used by the summary views.
type Theme struct {
	Name string
	Icon string

	Base     lipgloss.Color
	Surface0 lipgloss.Color
	Surface1 lipgloss.Color

	Text    lipgloss.Color
	Subtext lipgloss.Color
	Dim     lipgloss.Color

	Accent   lipgloss.Color
	Blue     lipgloss.Color
	Sapphire lipgloss.Color
	Green    lipgloss.Color
	Yellow   lipgloss.Color
	Red      lipgloss.Color
	Peach    lipgloss.Color
	Teal     lipgloss.Color
	Lavender lipgloss.Color
}

// DefaultThemeName is used when the config names no theme, or an unknown one.
const DefaultThemeName = "Catppuccin Mocha"

var (
	themeMu        sync.RWMutex
	themes         = builtinThemes()
	activeThemeIdx int
)

func init() {
	activeThemeIdx = themeIndex(DefaultThemeName)
	applyTheme(themes[activeThemeIdx])
}

func builtinThemes() []Theme {
	return []Theme{
		{
			Name: "Catppuccin Mocha", Icon: "🐱",
			Base: "#1E1E2E", Surface0: "#313244", Surface1: "#45475A",
			Text: "#CDD6F4", Subtext: "#A6ADC8", Dim: "#585B70",
			Accent: "#CBA6F7", Blue: "#89B4FA", Sapphire: "#74C7EC",
			Green: "#A6E3A1", Yellow: "#F9E2AF", Red: "#F38BA8",
			Peach: "#FAB387", Teal: "#94E2D5", Lavender: "#B4BEFE",
		},
		{
			Name: "Gruvbox", Icon: "🌻",
			Base: "#282828", Surface0: "#3C3836", Surface1: "#504945",
			Text: "#EBDBB2", Subtext: "#D5C4A1", Dim: "#665C54",
			Accent: "#D3869B", Blue: "#83A598", Sapphire: "#83A598",
			Green: "#B8BB26", Yellow: "#FABD2F", Red: "#FB4934",
			Peach: "#FE8019", Teal: "#8EC07C", Lavender: "#D3869B",
		},
		{
			Name: "Dracula", Icon: "🧛",
			Base: "#282A36", Surface0: "#44475A", Surface1: "#6272A4",
			Text: "#F8F8F2", Subtext: "#BFBFBF", Dim: "#6272A4",
			Accent: "#BD93F9", Blue: "#8BE9FD", Sapphire: "#8BE9FD",
			Green: "#50FA7B", Yellow: "#F1FA8C", Red: "#FF5555",
			Peach: "#FFB86C", Teal: "#8BE9FD", Lavender: "#BD93F9",
		},
		{
			Name: "Nord", Icon: "❄",
			Base: "#2E3440", Surface0: "#3B4252", Surface1: "#434C5E",
			Text: "#ECEFF4", Subtext: "#D8DEE9", Dim: "#4C566A",
			Accent: "#B48EAD", Blue: "#81A1C1", Sapphire: "#88C0D0",
			Green: "#A3BE8C", Yellow: "#EBCB8B", Red: "#BF616A",
			Peach: "#D08770", Teal: "#8FBCBB", Lavender: "#B48EAD",
		},
		{
			Name: "Tokyo Night", Icon: "🌃",
			Base: "#1A1B26", Surface0: "#24283B", Surface1: "#414868",
			Text: "#C0CAF5", Subtext: "#A9B1D6", Dim: "#565F89",
			Accent: "#BB9AF7", Blue: "#7AA2F7", Sapphire: "#7DCFFF",
			Green: "#9ECE6A", Yellow: "#E0AF68", Red: "#F7768E",
			Peach: "#FF9E64", Teal: "#73DACA", Lavender: "#BB9AF7",
		},
	}
}

// themeIndex returns the index of the named theme, matching case-insensitively,
// or 0 when there is no match.
func themeIndex(name string) int {
	needle := strings.ToLower(strings.TrimSpace(name))
	for i, t := range themes {
		if strings.ToLower(t.Name) == needle {
			return i
		}
	}
	return 0
}

func ActiveTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return themes[activeThemeIdx]
}

// CycleTheme activates the next theme and returns its name.
func CycleTheme() string {
	themeMu.Lock()
	defer themeMu.Unlock()
	activeThemeIdx = (activeThemeIdx + 1) % len(themes)
	applyTheme(themes[activeThemeIdx])
	return themes[activeThemeIdx].Name
}

// SetThemeByName activates the named theme. It reports false, leaving the
// active theme unchanged, when the name is unknown.
func SetThemeByName(name string) bool {
	themeMu.Lock()
	defer themeMu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(name))
	for i, t := range themes {
		if strings.ToLower(t.Name) == needle {
			activeThemeIdx = i
			applyTheme(t)
			return true
		}
	}
	return false
}

func ThemeNames() []string {
	out := make([]string, len(themes))
	for i, t := range themes {
		out[i] = t.Name
	}
	return out
}

func ThemeName() string {
	t := ActiveTheme()
	if t.Icon == "" {
		return t.Name
	}
	return t.Icon + " " + t.Name
}
