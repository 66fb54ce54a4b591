// Package tui renders the dashboard summary in the terminal, both as an
// interactive bubbletea program and as one-shot text for `stats`.
package tui

import (
	"context"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
)

// DefaultRefreshInterval matches the browser dashboard's poll interval.
const DefaultRefreshInterval = 15 * time.Second

type snapshotMsg Snapshot

type pollMsg time.Time

type themePersistedMsg struct{ err error }

func pollCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return pollMsg(t) })
}

type Options struct {
	Range           core.DateRange
	RefreshInterval time.Duration
	// SaveTheme persists a theme change; nil skips persistence.
	SaveTheme func(name string) error
}

type Model struct {
	src       Source
	rng       core.DateRange
	interval  time.Duration
	saveTheme func(string) error

	snap     Snapshot
	hasData  bool
	loading  bool
	showHelp bool
	width    int
	height   int
}

func NewModel(src Source, opts Options) Model {
	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	rng := opts.Range
	if rng == "" {
		rng = core.RangeAll
	}
	return Model{src: src, rng: rng, interval: interval, saveTheme: opts.SaveTheme, loading: true}
}

func (m Model) loadCmd() tea.Cmd {
	src, rng := m.src, m.rng
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return snapshotMsg(LoadSnapshot(ctx, src, rng))
	}
}

func (m Model) persistThemeCmd(name string) tea.Cmd {
	save := m.saveTheme
	if save == nil {
		return nil
	}
	return func() tea.Msg {
		err := save(name)
		if err != nil {
			log.Printf("tui level=warn event=theme_persist_failed error=%v", err)
		}
		return themePersistedMsg{err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), pollCmd(m.interval))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		m.snap = Snapshot(msg)
		m.hasData = true
		m.loading = false
		return m, nil

	case pollMsg:
		m.loading = true
		return m, tea.Batch(m.loadCmd(), pollCmd(m.interval))

	case themePersistedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "r":
		m.src.InvalidateCache()
		m.loading = true
		return m, m.loadCmd()
	case "tab":
		m.rng = core.NextDateRange(m.rng)
		m.loading = true
		return m, m.loadCmd()
	case "t":
		name := CycleTheme()
		return m, m.persistThemeCmd(name)
	}
	return m, nil
}

func (m Model) View() string {
	if m.width > 0 && (m.width < 40 || m.height < 10) {
		return dimStyle.Render("\n  Terminal too small. Resize to at least 40×10.")
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	if m.showHelp {
		return header + "\n\n" + renderHelp() + "\n\n" + footer
	}
	if !m.hasData {
		return header + "\n\n" + dimStyle.Render("  Reading session store…") + "\n\n" + footer
	}
	return header + "\n\n" + RenderSummary(m.snap, m.contentWidth()) + "\n\n" + footer
}

func (m Model) contentWidth() int {
	if m.width == 0 {
		return 100
	}
	return m.width
}

func (m Model) renderHeader() string {
	brand := headerBrandStyle.Render("OhMyDashboard")
	tabs := make([]string, 0, len(core.ValidDateRanges))
	for _, r := range core.ValidDateRanges {
		style := rangeInactiveStyle
		if r == m.rng {
			style = rangeActiveStyle
		}
		tabs = append(tabs, style.Render(r.Label()))
	}
	status := ""
	if m.loading {
		status = dimStyle.Render("refreshing…")
	} else if m.hasData {
		status = dimStyle.Render("updated " + m.snap.FetchedAt.Format("15:04:05"))
	}
	backend := dimStyle.Render(m.snap.Backend.Kind)
	return lipgloss.JoinHorizontal(lipgloss.Center, brand, "  ", strings.Join(tabs, " "), "  ", backend, "  ", status)
}

func (m Model) renderFooter() string {
	keys := []struct{ key, desc string }{
		{"tab", "range"}, {"r", "refresh"}, {"t", "theme"}, {"?", "help"}, {"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}
	return strings.Join(parts, helpStyle.Render("  ·  ")) + "  " + dimStyle.Render(ThemeName())
}

func renderHelp() string {
	rows := [][2]string{
		{"tab", "cycle the time range (today, week, month, all)"},
		{"r", "drop cached listings and reload now"},
		{"t", "cycle the color theme"},
		{"q / ctrl+c", "quit"},
	}
	lines := []string{sectionHeaderStyle.Render("Keys")}
	for _, r := range rows {
		lines = append(lines, "  "+helpKeyStyle.Width(12).Render(r[0])+labelStyle.Render(r[1]))
	}
	lines = append(lines, "", dimStyle.Render("  press any key to close"))
	return strings.Join(lines, "\n")
}

// Run starts the interactive program and blocks until the user quits.
func Run(src Source, opts Options) error {
	p := tea.NewProgram(NewModel(src, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
