package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/janekbaraniewski/ohmydashboard/internal/tui"
)

const defaultStatsWidth = 100

// outputWidth is the terminal width when stdout is a terminal.
func outputWidth() int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return defaultStatsWidth
}

func newStatsCommand(gf *globalFlags) *cobra.Command {
	var (
		rangeFlag string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a one-shot dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rng, err := parseRange(rangeFlag)
			if err != nil {
				return err
			}
			cfg, err := gf.loadConfig()
			if err != nil {
				return err
			}
			tui.SetThemeByName(cfg.Theme)

			reader, _ := newReader(cfg)
			defer reader.Close()

			snap := tui.LoadSnapshot(cmd.Context(), reader, rng)
			return writeSnapshot(cmd.OutOrStdout(), snap, asJSON, outputWidth())
		},
	}
	cmd.Flags().StringVarP(&rangeFlag, "range", "r", "all", "date range: today, week, month or all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}

func writeSnapshot(w io.Writer, snap tui.Snapshot, asJSON bool, width int) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	_, err := fmt.Fprintln(w, tui.RenderSummary(snap, width))
	return err
}
