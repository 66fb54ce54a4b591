package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/ohmydashboard/internal/config"
	"github.com/janekbaraniewski/ohmydashboard/internal/tui"
)

func newTopCommand(gf *globalFlags) *cobra.Command {
	var rangeFlag string
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the live dashboard in the terminal",
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

			savePath := gf.configPath
			return tui.Run(reader, tui.Options{
				Range:           rng,
				RefreshInterval: time.Duration(cfg.UI.RefreshIntervalSeconds) * time.Second,
				SaveTheme: func(name string) error {
					if savePath != "" {
						return config.SaveThemeTo(savePath, name)
					}
					return config.SaveTheme(name)
				},
			})
		},
	}
	cmd.Flags().StringVarP(&rangeFlag, "range", "r", "all", "date range: today, week, month or all")
	return cmd
}
