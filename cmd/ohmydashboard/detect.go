package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/ohmydashboard/internal/detect"
)

type detectReport struct {
	Backend           detect.Descriptor `json:"backend"`
	StorageCandidates []string          `json:"storageCandidates"`
	DBCandidates      []string          `json:"dbCandidates"`
}

func newDetectCommand(gf *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Show which session store would be used and the paths probed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := gf.loadConfig()
			if err != nil {
				return err
			}
			opts := detectOptions(cfg)
			storage := detect.StorageCandidates(opts)
			report := detectReport{
				Backend:           detect.Describe(detect.Resolve(opts)),
				StorageCandidates: storage,
				DBCandidates:      detect.DBCandidates(opts, detect.SelectStorageBase(storage)),
			}
			return writeDetectReport(cmd.OutOrStdout(), report, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func writeDetectReport(w io.Writer, r detectReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "BACKEND\t%s\n", r.Backend.Kind)
	fmt.Fprintf(tw, "STORAGE\t%s\n", r.Backend.BasePath)
	if r.Backend.DBPath != "" {
		fmt.Fprintf(tw, "DATABASE\t%s\n", r.Backend.DBPath)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Storage candidates:")
	for _, c := range r.StorageCandidates {
		fmt.Fprintf(w, "  %s\n", c)
	}
	fmt.Fprintln(w, "Database candidates:")
	for _, c := range r.DBCandidates {
		fmt.Fprintf(w, "  %s\n", c)
	}
	return nil
}
