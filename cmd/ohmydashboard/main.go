package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

const envDebug = "OHMYDASHBOARD_DEBUG"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "ohmydashboard",
		Short: "OhMyDashboard is a local dashboard for OpenCode agent sessions, usage and spend.",
		Long: "OhMyDashboard reads the OpenCode session store (JSON tree or SQLite) and serves\n" +
			"aggregated views over HTTP for the web client, or in the terminal with `top`.",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging(flags.debug)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags, &serveFlags{})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to settings.json (default "+defaultConfigPathHint()+")")
	pf.BoolVar(&flags.debug, "debug", false, "write diagnostic logs to stderr (also "+envDebug+"=1)")
	pf.StringVar(&flags.storageDir, "storage-dir", "", "OpenCode storage directory override")
	pf.StringVar(&flags.dbPath, "db-path", "", "OpenCode SQLite database override")

	root.AddCommand(
		newServeCommand(flags),
		newTopCommand(flags),
		newStatsCommand(flags),
		newDetectCommand(flags),
		newVersionCommand(),
	)
	return root
}

func setupLogging(debug bool) {
	if debug || os.Getenv(envDebug) != "" {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(io.Discard)
}
