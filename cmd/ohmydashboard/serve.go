package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/ohmydashboard/internal/config"
	"github.com/janekbaraniewski/ohmydashboard/internal/dashboard"
	"github.com/janekbaraniewski/ohmydashboard/internal/detect"
	"github.com/janekbaraniewski/ohmydashboard/internal/server"
	"github.com/janekbaraniewski/ohmydashboard/internal/watch"
)

type serveFlags struct {
	host   string
	port   int
	dist   string
	noCORS bool
	watch  bool
}

func newServeCommand(gf *globalFlags) *cobra.Command {
	sf := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API and web client (default command)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), gf, sf)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&sf.host, "host", "H", "", "address to bind (default from config, "+config.DefaultHost+")")
	f.IntVarP(&sf.port, "port", "p", 0, "port to listen on (default from config, 51234)")
	f.StringVar(&sf.dist, "dist", "", "directory holding the built web client")
	f.BoolVar(&sf.noCORS, "no-cors", false, "disable permissive CORS headers")
	f.BoolVar(&sf.watch, "watch", false, "invalidate the cache when the session store changes")
	return cmd
}

func (sf *serveFlags) apply(cfg config.Config) config.Config {
	if sf.host != "" {
		cfg.Server.Host = sf.host
	}
	if sf.port > 0 {
		cfg.Server.Port = sf.port
	}
	if sf.dist != "" {
		cfg.Server.DistDir = sf.dist
	}
	if sf.noCORS {
		cfg.Server.CORS = false
	}
	if sf.watch {
		cfg.Watch = true
	}
	return cfg
}

func runServe(ctx context.Context, gf *globalFlags, sf *serveFlags) error {
	cfg, err := gf.loadConfig()
	if err != nil {
		return err
	}
	cfg = sf.apply(cfg)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader, resolver := newReader(cfg)
	defer reader.Close()

	if cfg.Watch {
		startWatcher(ctx, resolver, reader)
	}

	return server.Start(ctx, reader, server.Options{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		DistDir: cfg.Server.DistDir,
		CORS:    cfg.Server.CORS,
		Out:     os.Stdout,
	})
}

func startWatcher(ctx context.Context, resolver *detect.Resolver, reader *dashboard.Reader) {
	w, err := watch.New(resolver.Backend(), watch.Options{OnChange: reader.InvalidateCache})
	if err != nil {
		log.Printf("serve level=warn event=watch_disabled error=%v", err)
		return
	}
	go w.Run(ctx)
}
