package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/janekbaraniewski/ohmydashboard/internal/config"
	"github.com/janekbaraniewski/ohmydashboard/internal/core"
	"github.com/janekbaraniewski/ohmydashboard/internal/dashboard"
	"github.com/janekbaraniewski/ohmydashboard/internal/detect"
)

type globalFlags struct {
	configPath string
	debug      bool
	storageDir string
	dbPath     string
}

func defaultConfigPathHint() string {
	return config.ConfigPath()
}

// loadConfig reads the settings file, then applies environment overrides and
// finally the global flags.
func (f *globalFlags) loadConfig() (config.Config, error) {
	path := strings.TrimSpace(f.configPath)
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg = config.ApplyEnv(cfg, os.Getenv)
	if v := strings.TrimSpace(f.storageDir); v != "" {
		cfg.Storage.StorageDir = v
	}
	if v := strings.TrimSpace(f.dbPath); v != "" {
		cfg.Storage.DBPath = v
	}
	return cfg, nil
}

func detectOptions(cfg config.Config) detect.Options {
	return detect.Options{
		StorageDir: cfg.Storage.StorageDir,
		DBPath:     cfg.Storage.DBPath,
	}
}

// newReader builds the query façade. The returned resolver is shared with the
// reader so the watcher observes the same backend decision.
func newReader(cfg config.Config) (*dashboard.Reader, *detect.Resolver) {
	resolver := detect.NewResolver(detectOptions(cfg))
	reader := dashboard.New(dashboard.Options{
		Resolver:  resolver,
		SQLiteCLI: cfg.Storage.SQLiteCLI,
		CacheTTL:  time.Duration(cfg.Cache.TTLSeconds) * time.Second,
	})
	return reader, resolver
}

func parseRange(s string) (core.DateRange, error) {
	rng, ok := core.ParseDateRange(s)
	if !ok {
		return rng, fmt.Errorf("invalid range %q: want one of today, week, month, all", s)
	}
	return rng, nil
}
