package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janekbaraniewski/ohmydashboard/internal/config"
	"github.com/janekbaraniewski/ohmydashboard/internal/core"
	"github.com/janekbaraniewski/ohmydashboard/internal/detect"
	"github.com/janekbaraniewski/ohmydashboard/internal/tui"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, `{"storage":{"storage_dir":"/from/file","db_path":"/file.db"},"server":{"port":6000}}`)
	t.Setenv(config.EnvStorageDir, "/from/env")
	t.Setenv(config.EnvDBPath, "")
	t.Setenv(config.EnvPort, "")
	t.Setenv(config.EnvHost, "")

	gf := &globalFlags{configPath: path}
	cfg, err := gf.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Storage.StorageDir != "/from/env" {
		t.Errorf("StorageDir = %q, want env override", cfg.Storage.StorageDir)
	}
	if cfg.Storage.DBPath != "/file.db" {
		t.Errorf("DBPath = %q, want value from file", cfg.Storage.DBPath)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Port = %d, want 6000", cfg.Server.Port)
	}

	gf.storageDir = "/from/flag"
	cfg, err = gf.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Storage.StorageDir != "/from/flag" {
		t.Errorf("StorageDir = %q, want flag override", cfg.Storage.StorageDir)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	gf := &globalFlags{configPath: writeConfig(t, `{not json`)}
	if _, err := gf.loadConfig(); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestServeFlagsApply(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.CORS = true

	got := (&serveFlags{}).apply(cfg)
	if got.Server.Port != config.DefaultPort || got.Server.Host != config.DefaultHost || !got.Server.CORS {
		t.Errorf("empty flags changed config: %+v", got.Server)
	}

	got = (&serveFlags{host: "0.0.0.0", port: 8080, dist: "web", noCORS: true, watch: true}).apply(cfg)
	if got.Server.Host != "0.0.0.0" || got.Server.Port != 8080 || got.Server.DistDir != "web" {
		t.Errorf("server = %+v", got.Server)
	}
	if got.Server.CORS {
		t.Error("CORS should be disabled by --no-cors")
	}
	if !got.Watch {
		t.Error("Watch should be enabled by --watch")
	}
}

func TestParseRange(t *testing.T) {
	rng, err := parseRange("week")
	if err != nil || rng != core.RangeWeek {
		t.Errorf("parseRange(week) = %q, %v", rng, err)
	}
	if _, err := parseRange("fortnight"); err == nil {
		t.Error("expected error for unknown range")
	}
}

func TestWriteDetectReport(t *testing.T) {
	report := detectReport{
		Backend:           detect.Descriptor{Kind: "sqlite", BasePath: "/s", DBPath: "/s/opencode.db"},
		StorageCandidates: []string{"/s"},
		DBCandidates:      []string{"/s/opencode.db"},
	}

	var buf bytes.Buffer
	if err := writeDetectReport(&buf, report, false); err != nil {
		t.Fatalf("writeDetectReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"BACKEND", "sqlite", "DATABASE", "/s/opencode.db", "Storage candidates:"} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := writeDetectReport(&buf, report, true); err != nil {
		t.Fatalf("writeDetectReport json: %v", err)
	}
	var decoded detectReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Backend != report.Backend {
		t.Errorf("backend = %+v, want %+v", decoded.Backend, report.Backend)
	}
}

func TestDetectCommand_EmptyStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvStorageDir, "")
	t.Setenv(config.EnvDBPath, "")
	t.Setenv(detect.EnvOpenCodeStorageDir, "")
	t.Setenv(detect.EnvOpenCodeDBPath, "")
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"detect", "--json", "--config", filepath.Join(dir, "missing.json"), "--storage-dir", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("detect: %v", err)
	}

	var report detectReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if report.Backend.Kind != "json" {
		t.Errorf("kind = %q, want json", report.Backend.Kind)
	}
	if len(report.StorageCandidates) == 0 || report.StorageCandidates[0] != dir {
		t.Errorf("storage candidates = %v, want %s first", report.StorageCandidates, dir)
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "ohmydashboard ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestWriteSnapshot_JSON(t *testing.T) {
	snap := tui.Snapshot{Range: core.RangeWeek, Backend: detect.Descriptor{Kind: "json", BasePath: "/s"}}
	var buf bytes.Buffer
	if err := writeSnapshot(&buf, snap, true, 80); err != nil {
		t.Fatalf("writeSnapshot: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["range"] != "week" {
		t.Errorf("range = %v, want week", decoded["range"])
	}
}
