package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const (
	EnvStorageDir = "OHMYDASHBOARD_STORAGE_DIR"
	EnvDBPath     = "OHMYDASHBOARD_DB_PATH"
	EnvPort       = "OHMYDASHBOARD_PORT"
	EnvHost       = "OHMYDASHBOARD_HOST"

	DefaultHost            = "127.0.0.1"
	DefaultPort            = 51234
	DefaultDistDir         = "dist"
	DefaultSQLiteCLI       = "sqlite3"
	DefaultCacheTTLSeconds = 30
	DefaultRefreshSeconds  = 15
	DefaultTheme           = "Catppuccin Mocha"
)

type ServerConfig struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	DistDir string `json:"dist_dir"`
	CORS    bool   `json:"cors"`
}

type StorageConfig struct {
	StorageDir string `json:"storage_dir,omitempty"`
	DBPath     string `json:"db_path,omitempty"`
	SQLiteCLI  string `json:"sqlite_cli"`
}

type CacheConfig struct {
	TTLSeconds int `json:"ttl_seconds"`
}

type UIConfig struct {
	RefreshIntervalSeconds int `json:"refresh_interval_seconds"`
}

type Config struct {
	Server  ServerConfig  `json:"server"`
	Storage StorageConfig `json:"storage"`
	Cache   CacheConfig   `json:"cache"`
	UI      UIConfig      `json:"ui"`
	Theme   string        `json:"theme"`
	Watch   bool          `json:"watch"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:    DefaultHost,
			Port:    DefaultPort,
			DistDir: DefaultDistDir,
			CORS:    true,
		},
		Storage: StorageConfig{SQLiteCLI: DefaultSQLiteCLI},
		Cache:   CacheConfig{TTLSeconds: DefaultCacheTTLSeconds},
		UI:      UIConfig{RefreshIntervalSeconds: DefaultRefreshSeconds},
		Theme:   DefaultTheme,
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "ohmydashboard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ohmydashboard")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the settings file at path. A missing file yields defaults;
// zero or invalid values are reset to their defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.Server.Host) == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		cfg.Server.Port = def.Server.Port
	}
	if strings.TrimSpace(cfg.Server.DistDir) == "" {
		cfg.Server.DistDir = def.Server.DistDir
	}
	if strings.TrimSpace(cfg.Storage.SQLiteCLI) == "" {
		cfg.Storage.SQLiteCLI = def.Storage.SQLiteCLI
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = def.Cache.TTLSeconds
	}
	if cfg.UI.RefreshIntervalSeconds <= 0 {
		cfg.UI.RefreshIntervalSeconds = def.UI.RefreshIntervalSeconds
	}
	if strings.TrimSpace(cfg.Theme) == "" {
		cfg.Theme = def.Theme
	}
}

// ApplyEnv overlays environment overrides onto cfg. Unparseable ports are
// ignored.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvStorageDir)); v != "" {
		cfg.Storage.StorageDir = v
	}
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := strings.TrimSpace(getenv(EnvHost)); v != "" {
		cfg.Server.Host = v
	}
	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			cfg.Server.Port = port
		}
	}
	return cfg
}

// writeMu serializes writers of the settings file within the process.
var writeMu sync.Mutex

// SaveTo writes cfg to path. The file is replaced through a rename, so readers
// see either the old or the new settings.
func SaveTo(path string, cfg Config) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	return writeFile(path, cfg)
}

func writeFile(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("config: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("config: chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("config: replace %s: %w", path, err)
	}
	return nil
}

// SaveTheme records the theme in the default settings file.
func SaveTheme(theme string) error {
	return SaveThemeTo(ConfigPath(), theme)
}

// SaveThemeTo updates the theme in the settings file at path, keeping every
// other field. A file that fails to parse is left as it is and the parse
// error is returned.
func SaveThemeTo(path string, theme string) error {
	writeMu.Lock()
	defer writeMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		return fmt.Errorf("config: save theme: %w", err)
	}
	cfg.Theme = theme
	return writeFile(path, cfg)
}
