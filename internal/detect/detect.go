// Package detect decides which storage backend the agent runtime left on
// this workstation and where it lives.
package detect

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Environment overrides, checked before platform conventions.
const (
	EnvStorageDir         = "OHMYDASHBOARD_STORAGE_DIR"
	EnvOpenCodeStorageDir = "OPENCODE_STORAGE_DIR"
	EnvDBPath             = "OHMYDASHBOARD_DB_PATH"
	EnvOpenCodeDBPath     = "OPENCODE_DB_PATH"
)

const (
	appDirName = "opencode"
	storageDir = "storage"
	dbFileName = "opencode.db"
)

// Options controls candidate generation. Zero values read the real process
// environment.
type Options struct {
	// StorageDir and DBPath are explicit overrides (config file or flags).
	StorageDir string
	DBPath     string

	Getenv  func(string) string
	GOOS    string
	HomeDir string
}

func (o Options) withDefaults() Options {
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	if o.GOOS == "" {
		o.GOOS = runtime.GOOS
	}
	if o.HomeDir == "" {
		o.HomeDir = homeDir()
	}
	return o
}

func homeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return h
}

// expandHome resolves a leading ~ against home.
func expandHome(path, home string) string {
	path = strings.TrimSpace(path)
	if home == "" || path == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// dataDirs lists the per-user data roots that may hold the runtime's app
// directory, in priority order: XDG, then Windows conventions.
func dataDirs(o Options) []string {
	var dirs []string
	if xdg := strings.TrimSpace(o.Getenv("XDG_DATA_HOME")); xdg != "" {
		dirs = append(dirs, xdg)
	}
	if o.GOOS == "windows" {
		if local := strings.TrimSpace(o.Getenv("LOCALAPPDATA")); local != "" {
			dirs = append(dirs, local)
		}
		if roaming := strings.TrimSpace(o.Getenv("APPDATA")); roaming != "" {
			dirs = append(dirs, roaming)
		}
		if o.HomeDir != "" {
			dirs = append(dirs, filepath.Join(o.HomeDir, "AppData", "Local"))
		}
	}
	return dirs
}

// DefaultDataDir is the hard-coded last resort: ~/.local/share/opencode.
func DefaultDataDir(home string) string {
	return filepath.Join(home, ".local", "share", appDirName)
}

// StorageCandidates returns the ordered storage-base candidates. The last
// entry is always the hard-coded default.
func StorageCandidates(opts Options) []string {
	o := opts.withDefaults()
	candidates := []string{
		expandHome(o.StorageDir, o.HomeDir),
		expandHome(o.Getenv(EnvStorageDir), o.HomeDir),
		expandHome(o.Getenv(EnvOpenCodeStorageDir), o.HomeDir),
	}
	for _, dir := range dataDirs(o) {
		candidates = append(candidates, filepath.Join(dir, appDirName, storageDir))
	}
	candidates = append(candidates, filepath.Join(DefaultDataDir(o.HomeDir), storageDir))
	return lo.Uniq(lo.Compact(candidates))
}

// DBCandidates returns the ordered database-file candidates. base is the
// selected storage directory; the runtime keeps its database next to it.
func DBCandidates(opts Options, base string) []string {
	o := opts.withDefaults()
	candidates := []string{
		expandHome(o.DBPath, o.HomeDir),
		expandHome(o.Getenv(EnvDBPath), o.HomeDir),
		expandHome(o.Getenv(EnvOpenCodeDBPath), o.HomeDir),
	}
	if base != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(base), dbFileName))
	}
	for _, dir := range dataDirs(o) {
		candidates = append(candidates, filepath.Join(dir, appDirName, dbFileName))
	}
	candidates = append(candidates, filepath.Join(DefaultDataDir(o.HomeDir), dbFileName))
	return lo.Uniq(lo.Compact(candidates))
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// SelectStorageBase returns the first existing candidate directory, or the
// final (default) candidate when none exist.
func SelectStorageBase(candidates []string) string {
	for _, c := range candidates {
		if dirExists(c) {
			return c
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[len(candidates)-1]
}

// HasJSONSessions reports whether base/session holds at least one nested
// directory or JSON file.
func HasJSONSessions(base string) bool {
	entries, err := os.ReadDir(filepath.Join(base, "session"))
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() || strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			return true
		}
	}
	return false
}

// Resolve probes the filesystem once and picks a backend. It never fails: when
// nothing is found it returns a JSONBackend on the default path, whose reads
// then come back empty.
func Resolve(opts Options) Backend {
	base := SelectStorageBase(StorageCandidates(opts))
	if HasJSONSessions(base) {
		log.Printf("[detect] json storage at %s", base)
		return JSONBackend{BasePath: base}
	}
	for _, candidate := range DBCandidates(opts, base) {
		if fileExists(candidate) {
			log.Printf("[detect] sqlite storage at %s", candidate)
			return SQLiteBackend{BasePath: base, DBPath: candidate}
		}
	}
	log.Printf("[detect] no session data found, defaulting to json storage at %s", base)
	return JSONBackend{BasePath: base}
}

// Resolver memoizes Resolve: the first call probes, later calls observe the
// same decision for the life of the Resolver.
type Resolver struct {
	resolve func() Backend
}

func NewResolver(opts Options) *Resolver {
	return &Resolver{resolve: sync.OnceValue(func() Backend { return Resolve(opts) })}
}

// Static returns a Resolver that always yields b.
func Static(b Backend) *Resolver {
	return &Resolver{resolve: func() Backend { return b }}
}

func (r *Resolver) Backend() Backend {
	return r.resolve()
}
