package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	mkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestStorageCandidates_Order(t *testing.T) {
	opts := Options{
		StorageDir: "/explicit",
		Getenv: envMap(map[string]string{
			EnvStorageDir:   "/env",
			"XDG_DATA_HOME": "/xdg",
		}),
		GOOS:    "linux",
		HomeDir: "/home/u",
	}
	got := StorageCandidates(opts)
	want := []string{
		"/explicit",
		"/env",
		filepath.Join("/xdg", "opencode", "storage"),
		filepath.Join("/home/u", ".local", "share", "opencode", "storage"),
	}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates[%d] = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestStorageCandidates_WindowsFallbacks(t *testing.T) {
	opts := Options{
		Getenv: envMap(map[string]string{
			"LOCALAPPDATA": `C:\Users\u\AppData\Local`,
			"APPDATA":      `C:\Users\u\AppData\Roaming`,
		}),
		GOOS:    "windows",
		HomeDir: "/home/u",
	}
	got := StorageCandidates(opts)
	if len(got) < 3 {
		t.Fatalf("candidates = %v, want windows fallbacks", got)
	}
	if got[0] != filepath.Join(`C:\Users\u\AppData\Local`, "opencode", "storage") {
		t.Fatalf("candidates[0] = %q", got[0])
	}
	if got[1] != filepath.Join(`C:\Users\u\AppData\Roaming`, "opencode", "storage") {
		t.Fatalf("candidates[1] = %q", got[1])
	}
	if last := got[len(got)-1]; last != filepath.Join("/home/u", ".local", "share", "opencode", "storage") {
		t.Fatalf("last candidate = %q, want hard-coded default", last)
	}
}

func TestStorageCandidates_ExpandsHomeAndDedups(t *testing.T) {
	opts := Options{
		StorageDir: "~/.local/share/opencode/storage",
		Getenv:     envMap(nil),
		GOOS:       "linux",
		HomeDir:    "/home/u",
	}
	got := StorageCandidates(opts)
	if len(got) != 1 {
		t.Fatalf("candidates = %v, want a single deduplicated entry", got)
	}
}

func TestSelectStorageBase_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")
	def := filepath.Join(dir, "default")
	if got := SelectStorageBase([]string{missing, def}); got != def {
		t.Fatalf("SelectStorageBase = %q, want %q", got, def)
	}

	existing := filepath.Join(dir, "exists")
	mkdir(t, existing)
	if got := SelectStorageBase([]string{missing, existing, def}); got != existing {
		t.Fatalf("SelectStorageBase = %q, want %q", got, existing)
	}
}

func TestResolve_JSONWhenSessionsPresent(t *testing.T) {
	home := t.TempDir()
	base := filepath.Join(home, ".local", "share", "opencode", "storage")
	writeFile(t, filepath.Join(base, "session", "proj", "ses_1.json"), `{"id":"ses_1"}`)
	writeFile(t, filepath.Join(home, ".local", "share", "opencode", "opencode.db"), "")

	b := Resolve(Options{Getenv: envMap(nil), GOOS: "linux", HomeDir: home})
	jb, ok := b.(JSONBackend)
	if !ok {
		t.Fatalf("backend = %#v, want JSONBackend", b)
	}
	if jb.BasePath != base {
		t.Fatalf("BasePath = %q, want %q", jb.BasePath, base)
	}
}

func TestResolve_SQLiteWhenNoJSONSessions(t *testing.T) {
	home := t.TempDir()
	base := filepath.Join(home, ".local", "share", "opencode", "storage")
	mkdir(t, filepath.Join(base, "session"))
	dbPath := filepath.Join(home, ".local", "share", "opencode", "opencode.db")
	writeFile(t, dbPath, "")

	b := Resolve(Options{Getenv: envMap(nil), GOOS: "linux", HomeDir: home})
	sb, ok := b.(SQLiteBackend)
	if !ok {
		t.Fatalf("backend = %#v, want SQLiteBackend", b)
	}
	if sb.DBPath != dbPath || sb.BasePath != base {
		t.Fatalf("backend = %+v", sb)
	}
}

func TestResolve_DBEnvOverride(t *testing.T) {
	home := t.TempDir()
	custom := filepath.Join(t.TempDir(), "custom.db")
	writeFile(t, custom, "")

	b := Resolve(Options{Getenv: envMap(map[string]string{EnvDBPath: custom}), GOOS: "linux", HomeDir: home})
	sb, ok := b.(SQLiteBackend)
	if !ok || sb.DBPath != custom {
		t.Fatalf("backend = %#v, want SQLiteBackend at %s", b, custom)
	}
}

func TestResolve_NothingFoundDefaultsToJSON(t *testing.T) {
	home := t.TempDir()
	b := Resolve(Options{Getenv: envMap(nil), GOOS: "linux", HomeDir: home})
	jb, ok := b.(JSONBackend)
	if !ok {
		t.Fatalf("backend = %#v, want JSONBackend", b)
	}
	if want := filepath.Join(home, ".local", "share", "opencode", "storage"); jb.BasePath != want {
		t.Fatalf("BasePath = %q, want %q", jb.BasePath, want)
	}
}

func TestResolver_Memoizes(t *testing.T) {
	home := t.TempDir()
	r := NewResolver(Options{Getenv: envMap(nil), GOOS: "linux", HomeDir: home})
	first := r.Backend()
	if _, ok := first.(JSONBackend); !ok {
		t.Fatalf("first = %#v, want JSONBackend", first)
	}

	writeFile(t, filepath.Join(home, ".local", "share", "opencode", "opencode.db"), "")
	if second := r.Backend(); second != first {
		t.Fatalf("second = %#v, want memoized %#v", second, first)
	}
}

func TestHasJSONSessions(t *testing.T) {
	base := t.TempDir()
	if HasJSONSessions(base) {
		t.Fatal("missing session dir reported as json storage")
	}
	writeFile(t, filepath.Join(base, "session", "README.txt"), "x")
	if HasJSONSessions(base) {
		t.Fatal("non-json file reported as json storage")
	}
	writeFile(t, filepath.Join(base, "session", "ses_1.json"), "{}")
	if !HasJSONSessions(base) {
		t.Fatal("json file not detected")
	}
}

func TestDescribe(t *testing.T) {
	d := Describe(SQLiteBackend{BasePath: "/b", DBPath: "/b/../opencode.db"})
	if d.Kind != "sqlite" || d.DBPath == "" {
		t.Fatalf("Describe = %+v", d)
	}
	if d := Describe(JSONBackend{BasePath: "/b"}); d.Kind != "json" || d.BasePath != "/b" {
		t.Fatalf("Describe = %+v", d)
	}
}
