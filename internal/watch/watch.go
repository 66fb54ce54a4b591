// Package watch invalidates the dashboard cache when the session store
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/janekbaraniewski/ohmydashboard/internal/detect"
)

// DefaultDebounce coalesces bursts of writes into one invalidation.
const DefaultDebounce = 500 * time.Millisecond

// jsonRecordDirs are the record-type directories watched under a JSON base.
var jsonRecordDirs = []string{"session", "message", "project"}

// Watcher calls OnChange at most once per debounce window after relevant
// filesystem events.
type Watcher struct {
	w        *fsnotify.Watcher
	filter   func(path string) bool
	onChange func()
	debounce time.Duration
}

type Options struct {
	Debounce time.Duration
	OnChange func()
}

// New starts watching the storage behind b. For a JSON backend that is the
// record directories and their immediate subdirectories; for SQLite it is
// the database file and its write-ahead log.
func New(b detect.Backend, opts Options) (*Watcher, error) {
	if opts.OnChange == nil {
		return nil, fmt.Errorf("watch: OnChange is required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{w: fw, onChange: opts.OnChange, debounce: debounce, filter: func(string) bool { return true }}

	var dirs []string
	switch v := b.(type) {
	case detect.SQLiteBackend:
		dirs = []string{filepath.Dir(v.DBPath)}
		w.filter = sqliteFilter(v.DBPath)
	case detect.JSONBackend:
		dirs = jsonDirs(v.BasePath)
	}

	added := 0
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			log.Printf("watch level=warn event=add_failed dir=%s error=%v", dir, err)
			continue
		}
		added++
	}
	if added == 0 {
		_ = fw.Close()
		return nil, fmt.Errorf("watch: nothing to watch for %s", detect.Describe(b).Kind)
	}
	log.Printf("watch level=info event=started dirs=%d", added)
	return w, nil
}

func jsonDirs(base string) []string {
	var out []string
	for _, name := range jsonRecordDirs {
		dir := filepath.Join(base, name)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		out = append(out, dir)
		for _, e := range entries {
			if e.IsDir() {
				out = append(out, filepath.Join(dir, e.Name()))
			}
		}
	}
	return out
}

func sqliteFilter(dbPath string) func(string) bool {
	clean := filepath.Clean(dbPath)
	return func(path string) bool {
		path = filepath.Clean(path)
		return path == clean || strings.HasPrefix(path, clean+"-")
	}
}

// Run delivers debounced change notifications until ctx is done, then closes
// the underlying watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.w.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				w.followNewDir(ev.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Printf("watch level=warn event=watch_error error=%v", err)
		case <-fire:
			timer, fire = nil, nil
			w.onChange()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return w.filter(ev.Name)
}

// followNewDir starts watching a directory created under a watched one, such
// as the message directory of a brand new session.
func (w *Watcher) followNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.w.Add(path); err != nil {
		log.Printf("watch level=warn event=add_failed dir=%s error=%v", path, err)
	}
}
