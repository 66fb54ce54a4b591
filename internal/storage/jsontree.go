package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
	"github.com/janekbaraniewski/ohmydashboard/internal/parsers"
)

// maxParallelFiles bounds concurrent file reads within one directory.
const maxParallelFiles = 16

// JSONReader walks the runtime's JSON storage tree:
//
//	<base>/project/<id>.json
//	<base>/session/<projectID>/<id>.json   (or <base>/session/<id>.json)
//	<base>/message/<sessionID>/<id>.json
//	<base>/part/<messageID>/<id>.json
type JSONReader struct {
	base string
	now  func() time.Time
}

func NewJSONReader(base string, now func() time.Time) *JSONReader {
	return &JSONReader{base: base, now: nowFunc(now)}
}

func (r *JSONReader) Close() error { return nil }

func (r *JSONReader) ListProjects(ctx context.Context) []core.RawProject {
	now := r.now()
	var out []core.RawProject
	for _, row := range r.readDir(ctx, filepath.Join(r.base, "project")) {
		if p, ok := parsers.Project(row, now); ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *JSONReader) ListSessions(ctx context.Context) []core.RawSession {
	now := r.now()
	var out []core.RawSession
	for _, tr := range r.readTree(ctx, filepath.Join(r.base, "session")) {
		s, ok := parsers.Session(tr.row, now)
		if !ok {
			continue
		}
		if s.ProjectID == "" {
			s.ProjectID = tr.parent
		}
		out = append(out, s)
	}
	return out
}

func (r *JSONReader) ListMessages(ctx context.Context, sessionID string) []core.RawMessage {
	var rows []treeRow
	if sessionID == "" {
		rows = r.readTree(ctx, filepath.Join(r.base, "message"))
	} else {
		dir, ok := r.childDir("message", sessionID)
		if !ok {
			return nil
		}
		for _, row := range r.readDir(ctx, dir) {
			rows = append(rows, treeRow{parent: sessionID, row: row})
		}
	}

	now := r.now()
	var out []core.RawMessage
	for _, tr := range rows {
		m, ok := parsers.Message(tr.row, now)
		if !ok {
			continue
		}
		if m.SessionID == "" {
			m.SessionID = tr.parent
		}
		out = append(out, m)
	}
	return out
}

func (r *JSONReader) ListParts(ctx context.Context, messageID string) []core.RawPart {
	dir, ok := r.childDir("part", messageID)
	if !ok {
		return nil
	}
	var out []core.RawPart
	for _, row := range r.readDir(ctx, dir) {
		p, ok := parsers.Part(row)
		if !ok {
			continue
		}
		if p.MessageID == "" {
			p.MessageID = messageID
		}
		out = append(out, p)
	}
	return out
}

// childDir joins an id onto a record-type directory, rejecting ids that would
// escape it.
func (r *JSONReader) childDir(kind, id string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", false
	}
	return filepath.Join(r.base, kind, id), true
}

// treeRow is a decoded file together with the name of the subdirectory it was
// found in, empty for files directly under the tree root.
type treeRow struct {
	parent string
	row    parsers.Row
}

// readTree reads JSON files directly under dir plus those one level down in
// its subdirectories.
func (r *JSONReader) readTree(ctx context.Context, dir string) []treeRow {
	if r.base == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			warnf("read_dir_failed", "dir=%s error=%v", dir, err)
		}
		return nil
	}

	var out []treeRow
	for _, row := range r.readFiles(ctx, dir, entries) {
		out = append(out, treeRow{row: row})
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return out
		}
		if !e.IsDir() {
			continue
		}
		for _, row := range r.readDir(ctx, filepath.Join(dir, e.Name())) {
			out = append(out, treeRow{parent: e.Name(), row: row})
		}
	}
	return out
}

// readDir reads every *.json file directly under dir.
func (r *JSONReader) readDir(ctx context.Context, dir string) []parsers.Row {
	if r.base == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			warnf("read_dir_failed", "dir=%s error=%v", dir, err)
		}
		return nil
	}
	return r.readFiles(ctx, dir, entries)
}

func (r *JSONReader) readFiles(ctx context.Context, dir string, entries []os.DirEntry) []parsers.Row {
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil
	}

	rows := make([]parsers.Row, len(files))
	var g errgroup.Group
	g.SetLimit(maxParallelFiles)
	for i, path := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			rows[i] = readJSONFile(path)
			return nil
		})
	}
	_ = g.Wait()

	out := rows[:0]
	for _, row := range rows {
		if row != nil {
			out = append(out, row)
		}
	}
	return out
}

// readJSONFile returns nil when the file cannot be read or parsed.
func readJSONFile(path string) parsers.Row {
	data, err := os.ReadFile(path)
	if err != nil {
		warnf("read_file_failed", "path=%s error=%v", path, err)
		return nil
	}
	row, err := parsers.Decode(data)
	if err != nil {
		warnf("parse_file_failed", "path=%s error=%v", path, err)
		return nil
	}
	return row
}
