// Package storage reads raw session, message, part and project records from
// the agent runtime's on-disk store. Every reader swallows read failures and
// returns an empty result at the smallest failing scope.
package storage

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
	"github.com/janekbaraniewski/ohmydashboard/internal/detect"
)

// Reader is the contract shared by the tree-JSON and SQLite readers.
type Reader interface {
	ListProjects(ctx context.Context) []core.RawProject
	ListSessions(ctx context.Context) []core.RawSession
	// ListMessages returns every message, or only those of sessionID when it
	// is non-empty.
	ListMessages(ctx context.Context, sessionID string) []core.RawMessage
	ListParts(ctx context.Context, messageID string) []core.RawPart
	Close() error
}

// Options configures Open.
type Options struct {
	// SQLiteCLI is the command used when the in-process driver is unavailable.
	SQLiteCLI string
	Now       func() time.Time
}

// Open returns the reader matching the resolved backend.
func Open(b detect.Backend, opts Options) Reader {
	switch v := b.(type) {
	case detect.SQLiteBackend:
		q := NewFallbackQuerier(NewDriverQuerier(v.DBPath), NewCLIQuerier(opts.SQLiteCLI, v.DBPath))
		return NewSQLiteReader(q, opts.Now)
	case detect.JSONBackend:
		return NewJSONReader(v.BasePath, opts.Now)
	default:
		return NewJSONReader("", opts.Now)
	}
}

func nowFunc(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

func warnf(event, format string, args ...any) {
	if strings.TrimSpace(format) == "" {
		log.Printf("storage level=warn event=%s", event)
		return
	}
	log.Printf("storage level=warn event=%s "+format, append([]any{event}, args...)...)
}

func infof(event, format string, args ...any) {
	if strings.TrimSpace(format) == "" {
		log.Printf("storage level=info event=%s", event)
		return
	}
	log.Printf("storage level=info event=%s "+format, append([]any{event}, args...)...)
}
