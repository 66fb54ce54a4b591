package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
	"github.com/janekbaraniewski/ohmydashboard/internal/parsers"
)

// Foreign-key column spellings seen across schema versions, tried in order.
var (
	sessionFKColumns = []string{"sessionId", "session_id", "sessionID"}
	messageFKColumns = []string{"messageId", "message_id", "messageID"}
)

// SQLiteReader reads records from the runtime's SQLite database through a
// Querier. Rows are normalized by the parsers package exactly like JSON files.
type SQLiteReader struct {
	q   Querier
	now func() time.Time
}

func NewSQLiteReader(q Querier, now func() time.Time) *SQLiteReader {
	return &SQLiteReader{q: q, now: nowFunc(now)}
}

func (r *SQLiteReader) Close() error {
	if r.q == nil {
		return nil
	}
	return r.q.Close()
}

func (r *SQLiteReader) ListProjects(ctx context.Context) []core.RawProject {
	now := r.now()
	var out []core.RawProject
	for _, row := range r.selectAll(ctx, "project") {
		if p, ok := parsers.Project(row, now); ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *SQLiteReader) ListSessions(ctx context.Context) []core.RawSession {
	now := r.now()
	var out []core.RawSession
	for _, row := range r.selectAll(ctx, "session") {
		if s, ok := parsers.Session(row, now); ok {
			out = append(out, s)
		}
	}
	return out
}

func (r *SQLiteReader) ListMessages(ctx context.Context, sessionID string) []core.RawMessage {
	var rows []parsers.Row
	if sessionID == "" {
		rows = r.selectAll(ctx, "message")
	} else {
		rows = r.selectBy(ctx, "message", sessionFKColumns, sessionID)
	}

	now := r.now()
	var out []core.RawMessage
	for _, row := range rows {
		m, ok := parsers.Message(row, now)
		if !ok {
			continue
		}
		if m.SessionID == "" {
			m.SessionID = sessionID
		}
		out = append(out, m)
	}
	return out
}

func (r *SQLiteReader) ListParts(ctx context.Context, messageID string) []core.RawPart {
	if messageID == "" {
		return nil
	}
	var out []core.RawPart
	for _, row := range r.selectBy(ctx, "part", messageFKColumns, messageID) {
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

func (r *SQLiteReader) selectAll(ctx context.Context, table string) []parsers.Row {
	if r.q == nil {
		return nil
	}
	rows, err := r.q.Query(ctx, "SELECT * FROM "+table)
	if err != nil {
		warnf("sqlite_query_failed", "table=%s error=%v", table, err)
		return nil
	}
	return rows
}

// selectBy filters table by value, trying each candidate column until one
// exists. Unknown columns move on to the next candidate; any other failure
// ends the lookup with no rows.
func (r *SQLiteReader) selectBy(ctx context.Context, table string, columns []string, value string) []parsers.Row {
	if r.q == nil {
		return nil
	}
	for _, col := range columns {
		query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s", table, col, Quote(value))
		rows, err := r.q.Query(ctx, query)
		if err == nil {
			return rows
		}
		if !isSchemaError(err) {
			warnf("sqlite_query_failed", "table=%s column=%s error=%v", table, col, err)
			return nil
		}
	}
	warnf("sqlite_filter_column_missing", "table=%s", table)
	return nil
}
