package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/janekbaraniewski/ohmydashboard/internal/parsers"
)

// maxDriverFailures is how many consecutive in-process failures disable the
// driver path for the rest of the process.
const maxDriverFailures = 3

var errDriverDisabled = errors.New("storage: sqlite driver disabled after repeated failures")

// DriverQuerier queries the database in-process through database/sql. The
// connection is opened lazily on first use and reused afterwards.
type DriverQuerier struct {
	path string

	mu       sync.Mutex
	db       *sql.DB
	failures int
	disabled bool
}

func NewDriverQuerier(path string) *DriverQuerier {
	return &DriverQuerier{path: path}
}

// Disabled reports whether the driver path has been given up on.
func (d *DriverQuerier) Disabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disabled
}

func (d *DriverQuerier) Query(ctx context.Context, query string) ([]parsers.Row, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := queryRows(ctx, db, query)
	if err != nil {
		if !isSchemaError(err) && !isCancelled(ctx, err) {
			d.recordFailure(err)
		}
		return nil, err
	}
	d.recordSuccess()
	return rows, nil
}

func (d *DriverQuerier) conn(ctx context.Context) (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disabled {
		return nil, errDriverDisabled
	}
	if d.db != nil {
		return d.db, nil
	}
	if _, err := os.Stat(d.path); err != nil {
		return nil, d.failLocked(fmt.Errorf("stat sqlite db: %w", err))
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", d.path))
	if err != nil {
		return nil, d.failLocked(fmt.Errorf("open sqlite db: %w", err))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		err = fmt.Errorf("ping sqlite db: %w", err)
		if isCancelled(ctx, err) {
			return nil, err
		}
		return nil, d.failLocked(err)
	}
	infof("sqlite_driver_open", "path=%s", d.path)
	d.db = db
	return db, nil
}

func (d *DriverQuerier) recordFailure(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.failLocked(err)
}

func (d *DriverQuerier) recordSuccess() {
	d.mu.Lock()
	d.failures = 0
	d.mu.Unlock()
}

func (d *DriverQuerier) failLocked(err error) error {
	d.failures++
	if d.failures >= maxDriverFailures && !d.disabled {
		d.disabled = true
		if d.db != nil {
			_ = d.db.Close()
			d.db = nil
		}
		warnf("sqlite_driver_disabled", "path=%s failures=%d error=%v", d.path, d.failures, err)
	}
	return err
}

func (d *DriverQuerier) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

func queryRows(ctx context.Context, db *sql.DB, query string) ([]parsers.Row, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []parsers.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(parsers.Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
