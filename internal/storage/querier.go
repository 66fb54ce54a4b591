package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/janekbaraniewski/ohmydashboard/internal/parsers"
)

// ErrQueryUnavailable is returned when no query strategy could run a query.
var ErrQueryUnavailable = errors.New("storage: no sqlite query path available")

// Querier runs a read-only SQL statement and returns rows keyed by column
// name. Implementations must produce the same row shape so the normalizer
// can consume them uniformly.
type Querier interface {
	Query(ctx context.Context, query string) ([]parsers.Row, error)
	Close() error
}

// Quote renders a string literal for interpolation into SQL, doubling single
// quotes. It is only for values; table and column names must be constants.
func Quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// isSchemaError reports errors caused by the statement itself (an unknown
// table or column) rather than by the query path.
func isSchemaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such column") || strings.Contains(msg, "no such table")
}

// isCancelled reports whether err comes from the caller giving up rather than
// from the query path.
func isCancelled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// FallbackQuerier tries primary and, when it fails for reasons other than the
// statement's schema or a cancelled context, runs the same query through secondary. The caller
// cannot tell which path produced the rows.
type FallbackQuerier struct {
	primary   Querier
	secondary Querier
}

func NewFallbackQuerier(primary, secondary Querier) *FallbackQuerier {
	return &FallbackQuerier{primary: primary, secondary: secondary}
}

func (f *FallbackQuerier) Query(ctx context.Context, query string) ([]parsers.Row, error) {
	var primaryErr error
	if f.primary != nil {
		rows, err := f.primary.Query(ctx, query)
		if err == nil {
			return rows, nil
		}
		if isSchemaError(err) || isCancelled(ctx, err) {
			return nil, err
		}
		primaryErr = err
	}
	if f.secondary == nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryUnavailable, primaryErr)
	}

	rows, err := f.secondary.Query(ctx, query)
	if err == nil {
		return rows, nil
	}
	if isSchemaError(err) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", ErrQueryUnavailable, errors.Join(primaryErr, err))
}

func (f *FallbackQuerier) Close() error {
	var errs []error
	if f.primary != nil {
		errs = append(errs, f.primary.Close())
	}
	if f.secondary != nil {
		errs = append(errs, f.secondary.Close())
	}
	return errors.Join(errs...)
}
