package store

import (
	"context"
	"database/sql"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so lookups can run
// inside a ledger transaction or on their own.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DefaultPageLimit is how many rows a list returns when the caller does not
// say.
const DefaultPageLimit = 100

// Page selects a window of an ordered list: Limit rows after skipping Skip.
// A negative Limit means no limit.
type Page struct {
	Skip  int
	Limit int
}

// DefaultPage is the first DefaultPageLimit rows.
var DefaultPage = Page{Limit: DefaultPageLimit}

// AllRows selects the whole list.
var AllRows = Page{Limit: -1}

func (p Page) apply(query string, args []any) (string, []any) {
	return query + ` LIMIT ? OFFSET ?`, append(args, p.Limit, max(p.Skip, 0))
}
