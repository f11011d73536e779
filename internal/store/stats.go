package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/knjiznica/internal/model"
)

// GetStatistics summarizes the catalog and circulation.
func GetStatistics(ctx context.Context, db *sql.DB) (*model.Statistics, error) {
	s := &model.Statistics{}
	err := db.QueryRowContext(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM books WHERE deleted_at IS NULL),
		     (SELECT COUNT(*) FROM books WHERE deleted_at IS NULL AND available = 1),
		     (SELECT COUNT(*) FROM members WHERE deleted_at IS NULL),
		     (SELECT COUNT(*) FROM borrows WHERE returned_at IS NULL),
		     (SELECT COUNT(*) FROM borrows)`,
	).Scan(&s.TotalBooks, &s.AvailableBooks, &s.TotalMembers, &s.ActiveBorrows, &s.TotalBorrows)
	if err != nil {
		return nil, fmt.Errorf("getting statistics: %w", err)
	}

	s.BorrowedBooks = s.TotalBooks - s.AvailableBooks
	if s.TotalBorrows > 0 {
		s.ReturnRate = float64(s.TotalBorrows-s.ActiveBorrows) / float64(s.TotalBorrows)
	}
	return s, nil
}

// AuditLedger lists books whose availability flag disagrees with their open
// borrows, or which have more than one open borrow. An empty result means
// the ledger is consistent.
func AuditLedger(ctx context.Context, db *sql.DB) ([]model.LedgerIssue, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT b.id, b.title, b.available, COUNT(br.id) AS open_borrows
		 FROM books b
		 LEFT JOIN borrows br ON br.book_id = b.id AND br.returned_at IS NULL
		 GROUP BY b.id
		 HAVING open_borrows > 1
		     OR (b.available = 1 AND open_borrows > 0)
		     OR (b.available = 0 AND open_borrows = 0)
		 ORDER BY b.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("auditing ledger: %w", err)
	}
	defer rows.Close()

	var issues []model.LedgerIssue
	for rows.Next() {
		var issue model.LedgerIssue
		if err := rows.Scan(&issue.BookID, &issue.Title, &issue.Available, &issue.OpenBorrows); err != nil {
			return nil, fmt.Errorf("scanning ledger issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}
