package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/knjiznica/internal/model"
)

// CreateBorrow lends a book to a member. The availability check, the flag
// flip and the borrow insert run in one transaction; the conditional update
// on the book row is the check, so two concurrent borrows of the same book
// cannot both succeed.
func CreateBorrow(ctx context.Context, db *sql.DB, bookID, memberID int64) (*model.Borrow, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	book, err := getBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, &NotFoundError{Entity: EntityBook, ID: bookID}
	}

	member, err := getMember(ctx, tx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &NotFoundError{Entity: EntityMember, ID: memberID}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE books SET available = 0, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND available = 1 AND deleted_at IS NULL`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("claiming book: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claiming book: %w", err)
	}
	if n == 0 {
		return nil, &ConflictError{Reason: ReasonBookNotAvailable, ID: bookID}
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO borrows (book_id, member_id, borrowed_at) VALUES (?, ?, ?)`,
		bookID, memberID, time.Now().UTC(),
	)
	if isUniqueViolation(err, "borrows.book_id") {
		return nil, &ConflictError{Reason: ReasonBookNotAvailable, ID: bookID}
	}
	if err != nil {
		return nil, fmt.Errorf("recording borrow: %w", err)
	}

	borrowID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting borrow id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing borrow: %w", err)
	}

	return GetBorrow(ctx, db, borrowID)
}

// ReturnBorrow closes an open borrow and makes the book available again,
// in one transaction. A borrow can be returned once; later calls get a
// ConflictError and leave returned_at unchanged.
func ReturnBorrow(ctx context.Context, db *sql.DB, borrowID int64) (*model.Borrow, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	borrow, err := getBorrow(ctx, tx, borrowID)
	if err != nil {
		return nil, err
	}
	if borrow == nil {
		return nil, &NotFoundError{Entity: EntityBorrow, ID: borrowID}
	}
	if borrow.IsReturned() {
		return nil, &ConflictError{Reason: ReasonAlreadyReturned, ID: borrowID}
	}

	returnedAt := time.Now().UTC()
	if returnedAt.Before(borrow.BorrowedAt) {
		returnedAt = borrow.BorrowedAt
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE borrows SET returned_at = ? WHERE id = ? AND returned_at IS NULL`,
		returnedAt, borrowID,
	)
	if err != nil {
		return nil, fmt.Errorf("closing borrow: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("closing borrow: %w", err)
	}
	if n == 0 {
		return nil, &ConflictError{Reason: ReasonAlreadyReturned, ID: borrowID}
	}

	if err := setAvailability(ctx, tx, borrow.BookID, true); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing return: %w", err)
	}

	return GetBorrow(ctx, db, borrowID)
}

const borrowSelect = `SELECT br.id, br.book_id, br.member_id, br.borrowed_at, br.returned_at,
	       COALESCE(b.title, ''), COALESCE(m.name, '')
	FROM borrows br
	LEFT JOIN books b ON b.id = br.book_id
	LEFT JOIN members m ON m.id = br.member_id`

// GetBorrow returns a borrow by ID, or nil.
func GetBorrow(ctx context.Context, db *sql.DB, id int64) (*model.Borrow, error) {
	return getBorrow(ctx, db, id)
}

func getBorrow(ctx context.Context, q querier, id int64) (*model.Borrow, error) {
	row := q.QueryRowContext(ctx, borrowSelect+` WHERE br.id = ?`, id)
	b, err := scanBorrow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting borrow: %w", err)
	}
	return b, nil
}

// ListBorrows returns a page of borrows in creation order, oldest first.
// With activeOnly set, only open borrows are returned.
func ListBorrows(ctx context.Context, db *sql.DB, activeOnly bool, page Page) ([]model.Borrow, error) {
	query := borrowSelect
	if activeOnly {
		query += ` WHERE br.returned_at IS NULL`
	}
	query, args := page.apply(query+` ORDER BY br.id`, nil)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing borrows: %w", err)
	}
	defer rows.Close()

	return scanBorrows(rows)
}

// GetMemberHistory returns every borrow of a member, open and returned.
func GetMemberHistory(ctx context.Context, db *sql.DB, memberID int64) ([]model.Borrow, error) {
	member, err := GetMember(ctx, db, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &NotFoundError{Entity: EntityMember, ID: memberID}
	}

	rows, err := db.QueryContext(ctx,
		borrowSelect+` WHERE br.member_id = ? ORDER BY br.id`, memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting member history: %w", err)
	}
	defer rows.Close()

	return scanBorrows(rows)
}

// GetBookHistory returns every borrow of a book.
func GetBookHistory(ctx context.Context, db *sql.DB, bookID int64) ([]model.Borrow, error) {
	book, err := GetBook(ctx, db, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, &NotFoundError{Entity: EntityBook, ID: bookID}
	}

	rows, err := db.QueryContext(ctx,
		borrowSelect+` WHERE br.book_id = ? ORDER BY br.id`, bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting book history: %w", err)
	}
	defer rows.Close()

	return scanBorrows(rows)
}

func scanBorrow(s rowScanner) (*model.Borrow, error) {
	b := &model.Borrow{}
	if err := s.Scan(&b.ID, &b.BookID, &b.MemberID, &b.BorrowedAt, &b.ReturnedAt,
		&b.BookTitle, &b.MemberName); err != nil {
		return nil, err
	}
	b.BorrowedAt = b.BorrowedAt.UTC()
	if b.ReturnedAt != nil {
		r := b.ReturnedAt.UTC()
		b.ReturnedAt = &r
	}
	return b, nil
}

func scanBorrows(rows *sql.Rows) ([]model.Borrow, error) {
	var borrows []model.Borrow
	for rows.Next() {
		b, err := scanBorrow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning borrow: %w", err)
		}
		borrows = append(borrows, *b)
	}
	return borrows, rows.Err()
}
