package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/knjiznica/internal/model"
)

const bookColumns = `id, title, author, isbn, available, cover_mime, created_at, updated_at, deleted_at`

// CreateBook adds a book to the catalog. New books are available. The ISBN
// is stored normalized.
func CreateBook(ctx context.Context, db *sql.DB, title, author, isbn string) (*model.Book, error) {
	isbn = NormalizeISBN(isbn)
	result, err := db.ExecContext(ctx,
		`INSERT INTO books (title, author, isbn) VALUES (?, ?, ?)`,
		title, author, isbn,
	)
	if isUniqueViolation(err, "books.isbn") {
		return nil, &ConflictError{Reason: ReasonISBNTaken}
	}
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting book id: %w", err)
	}

	return GetBook(ctx, db, id)
}

// GetBook returns a catalog book by ID, or nil if it does not exist or was deleted.
func GetBook(ctx context.Context, db *sql.DB, id int64) (*model.Book, error) {
	return getBook(ctx, db, id)
}

func getBook(ctx context.Context, q querier, id int64) (*model.Book, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND deleted_at IS NULL`, id,
	)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting book: %w", err)
	}
	return b, nil
}

// GetBookByISBN returns the active book with the given ISBN, or nil.
func GetBookByISBN(ctx context.Context, db *sql.DB, isbn string) (*model.Book, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = ? AND deleted_at IS NULL`, NormalizeISBN(isbn),
	)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting book by isbn: %w", err)
	}
	return b, nil
}

// ListBooks returns a page of active books ordered by title. If
// availableOnly is set, books on loan are left out. A non-empty query
// matches title or author.
func ListBooks(ctx context.Context, db *sql.DB, availableOnly bool, query string, page Page) ([]model.Book, error) {
	q := `SELECT ` + bookColumns + ` FROM books WHERE deleted_at IS NULL`
	var args []any

	if availableOnly {
		q += ` AND available = 1`
	}
	if query = strings.TrimSpace(query); query != "" {
		q += ` AND (title LIKE ? OR author LIKE ?)`
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}

	q, args = page.apply(q+` ORDER BY title, id`, args)

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// UpdateBook changes catalog fields. Availability is not editable here.
func UpdateBook(ctx context.Context, db *sql.DB, id int64, patch model.BookPatch) (*model.Book, error) {
	if patch.ISBN != nil {
		isbn := NormalizeISBN(*patch.ISBN)
		patch.ISBN = &isbn
	}
	result, err := db.ExecContext(ctx,
		`UPDATE books SET
		     title = COALESCE(?, title),
		     author = COALESCE(?, author),
		     isbn = COALESCE(?, isbn),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		patch.Title, patch.Author, patch.ISBN, id,
	)
	if isUniqueViolation(err, "books.isbn") {
		return nil, &ConflictError{Reason: ReasonISBNTaken, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("updating book: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &NotFoundError{Entity: EntityBook, ID: id}
	}

	return GetBook(ctx, db, id)
}

// DeleteBook soft-deletes a book. Fails if the book is currently on loan.
func DeleteBook(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var open int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrows WHERE book_id = ? AND returned_at IS NULL`, id,
	).Scan(&open)
	if err != nil {
		return fmt.Errorf("checking open borrows: %w", err)
	}
	if open > 0 {
		return &ConflictError{Reason: ReasonBookOnLoan, ID: id}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE books SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: EntityBook, ID: id}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing book deletion: %w", err)
	}
	return nil
}

// SetBookCover stores a processed cover image for a book.
func SetBookCover(ctx context.Context, db *sql.DB, id int64, cover []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE books SET cover = ?, cover_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		cover, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting book cover: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: EntityBook, ID: id}
	}
	return nil
}

// GetBookCover returns a book's cover and MIME type. Data is nil if the
// book has no cover.
func GetBookCover(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var cover []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT cover, cover_mime FROM books WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&cover, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting book cover: %w", err)
	}
	return cover, mime.String, nil
}

// setAvailability flips a book's availability flag. Only the borrow ledger
// calls it, inside the transaction that opens or closes a borrow.
func setAvailability(ctx context.Context, q querier, id int64, available bool) error {
	result, err := q.ExecContext(ctx,
		`UPDATE books SET available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		available, id,
	)
	if err != nil {
		return fmt.Errorf("setting book availability: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: EntityBook, ID: id}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(s rowScanner) (*model.Book, error) {
	b := &model.Book{}
	var coverMime sql.NullString
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Available, &coverMime,
		&b.CreatedAt, &b.UpdatedAt, &b.DeletedAt); err != nil {
		return nil, err
	}
	b.CoverMime = coverMime.String
	return b, nil
}
