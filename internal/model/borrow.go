package model

import (
	"encoding/json"
	"time"
)

// Borrow records one loan of a book to a member. A borrow is open until
// ReturnedAt is set; once set it never changes.
type Borrow struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	MemberID   int64      `json:"member_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at"`

	// Joined fields (not always populated).
	BookTitle  string `json:"book_title,omitempty"`
	MemberName string `json:"member_name,omitempty"`
}

// IsReturned reports whether the borrow has been closed.
func (b *Borrow) IsReturned() bool {
	return b.ReturnedAt != nil
}

// MarshalJSON adds the derived is_returned field.
func (b Borrow) MarshalJSON() ([]byte, error) {
	type plain Borrow
	return json.Marshal(struct {
		plain
		IsReturned bool `json:"is_returned"`
	}{plain(b), b.IsReturned()})
}

// Statistics summarizes the catalog and circulation.
type Statistics struct {
	TotalBooks     int     `json:"total_books"`
	AvailableBooks int     `json:"available_books"`
	BorrowedBooks  int     `json:"borrowed_books"`
	TotalMembers   int     `json:"total_members"`
	ActiveBorrows  int     `json:"active_borrows"`
	TotalBorrows   int     `json:"total_borrows_all_time"`
	ReturnRate     float64 `json:"return_rate"`
}

// LedgerIssue describes a book whose availability flag disagrees with its
// open borrows.
type LedgerIssue struct {
	BookID      int64  `json:"book_id"`
	Title       string `json:"title"`
	Available   bool   `json:"available"`
	OpenBorrows int    `json:"open_borrows"`
}
