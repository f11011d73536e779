package model

import "time"

// Book is a catalog entry. Available is owned by the borrow ledger.
type Book struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	ISBN      string     `json:"isbn"`
	Available bool       `json:"available"`
	CoverMime string     `json:"cover_mime,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// BookPatch holds the catalog fields an update may change. Nil fields are
// left untouched.
type BookPatch struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	ISBN   *string `json:"isbn"`
}
