package assistant

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// searchLimit caps how many books a search returns to the agent.
const searchLimit = 10

type noArgs struct{}

type queryArgs struct {
	Query string `json:"query"`
}

func (a *queryArgs) validate() error {
	if strings.TrimSpace(a.Query) == "" {
		return invalidArgs("query is required")
	}
	return nil
}

type bookIDArgs struct {
	BookID int64 `json:"book_id"`
}

func (a *bookIDArgs) validate() error {
	if a.BookID <= 0 {
		return invalidArgs("book_id must be a positive integer")
	}
	return nil
}

type memberIDArgs struct {
	MemberID int64 `json:"member_id"`
}

func (a *memberIDArgs) validate() error {
	if a.MemberID <= 0 {
		return invalidArgs("member_id must be a positive integer")
	}
	return nil
}

type borrowArgs struct {
	BookID   int64 `json:"book_id"`
	MemberID int64 `json:"member_id"`
}

func (a *borrowArgs) validate() error {
	if a.BookID <= 0 || a.MemberID <= 0 {
		return invalidArgs("book_id and member_id must be positive integers")
	}
	return nil
}

type returnArgs struct {
	BorrowID int64 `json:"borrow_id"`
}

func (a *returnArgs) validate() error {
	if a.BorrowID <= 0 {
		return invalidArgs("borrow_id must be a positive integer")
	}
	return nil
}

type listBorrowsArgs struct {
	ActiveOnly bool `json:"active_only"`
	Skip       int  `json:"skip"`
	Limit      int  `json:"limit"`
}

func (a *listBorrowsArgs) validate() error {
	if a.Skip < 0 || a.Limit < 0 {
		return invalidArgs("skip and limit must not be negative")
	}
	return nil
}

func (a *listBorrowsArgs) page() store.Page {
	limit := a.Limit
	if limit == 0 {
		limit = store.DefaultPageLimit
	}
	return store.Page{Skip: a.Skip, Limit: limit}
}

type addBookArgs struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

func (a *addBookArgs) validate() error {
	if a.Title == "" || a.Author == "" || store.NormalizeISBN(a.ISBN) == "" {
		return invalidArgs("title, author and isbn are required")
	}
	return nil
}

type updateBookArgs struct {
	BookID int64 `json:"book_id"`
	model.BookPatch
}

func (a *updateBookArgs) validate() error {
	if a.BookID <= 0 {
		return invalidArgs("book_id must be a positive integer")
	}
	if a.Title == nil && a.Author == nil && a.ISBN == nil {
		return invalidArgs("nothing to update")
	}
	if a.ISBN != nil && store.NormalizeISBN(*a.ISBN) == "" {
		return invalidArgs("isbn %q is not valid", *a.ISBN)
	}
	return nil
}

type addMemberArgs struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (a *addMemberArgs) validate() error {
	if a.Name == "" || a.Email == "" {
		return invalidArgs("name and email are required")
	}
	if !strings.Contains(a.Email, "@") {
		return invalidArgs("email %q is not valid", a.Email)
	}
	return nil
}

type updateMemberArgs struct {
	MemberID int64 `json:"member_id"`
	model.MemberPatch
}

func (a *updateMemberArgs) validate() error {
	if a.MemberID <= 0 {
		return invalidArgs("member_id must be a positive integer")
	}
	if a.Name == nil && a.Email == nil && a.Phone == nil {
		return invalidArgs("nothing to update")
	}
	return nil
}

// availability is the agent-facing view of one book.
type availability struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
	Status    string `json:"status"`
}

// memberHistory is the agent-facing view of a member's borrows.
type memberHistory struct {
	MemberName    string         `json:"member_name"`
	MemberEmail   string         `json:"member_email"`
	TotalBorrows  int            `json:"total_borrows"`
	ActiveBorrows int            `json:"active_borrows"`
	History       []model.Borrow `json:"history"`
}

type message struct {
	Message string `json:"message"`
}

func registerTools(r *Registry) {
	idParam := func(name, what string) Parameter {
		return Parameter{Name: name, Type: "integer", Required: true, Description: what}
	}

	register(r, "search_books", "Search for books by title or author.",
		[]Parameter{{Name: "query", Type: "string", Required: true, Description: "title or author to look for"}},
		func(ctx context.Context, db *sql.DB, a queryArgs) (any, error) {
			books, err := store.ListBooks(ctx, db, false, a.Query, store.Page{Limit: searchLimit})
			if err != nil {
				return nil, err
			}
			return nonNil(books), nil
		})

	register(r, "check_book_availability", "Check whether a book can be borrowed right now.",
		[]Parameter{idParam("book_id", "the book to check")},
		func(ctx context.Context, db *sql.DB, a bookIDArgs) (any, error) {
			book, err := store.GetBook(ctx, db, a.BookID)
			if err != nil {
				return nil, err
			}
			if book == nil {
				return nil, &store.NotFoundError{Entity: store.EntityBook, ID: a.BookID}
			}
			status := "available for borrowing"
			if !book.Available {
				status = "currently borrowed"
			}
			return availability{ID: book.ID, Title: book.Title, Author: book.Author, Available: book.Available, Status: status}, nil
		})

	register(r, "get_all_books", "List up to 100 catalog books, borrowed or not.", nil,
		func(ctx context.Context, db *sql.DB, _ noArgs) (any, error) {
			books, err := store.ListBooks(ctx, db, false, "", store.DefaultPage)
			return nonNil(books), err
		})

	register(r, "get_all_available_books", "List up to 100 books that can be borrowed right now.", nil,
		func(ctx context.Context, db *sql.DB, _ noArgs) (any, error) {
			books, err := store.ListBooks(ctx, db, true, "", store.DefaultPage)
			return nonNil(books), err
		})

	register(r, "get_all_members", "List up to 100 registered members.", nil,
		func(ctx context.Context, db *sql.DB, _ noArgs) (any, error) {
			members, err := store.ListMembers(ctx, db, "", store.DefaultPage)
			return nonNil(members), err
		})

	register(r, "get_member_borrow_history", "Get every borrow of a member, open and returned.",
		[]Parameter{idParam("member_id", "the member whose history to fetch")},
		func(ctx context.Context, db *sql.DB, a memberIDArgs) (any, error) {
			member, err := store.GetMember(ctx, db, a.MemberID)
			if err != nil {
				return nil, err
			}
			if member == nil {
				return nil, &store.NotFoundError{Entity: store.EntityMember, ID: a.MemberID}
			}
			history, err := store.GetMemberHistory(ctx, db, a.MemberID)
			if err != nil {
				return nil, err
			}
			active := 0
			for _, b := range history {
				if !b.IsReturned() {
					active++
				}
			}
			return memberHistory{
				MemberName:    member.Name,
				MemberEmail:   member.Email,
				TotalBorrows:  len(history),
				ActiveBorrows: active,
				History:       nonNil(history),
			}, nil
		})

	register(r, "get_library_statistics", "Get totals for books, members and borrowing activity.", nil,
		func(ctx context.Context, db *sql.DB, _ noArgs) (any, error) {
			return store.GetStatistics(ctx, db)
		})

	register(r, "add_book", "Add a new book to the catalog.",
		[]Parameter{
			{Name: "title", Type: "string", Required: true},
			{Name: "author", Type: "string", Required: true},
			{Name: "isbn", Type: "string", Required: true},
		},
		func(ctx context.Context, db *sql.DB, a addBookArgs) (any, error) {
			return store.CreateBook(ctx, db, a.Title, a.Author, a.ISBN)
		})

	register(r, "update_book", "Change a book's title, author or ISBN.",
		[]Parameter{
			idParam("book_id", "the book to update"),
			{Name: "title", Type: "string"},
			{Name: "author", Type: "string"},
			{Name: "isbn", Type: "string"},
		},
		func(ctx context.Context, db *sql.DB, a updateBookArgs) (any, error) {
			return store.UpdateBook(ctx, db, a.BookID, a.BookPatch)
		})

	register(r, "delete_book", "Remove a book from the catalog. Books on loan cannot be removed.",
		[]Parameter{idParam("book_id", "the book to remove")},
		func(ctx context.Context, db *sql.DB, a bookIDArgs) (any, error) {
			if err := store.DeleteBook(ctx, db, a.BookID); err != nil {
				return nil, err
			}
			return message{Message: "book deleted"}, nil
		})

	register(r, "add_member", "Register a new member.",
		[]Parameter{
			{Name: "name", Type: "string", Required: true},
			{Name: "email", Type: "string", Required: true},
			{Name: "phone", Type: "string"},
		},
		func(ctx context.Context, db *sql.DB, a addMemberArgs) (any, error) {
			return store.CreateMember(ctx, db, a.Name, a.Email, a.Phone)
		})

	register(r, "update_member", "Change a member's name, email or phone.",
		[]Parameter{
			idParam("member_id", "the member to update"),
			{Name: "name", Type: "string"},
			{Name: "email", Type: "string"},
			{Name: "phone", Type: "string"},
		},
		func(ctx context.Context, db *sql.DB, a updateMemberArgs) (any, error) {
			return store.UpdateMember(ctx, db, a.MemberID, a.MemberPatch)
		})

	register(r, "delete_member", "Remove a member. Members with books on loan cannot be removed.",
		[]Parameter{idParam("member_id", "the member to remove")},
		func(ctx context.Context, db *sql.DB, a memberIDArgs) (any, error) {
			if err := store.DeleteMember(ctx, db, a.MemberID); err != nil {
				return nil, err
			}
			return message{Message: "member deleted"}, nil
		})

	register(r, "create_borrow", "Lend a book to a member.",
		[]Parameter{idParam("book_id", "the book to lend"), idParam("member_id", "the borrowing member")},
		func(ctx context.Context, db *sql.DB, a borrowArgs) (any, error) {
			return store.CreateBorrow(ctx, db, a.BookID, a.MemberID)
		})

	register(r, "return_book", "Mark a borrowed book as returned.",
		[]Parameter{idParam("borrow_id", "the borrow record to close")},
		func(ctx context.Context, db *sql.DB, a returnArgs) (any, error) {
			return store.ReturnBorrow(ctx, db, a.BorrowID)
		})

	register(r, "list_borrows", "List borrow records, oldest first.",
		[]Parameter{
			{Name: "active_only", Type: "boolean", Description: "only books still on loan"},
			{Name: "skip", Type: "integer", Description: "records to skip"},
			{Name: "limit", Type: "integer", Description: "records to return, 100 when omitted"},
		},
		func(ctx context.Context, db *sql.DB, a listBorrowsArgs) (any, error) {
			borrows, err := store.ListBorrows(ctx, db, a.ActiveOnly, a.page())
			return nonNil(borrows), err
		})
}

// nonNil turns a nil slice into an empty one so it encodes as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
