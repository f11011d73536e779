package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/erazemk/knjiznica/internal/db"
	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

func setup(t *testing.T) (*Registry, *model.Book, *model.Member) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	book, err := store.CreateBook(ctx, database, "Dune", "Frank Herbert", "9780441013593")
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	member, err := store.CreateMember(ctx, database, "Ana", "ana@example.com", "")
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	return NewRegistry(database), book, member
}

func args(format string, a ...any) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(format, a...))
}

func TestToolsListed(t *testing.T) {
	r, _, _ := setup(t)

	want := map[string]bool{
		"create_borrow":             false,
		"return_book":               false,
		"list_borrows":              false,
		"get_member_borrow_history": false,
		"search_books":              false,
	}
	for _, tool := range r.Tools() {
		if tool.Description == "" {
			t.Errorf("tool %s has no description", tool.Name)
		}
		if tool.Parameters == nil {
			t.Errorf("tool %s has nil parameters", tool.Name)
		}
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestBorrowAndReturnThroughTools(t *testing.T) {
	r, book, member := setup(t)
	ctx := context.Background()

	res := r.Invoke(ctx, "create_borrow", args(`{"book_id": %d, "member_id": %d}`, book.ID, member.ID))
	if !res.OK {
		t.Fatalf("create_borrow failed: %+v", res.Error)
	}
	borrow, ok := res.Data.(*model.Borrow)
	if !ok {
		t.Fatalf("expected *model.Borrow, got %T", res.Data)
	}

	res = r.Invoke(ctx, "create_borrow", args(`{"book_id": %d, "member_id": %d}`, book.ID, member.ID))
	if res.OK || res.Error.Kind != KindConflict {
		t.Fatalf("expected conflict, got %+v", res)
	}
	if res.Error.Message != store.ReasonBookNotAvailable {
		t.Errorf("expected %q, got %q", store.ReasonBookNotAvailable, res.Error.Message)
	}

	res = r.Invoke(ctx, "return_book", args(`{"borrow_id": %d}`, borrow.ID))
	if !res.OK {
		t.Fatalf("return_book failed: %+v", res.Error)
	}
	if returned := res.Data.(*model.Borrow); !returned.IsReturned() {
		t.Error("expected borrow to be returned")
	}

	res = r.Invoke(ctx, "return_book", args(`{"borrow_id": %d}`, borrow.ID))
	if res.OK || res.Error.Kind != KindConflict {
		t.Fatalf("expected conflict on second return, got %+v", res)
	}
}

func TestInvokeErrors(t *testing.T) {
	r, book, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		tool string
		args json.RawMessage
		kind string
	}{
		{"unknown tool", "launch_rocket", nil, KindUnknownTool},
		{"missing member", "create_borrow", args(`{"book_id": %d, "member_id": 999}`, book.ID), KindNotFound},
		{"missing borrow", "return_book", args(`{"borrow_id": 42}`), KindNotFound},
		{"missing history", "get_member_borrow_history", args(`{"member_id": 7}`), KindNotFound},
		{"zero id", "create_borrow", args(`{"book_id": 0, "member_id": 1}`), KindInvalidArguments},
		{"wrong type", "return_book", args(`{"borrow_id": "one"}`), KindInvalidArguments},
		{"unknown field", "list_borrows", args(`{"active": true}`), KindInvalidArguments},
		{"empty search", "search_books", args(`{"query": "  "}`), KindInvalidArguments},
		{"empty update", "update_book", args(`{"book_id": %d}`, book.ID), KindInvalidArguments},
		{"negative skip", "list_borrows", args(`{"skip": -1}`), KindInvalidArguments},
		{"isbn without digits", "add_book", args(`{"title": "T", "author": "A", "isbn": "--"}`), KindInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Invoke(ctx, tt.tool, tt.args)
			if res.OK {
				t.Fatalf("expected failure, got %+v", res.Data)
			}
			if res.Error.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s (%s)", tt.kind, res.Error.Kind, res.Error.Message)
			}
		})
	}
}

func TestNotFoundCarriesEntity(t *testing.T) {
	r, _, member := setup(t)

	res := r.Invoke(context.Background(), "create_borrow", args(`{"book_id": 555, "member_id": %d}`, member.ID))
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Error.Entity != store.EntityBook || res.Error.ID != 555 {
		t.Errorf("expected book 555, got %s %d", res.Error.Entity, res.Error.ID)
	}
}

func TestMemberHistoryTool(t *testing.T) {
	r, book, member := setup(t)
	ctx := context.Background()

	r.Invoke(ctx, "create_borrow", args(`{"book_id": %d, "member_id": %d}`, book.ID, member.ID))

	res := r.Invoke(ctx, "get_member_borrow_history", args(`{"member_id": %d}`, member.ID))
	if !res.OK {
		t.Fatalf("get_member_borrow_history failed: %+v", res.Error)
	}
	h := res.Data.(memberHistory)
	if h.MemberName != "Ana" || h.TotalBorrows != 1 || h.ActiveBorrows != 1 {
		t.Errorf("unexpected history %+v", h)
	}
}

func TestListBorrowsWithoutArguments(t *testing.T) {
	r, _, _ := setup(t)

	res := r.Invoke(context.Background(), "list_borrows", nil)
	if !res.OK {
		t.Fatalf("list_borrows failed: %+v", res.Error)
	}

	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"tool":"list_borrows","ok":true,"data":[]}`
	if string(out) != want {
		t.Errorf("expected %s, got %s", want, out)
	}
}

func TestSearchBooks(t *testing.T) {
	r, book, _ := setup(t)

	res := r.Invoke(context.Background(), "search_books", args(`{"query": "herbert"}`))
	if !res.OK {
		t.Fatalf("search_books failed: %+v", res.Error)
	}
	books := res.Data.([]model.Book)
	if len(books) != 1 || books[0].ID != book.ID {
		t.Errorf("expected Dune, got %+v", books)
	}
}

func TestListBorrowsPaging(t *testing.T) {
	r, book, member := setup(t)
	ctx := context.Background()

	r.Invoke(ctx, "create_borrow", args(`{"book_id": %d, "member_id": %d}`, book.ID, member.ID))
	r.Invoke(ctx, "return_book", args(`{"borrow_id": 1}`))
	r.Invoke(ctx, "create_borrow", args(`{"book_id": %d, "member_id": %d}`, book.ID, member.ID))

	res := r.Invoke(ctx, "list_borrows", args(`{"skip": 1, "limit": 1}`))
	if !res.OK {
		t.Fatalf("list_borrows failed: %+v", res.Error)
	}
	borrows := res.Data.([]model.Borrow)
	if len(borrows) != 1 || borrows[0].ID != 2 {
		t.Errorf("expected only the second borrow, got %+v", borrows)
	}
}

func TestAddBookNormalizesISBN(t *testing.T) {
	r, _, _ := setup(t)

	res := r.Invoke(context.Background(), "add_book", args(`{"title": "Dune", "author": "Frank Herbert", "isbn": "978-0-441-01359-3"}`))
	if res.OK || res.Error.Kind != KindConflict {
		t.Errorf("expected hyphenated duplicate to conflict, got %+v", res)
	}
}
