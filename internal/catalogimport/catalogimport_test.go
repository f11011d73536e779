package catalogimport

import (
	"context"
	"strings"
	"testing"

	"github.com/erazemk/knjiznica/internal/db"
	"github.com/erazemk/knjiznica/internal/store"
)

const catalogHTML = `<html><body>
<table id="nav"><tr><td>Home</td></tr></table>
<table>
  <tr><th>ISBN</th><th>Title</th><th>Shelf</th><th>Author</th></tr>
  <tr><td>978-0-441-01359-3</td><td>Dune</td><td>A1</td><td>Frank Herbert</td></tr>
  <tr><td>978 0141439587</td><td>  Emma </td><td>B2</td><td>Jane
      Austen</td></tr>
  <tr><td></td><td>Untitled</td><td>C3</td><td>Unknown</td></tr>
</table>
</body></html>`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(catalogHTML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}

	want := []Entry{
		{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"},
		{Title: "Emma", Author: "Jane Austen", ISBN: "9780141439587"},
	}
	for i, w := range want {
		if entries[i] != w {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], w)
		}
	}
}

func TestParseWithoutCatalogTable(t *testing.T) {
	_, err := Parse(strings.NewReader(`<table><tr><th>Name</th></tr></table>`))
	if err == nil {
		t.Error("expected error when no catalog table is present")
	}
}

func TestImportSkipsExisting(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	store.CreateBook(ctx, database, "Dune", "Frank Herbert", "9780441013593")

	entries, _ := Parse(strings.NewReader(catalogHTML))
	res, err := Import(ctx, database, entries)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Created != 1 || res.Skipped != 1 {
		t.Errorf("expected 1 created and 1 skipped, got %+v", res)
	}

	books, _ := store.ListBooks(ctx, database, false, "", store.AllRows)
	if len(books) != 2 {
		t.Errorf("expected 2 books in catalog, got %d", len(books))
	}
}

func TestImportMatchesHyphenatedISBN(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	store.CreateBook(ctx, database, "Dune", "Frank Herbert", "978-0-441-01359-3")

	res, err := Import(ctx, database, []Entry{{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"}})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Created != 0 || res.Skipped != 1 {
		t.Errorf("expected the existing book to be skipped, got %+v", res)
	}

	books, _ := store.ListBooks(ctx, database, false, "Dune", store.AllRows)
	if len(books) != 1 {
		t.Errorf("expected 1 Dune in catalog, got %d", len(books))
	}
}
