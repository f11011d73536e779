package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// run executes the CLI against dbPath and returns what it printed.
func run(t *testing.T, dbPath string, jsonOut bool, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out, json: jsonOut}
	root := newRootCmd(a)
	root.SetArgs(append([]string{"--db", dbPath}, args...))
	err := root.Execute()
	a.close()
	return out.String(), err
}

func TestBorrowCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.sqlite3")

	if _, err := run(t, dbPath, true, "books", "add", "Dune", "Frank Herbert", "978-0-441-01359-3"); err != nil {
		t.Fatalf("books add: %v", err)
	}
	if _, err := run(t, dbPath, true, "members", "add", "Ana", "ana@example.com"); err != nil {
		t.Fatalf("members add: %v", err)
	}

	out, err := run(t, dbPath, true, "borrow", "create", "1", "1")
	if err != nil {
		t.Fatalf("borrow create: %v", err)
	}
	var created []model.Borrow
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(created) != 1 || created[0].BookTitle != "Dune" {
		t.Errorf("unexpected borrow %+v", created)
	}

	_, err = run(t, dbPath, true, "borrow", "create", "1", "1")
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("expected conflict on second borrow, got %v", err)
	}

	out, _ = run(t, dbPath, true, "borrow", "list", "--active")
	var active []model.Borrow
	json.Unmarshal([]byte(out), &active)
	if len(active) != 1 {
		t.Errorf("expected 1 active borrow, got %d", len(active))
	}

	if _, err := run(t, dbPath, true, "borrow", "return", "1"); err != nil {
		t.Fatalf("borrow return: %v", err)
	}
	if _, err := run(t, dbPath, true, "audit"); err != nil {
		t.Errorf("audit: %v", err)
	}

	_, err = run(t, dbPath, true, "borrow", "history", "42")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected not found for unknown member, got %v", err)
	}
}

func TestTableOutput(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.sqlite3")

	run(t, dbPath, false, "books", "add", "Emma", "Jane Austen", "9780141439587")

	out, err := run(t, dbPath, false, "books", "list")
	if err != nil {
		t.Fatalf("books list: %v", err)
	}
	if !strings.HasPrefix(out, "ID") || !strings.Contains(out, "Emma") || !strings.Contains(out, "available") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.sqlite3")
	catalog := filepath.Join(dir, "catalog.html")

	html := `<table>
<tr><th>Title</th><th>Author</th><th>ISBN</th></tr>
<tr><td>Dune</td><td>Frank Herbert</td><td>9780441013593</td></tr>
<tr><td>Emma</td><td>Jane Austen</td><td>9780141439587</td></tr>
</table>`
	if err := os.WriteFile(catalog, []byte(html), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dbPath, false, "books", "import", catalog)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "2 created, 0 skipped") {
		t.Errorf("unexpected output %q", out)
	}

	out, _ = run(t, dbPath, false, "books", "import", catalog)
	if !strings.Contains(out, "0 created, 2 skipped") {
		t.Errorf("expected a second import to skip everything, got %q", out)
	}
}

func TestParseID(t *testing.T) {
	for _, s := range []string{"0", "-3", "abc", ""} {
		if _, err := parseID(s, "book"); err == nil {
			t.Errorf("parseID(%q) should fail", s)
		}
	}
	if id, err := parseID("17", "book"); err != nil || id != 17 {
		t.Errorf("parseID(17) = %d, %v", id, err)
	}
}
