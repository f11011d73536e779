// Package catalogimport reads book lists exported as HTML tables and loads
// them into the catalog.
package catalogimport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/erazemk/knjiznica/internal/store"
)

// Entry is one book row of an exported catalog.
type Entry struct {
	Title  string
	Author string
	ISBN   string
}

// Result counts what Import did.
type Result struct {
	Created int
	Skipped int
}

// Parse reads the first table whose header names title, author and isbn
// columns. Column order is free and extra columns are ignored. Rows missing
// any of the three values are dropped.
func Parse(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog html: %w", err)
	}

	var entries []Entry
	found := false

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		cols := headerColumns(table)
		if cols == nil {
			return true
		}
		found = true

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}
			e := Entry{
				Title:  cellText(cells, cols["title"]),
				Author: cellText(cells, cols["author"]),
				ISBN:   store.NormalizeISBN(cellText(cells, cols["isbn"])),
			}
			if e.Title == "" || e.Author == "" || e.ISBN == "" {
				return
			}
			entries = append(entries, e)
		})
		return false
	})

	if !found {
		return nil, errors.New("no table with title, author and isbn columns")
	}
	return entries, nil
}

// headerColumns maps the wanted column names to their index, or returns nil
// if the table lacks one of them.
func headerColumns(table *goquery.Selection) map[string]int {
	cols := map[string]int{}
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(th.Text()))
		switch name {
		case "title", "author", "isbn":
			cols[name] = i
		}
	})
	if len(cols) != 3 {
		return nil
	}
	return cols
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.Join(strings.Fields(cells.Eq(i).Text()), " ")
}

// Import creates a catalog book for every entry. Entries whose ISBN is
// already in the catalog are skipped; any other error stops the import.
func Import(ctx context.Context, db *sql.DB, entries []Entry) (Result, error) {
	var res Result
	for _, e := range entries {
		_, err := store.CreateBook(ctx, db, e.Title, e.Author, e.ISBN)
		if store.IsReason(err, store.ReasonISBNTaken) {
			slog.Info("skipping existing book", "isbn", e.ISBN, "title", e.Title)
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("importing %q: %w", e.Title, err)
		}
		res.Created++
	}
	return res, nil
}
