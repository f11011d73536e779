package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/knjiznica/internal/catalogimport"
	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

func newBooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Manage the catalog",
	}

	add := &cobra.Command{
		Use:   "add <title> <author> <isbn>",
		Short: "Add a book",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := store.CreateBook(cmd.Context(), a.db, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return a.printBooks([]model.Book{*book})
		},
	}

	var availableOnly bool
	var query string
	var page store.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := store.ListBooks(cmd.Context(), a.db, availableOnly, query, page)
			if err != nil {
				return err
			}
			return a.printBooks(books)
		},
	}
	list.Flags().BoolVarP(&availableOnly, "available", "a", false, "only books that can be borrowed")
	list.Flags().StringVarP(&query, "query", "q", "", "match title or author")
	pageFlags(list, &page)

	imp := &cobra.Command{
		Use:   "import <catalog.html>",
		Short: "Import books from an HTML catalog table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := catalogimport.Parse(f)
			if err != nil {
				return err
			}

			res, err := catalogimport.Import(cmd.Context(), a.db, entries)
			if err != nil {
				return err
			}
			slog.Info("catalog imported", "file", args[0], "created", res.Created, "skipped", res.Skipped)
			fmt.Fprintf(a.out, "%d created, %d skipped\n", res.Created, res.Skipped)
			return nil
		},
	}

	cmd.AddCommand(add, list, imp)
	return cmd
}

func (a *app) printBooks(books []model.Book) error {
	if books == nil {
		books = []model.Book{}
	}
	return a.print(books, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tISBN\tSTATUS")
		for _, b := range books {
			status := "available"
			if !b.Available {
				status = "on loan"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.ISBN, status)
		}
	})
}
