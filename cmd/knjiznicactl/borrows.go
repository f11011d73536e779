package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

func newBorrowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "borrow",
		Short: "Lend and return books",
	}

	create := &cobra.Command{
		Use:   "create <book-id> <member-id>",
		Short: "Lend a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			memberID, err := parseID(args[1], "member")
			if err != nil {
				return err
			}
			borrow, err := store.CreateBorrow(cmd.Context(), a.db, bookID, memberID)
			if err != nil {
				return err
			}
			return a.printBorrows([]model.Borrow{*borrow})
		},
	}

	ret := &cobra.Command{
		Use:   "return <borrow-id>",
		Short: "Mark a borrow as returned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "borrow")
			if err != nil {
				return err
			}
			borrow, err := store.ReturnBorrow(cmd.Context(), a.db, id)
			if err != nil {
				return err
			}
			return a.printBorrows([]model.Borrow{*borrow})
		},
	}

	var activeOnly bool
	var page store.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List borrows, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			borrows, err := store.ListBorrows(cmd.Context(), a.db, activeOnly, page)
			if err != nil {
				return err
			}
			return a.printBorrows(borrows)
		},
	}
	list.Flags().BoolVarP(&activeOnly, "active", "a", false, "only books still on loan")
	pageFlags(list, &page)

	history := &cobra.Command{
		Use:   "history <member-id>",
		Short: "Show a member's borrow history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			borrows, err := store.GetMemberHistory(cmd.Context(), a.db, id)
			if err != nil {
				return err
			}
			return a.printBorrows(borrows)
		},
	}

	cmd.AddCommand(create, ret, list, history)
	return cmd
}

func (a *app) printBorrows(borrows []model.Borrow) error {
	if borrows == nil {
		borrows = []model.Borrow{}
	}
	return a.print(borrows, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tBOOK\tMEMBER\tBORROWED\tRETURNED")
		for _, b := range borrows {
			returned := "-"
			if b.ReturnedAt != nil {
				returned = humanize.Time(*b.ReturnedAt)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				b.ID, b.BookTitle, b.MemberName, humanize.Time(b.BorrowedAt), returned)
		}
	})
}
