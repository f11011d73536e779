package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog and circulation totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := store.GetStatistics(cmd.Context(), a.db)
			if err != nil {
				return err
			}
			return a.print(s, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Books\t%s\n", humanize.Comma(int64(s.TotalBooks)))
				fmt.Fprintf(w, "Available\t%s\n", humanize.Comma(int64(s.AvailableBooks)))
				fmt.Fprintf(w, "On loan\t%s\n", humanize.Comma(int64(s.BorrowedBooks)))
				fmt.Fprintf(w, "Members\t%s\n", humanize.Comma(int64(s.TotalMembers)))
				fmt.Fprintf(w, "Open borrows\t%s\n", humanize.Comma(int64(s.ActiveBorrows)))
				fmt.Fprintf(w, "All borrows\t%s\n", humanize.Comma(int64(s.TotalBorrows)))
				fmt.Fprintf(w, "Return rate\t%s%%\n", humanize.FtoaWithDigits(s.ReturnRate*100, 1))
			})
		},
	}
}

// errInconsistent makes audit exit non-zero when the ledger has issues.
var errInconsistent = errors.New("ledger is inconsistent")

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check that availability flags match open borrows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			issues, err := store.AuditLedger(cmd.Context(), a.db)
			if err != nil {
				return err
			}
			if issues == nil {
				issues = []model.LedgerIssue{}
			}
			err = a.print(issues, func(w *tabwriter.Writer) {
				if len(issues) == 0 {
					fmt.Fprintln(w, "ledger is consistent")
					return
				}
				fmt.Fprintln(w, "BOOK\tTITLE\tAVAILABLE\tOPEN BORROWS")
				for _, i := range issues {
					fmt.Fprintf(w, "%d\t%s\t%t\t%d\n", i.BookID, i.Title, i.Available, i.OpenBorrows)
				}
			})
			if err != nil {
				return err
			}
			if len(issues) > 0 {
				return errInconsistent
			}
			return nil
		},
	}
}
