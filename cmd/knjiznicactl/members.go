package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

func newMembersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage members",
	}

	var phone string
	add := &cobra.Command{
		Use:   "add <name> <email>",
		Short: "Register a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			member, err := store.CreateMember(cmd.Context(), a.db, args[0], args[1], phone)
			if err != nil {
				return err
			}
			return a.printMembers([]model.Member{*member})
		},
	}
	add.Flags().StringVarP(&phone, "phone", "p", "", "phone number")

	var query string
	var page store.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			members, err := store.ListMembers(cmd.Context(), a.db, query, page)
			if err != nil {
				return err
			}
			return a.printMembers(members)
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "match name or email")
	pageFlags(list, &page)

	cmd.AddCommand(add, list)
	return cmd
}

func (a *app) printMembers(members []model.Member) error {
	if members == nil {
		members = []model.Member{}
	}
	return a.print(members, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE")
		for _, m := range members {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.Name, m.Email, m.Phone)
		}
	})
}
