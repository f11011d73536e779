// Command knjiznicactl administers a knjiznica database directly, without a
// running server.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/erazemk/knjiznica/internal/config"
	"github.com/erazemk/knjiznica/internal/db"
	"github.com/erazemk/knjiznica/internal/store"
)

// app carries what every command needs: the database and how to print.
type app struct {
	dbPath string
	json   bool
	out    io.Writer
	db     *sql.DB
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "knjiznicactl",
		Short:         "Administer a knjiznica library database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			database, err := db.Open(a.dbPath)
			if err != nil {
				return err
			}
			if err := db.Migrate(database); err != nil {
				database.Close()
				return err
			}
			a.db = database
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.dbPath, "db", "d", envOr("KNJIZNICA_DB", config.DefaultDBPath), "SQLite database path")
	root.PersistentFlags().BoolVar(&a.json, "json", a.json, "print JSON instead of tables")

	root.AddCommand(
		newBooksCmd(a),
		newMembersCmd(a),
		newBorrowCmd(a),
		newStatsCmd(a),
		newAuditCmd(a),
	)
	return root
}

func main() {
	a := &app{
		out:  os.Stdout,
		json: !term.IsTerminal(int(os.Stdout.Fd())),
	}

	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// print writes v as indented JSON, or calls table when printing for a person.
func (a *app) print(v any, table func(w *tabwriter.Writer)) error {
	if a.json {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	table(w)
	return w.Flush()
}

// pageFlags adds --skip and --limit to a list command.
func pageFlags(cmd *cobra.Command, page *store.Page) {
	cmd.Flags().IntVar(&page.Skip, "skip", 0, "rows to skip")
	cmd.Flags().IntVar(&page.Limit, "limit", store.DefaultPageLimit, "rows to show, -1 for all")
	cmd.PreRunE = func(*cobra.Command, []string) error {
		if page.Skip < 0 {
			return fmt.Errorf("--skip must not be negative")
		}
		return nil
	}
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}
