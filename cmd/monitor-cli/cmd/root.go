package cmd

import (
	"fmt"
	"os"
	"besmart-monitor/lib/sqliteutil"
	"besmart-monitor/services/ordermonitor/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var DbPath = "data/orders.db"

var queries *db.Queries

var rootCmd = &cobra.Command{
	Use:   "monitor-cli",
	Short: "monitor-cli inspects the order database the delivery monitor writes to.",
	// the database is opened here rather than in Execute so the parsed
	// --db flag value is the one honored
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		sqlite, err := sqliteutil.OpenDB(db.Schema, DbPath)
		if err != nil {
			return err
		}
		queries = db.New(sqlite)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&DbPath, "db", DbPath, "path to the orders database")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
