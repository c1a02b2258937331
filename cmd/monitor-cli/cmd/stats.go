package cmd

import (
	"log"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarizes the stored orders by status.",
	Run: func(cmd *cobra.Command, args []string) {
		total, err := queries.CountOrders(cmd.Context())
		if err != nil {
			log.Fatal(err)
		}
		counts, err := queries.CountOrdersByStatus(cmd.Context())
		if err != nil {
			log.Fatal(err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Status", "Count"})
		for _, c := range counts {
			t.AppendRow(table.Row{c.Status, c.Count})
		}
		t.AppendFooter(table.Row{"total", total})
		t.Render()
	},
}
