package cmd

import (
	"log"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var ordersLimit int64

func init() {
	ordersCmd.Flags().Int64VarP(&ordersLimit, "limit", "n", 20, "maximum rows to show")
	rootCmd.AddCommand(ordersCmd)
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Lists the most recently detected orders.",
	Run: func(cmd *cobra.Command, args []string) {
		orders, err := queries.ListRecentOrders(cmd.Context(), ordersLimit)
		if err != nil {
			log.Fatal(err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Order", "Restaurant", "Customer", "Zone", "Total", "Status", "Priority", "Detected"})
		for _, o := range orders {
			detected := time.Unix(o.DetectedAt, 0).Format(time.ANSIC)
			t.AppendRow(table.Row{
				o.OrderNumber,
				o.Restaurant,
				o.CustomerName,
				o.DeliveryAddress,
				o.TotalAmount,
				o.Status,
				o.Priority,
				detected,
			})
		}
		t.Render()
	},
}
