package ordermonitor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"besmart-monitor/lib/telemetry"
)

// Feed renders new-order batches and periodic run summaries for the
// operator watching the process.
type Feed struct {
	out io.Writer
}

func NewFeed(out io.Writer) *Feed {
	return &Feed{out: out}
}

func (f *Feed) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(f.out)
	return t
}

// Orders renders a batch of newly detected orders. Empty batches render
// nothing, a quiet tick leaves no trace on the feed.
func (f *Feed) Orders(records []Record, detectedAt time.Time) {
	if len(records) == 0 {
		return
	}

	fmt.Fprintf(f.out, "\n%d new order(s) at %s\n",
		len(records), detectedAt.Format("15:04:05"))

	t := f.newTable()
	t.AppendHeader(table.Row{"Order", "Restaurant", "Customer", "Zone", "Total", "Status", "Priority"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.Id,
			truncate(r.Restaurant, 24),
			truncate(r.Customer, 24),
			truncate(r.Address, 20),
			r.Total,
			string(r.Status),
			strings.ToUpper(string(r.Priority)),
		})
	}
	t.Render()
}

// Stats renders the periodic run summary: analytics window state plus
// process health.
func (f *Feed) Stats(ticks int, report Report, perf telemetry.PerfSnapshot) {
	fmt.Fprintf(f.out, "\nrun summary after %d checks\n", ticks)

	t := f.newTable()
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"orders in window", report.TotalOrders})
	t.AppendRow(table.Row{"avg orders/hour", fmt.Sprintf("%.1f", report.AvgOrdersPerHour)})
	for i, r := range report.TopRestaurants {
		t.AppendRow(table.Row{fmt.Sprintf("top restaurant #%d", i+1), fmt.Sprintf("%s (%d)", r.Name, r.Count)})
	}
	for i, c := range report.TopCustomers {
		t.AppendRow(table.Row{fmt.Sprintf("top customer #%d", i+1), fmt.Sprintf("%s (%d)", c.Name, c.Count)})
	}
	for _, h := range report.PeakHours {
		t.AppendRow(table.Row{fmt.Sprintf("peak hour %02d:00", h.Hour), h.Count})
	}
	t.AppendRow(table.Row{"cpu %", fmt.Sprintf("%.1f", perf.CpuPercent)})
	t.AppendRow(table.Row{"heap mb", perf.AllocatedMb})
	t.AppendRow(table.Row{"goroutines", perf.Goroutines})
	t.Render()
}

// truncate shortens on rune boundaries so multibyte names stay valid
// UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
