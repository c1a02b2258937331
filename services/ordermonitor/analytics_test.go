package ordermonitor

import (
	"fmt"
	"testing"
	"time"
	"besmart-monitor/lib/scrapers/besmart"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsReport(t *testing.T) {
	analytics := NewAnalytics(0)
	base := time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC)

	add := func(restaurant, customer string, at time.Time, status besmart.Status) {
		analytics.AddOrder(besmart.Order{
			Id:         "x",
			Restaurant: restaurant,
			Customer:   customer,
			Status:     status,
			DetectedAt: at,
		})
	}

	add("Tacos El Sol", "Juan Perez", base, besmart.StatusInPreparation)
	add("Tacos El Sol", "Maria Lopez", base.Add(time.Minute), besmart.StatusInPreparation)
	add("Sushi Go", "Juan Perez", base.Add(time.Hour), besmart.StatusOnTheWay)

	got := analytics.Report()
	want := Report{
		TotalOrders: 3,
		TopRestaurants: []RankedEntry{
			{Name: "Tacos El Sol", Count: 2},
			{Name: "Sushi Go", Count: 1},
		},
		TopCustomers: []RankedEntry{
			{Name: "Juan Perez", Count: 2},
			{Name: "Maria Lopez", Count: 1},
		},
		PeakHours: []HourEntry{
			{Hour: 13, Count: 2},
			{Hour: 14, Count: 1},
		},
		StatusDistribution: map[besmart.Status]int{
			besmart.StatusInPreparation: 2,
			besmart.StatusOnTheWay:      1,
		},
		AvgOrdersPerHour: 1.5,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyticsReportDeterministicTies(t *testing.T) {
	analytics := NewAnalytics(0)
	base := time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC)

	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		analytics.AddOrder(besmart.Order{
			Id:         "x",
			Restaurant: name,
			DetectedAt: base,
		})
	}

	first := analytics.Report()
	for i := 0; i < 10; i++ {
		again := analytics.Report()
		if diff := cmp.Diff(first.TopRestaurants, again.TopRestaurants); diff != "" {
			t.Fatalf("ranking order changed between calls:\n%s", diff)
		}
	}
	require.Equal(t, "Alpha", first.TopRestaurants[0].Name)
}

func TestAnalyticsWindowEviction(t *testing.T) {
	analytics := NewAnalytics(3)
	base := time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		analytics.AddOrder(besmart.Order{
			Id:         fmt.Sprintf("%d", i),
			Customer:   fmt.Sprintf("customer-%d", i),
			Restaurant: "Tacos El Sol",
			DetectedAt: base,
		})
	}

	require.Equal(t, 3, analytics.Len())
	// the first order rolled off and took its counters with it
	require.Equal(t, 0, analytics.CustomerCount("customer-0"))
	require.Equal(t, 1, analytics.CustomerCount("customer-3"))

	report := analytics.Report()
	require.Equal(t, 3, report.TotalOrders)
	require.Equal(t, 3, report.TopRestaurants[0].Count)
}
