package ordermonitor

import (
	"encoding/json"
	"sort"
	"sync"
	"besmart-monitor/lib/scrapers/besmart"
)

// DefaultAnalyticsWindow bounds how many orders the in-memory analytics
// remembers before the oldest observations roll off.
const DefaultAnalyticsWindow = 1000

// Analytics aggregates order observations over a sliding window. All
// counters are derived from the window contents, so evicting an old
// order also removes its contribution.
type Analytics struct {
	window int

	mu          sync.Mutex
	history     []historyEntry
	restaurants map[string]int
	customers   map[string]int
	hours       map[int]int
	statuses    map[besmart.Status]int
}

type historyEntry struct {
	restaurant string
	customer   string
	hour       int
	status     besmart.Status
}

func NewAnalytics(window int) *Analytics {
	if window <= 0 {
		window = DefaultAnalyticsWindow
	}
	return &Analytics{
		window:      window,
		restaurants: map[string]int{},
		customers:   map[string]int{},
		hours:       map[int]int{},
		statuses:    map[besmart.Status]int{},
	}
}

func (a *Analytics) AddOrder(order besmart.Order) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := historyEntry{
		restaurant: order.Restaurant,
		customer:   order.Customer,
		hour:       order.DetectedAt.Hour(),
		status:     order.Status,
	}

	if len(a.history) >= a.window {
		evicted := a.history[0]
		a.history = a.history[1:]
		decrement(a.restaurants, evicted.restaurant)
		decrement(a.customers, evicted.customer)
		decrementInt(a.hours, evicted.hour)
		decrementStatus(a.statuses, evicted.status)
	}
	a.history = append(a.history, entry)

	if entry.restaurant != "" {
		a.restaurants[entry.restaurant]++
	}
	if entry.customer != "" {
		a.customers[entry.customer]++
	}
	a.hours[entry.hour]++
	a.statuses[entry.status]++
}

func decrement(counts map[string]int, key string) {
	if key == "" {
		return
	}
	counts[key]--
	if counts[key] <= 0 {
		delete(counts, key)
	}
}

func decrementInt(counts map[int]int, key int) {
	counts[key]--
	if counts[key] <= 0 {
		delete(counts, key)
	}
}

func decrementStatus(counts map[besmart.Status]int, key besmart.Status) {
	counts[key]--
	if counts[key] <= 0 {
		delete(counts, key)
	}
}

// CustomerCount reports how many orders within the window belong to the
// named customer.
func (a *Analytics) CustomerCount(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.customers[name]
}

func (a *Analytics) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.history)
}

type RankedEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type HourEntry struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Report is a point-in-time summary of the analytics window, also
// serialized into the orders table alongside each upsert.
type Report struct {
	TotalOrders        int                    `json:"total_orders"`
	TopRestaurants     []RankedEntry          `json:"top_restaurants"`
	TopCustomers       []RankedEntry          `json:"top_customers"`
	PeakHours          []HourEntry            `json:"peak_hours"`
	StatusDistribution map[besmart.Status]int `json:"status_distribution"`
	AvgOrdersPerHour   float64                `json:"avg_orders_per_hour"`
}

// Report computes the current summary. Rankings break count ties by
// name so repeated calls over the same window agree.
func (a *Analytics) Report() Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	statuses := make(map[besmart.Status]int, len(a.statuses))
	for status, count := range a.statuses {
		statuses[status] = count
	}

	report := Report{
		TotalOrders:        len(a.history),
		TopRestaurants:     topRanked(a.restaurants, 5),
		TopCustomers:       topRanked(a.customers, 5),
		PeakHours:          topHours(a.hours, 3),
		StatusDistribution: statuses,
	}
	if len(a.hours) > 0 {
		report.AvgOrdersPerHour = float64(len(a.history)) / float64(len(a.hours))
	}
	return report
}

// Blob renders the report as JSON for persistence.
func (a *Analytics) Blob() string {
	data, err := json.Marshal(a.Report())
	if err != nil {
		return "{}"
	}
	return string(data)
}

func topRanked(counts map[string]int, limit int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, RankedEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func topHours(counts map[int]int, limit int) []HourEntry {
	entries := make([]HourEntry, 0, len(counts))
	for hour, count := range counts {
		entries = append(entries, HourEntry{Hour: hour, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Hour < entries[j].Hour
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
