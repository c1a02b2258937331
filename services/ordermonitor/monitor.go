package ordermonitor

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
	"besmart-monitor/lib/chrono"
	"besmart-monitor/lib/scrapers/besmart"
	"besmart-monitor/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/ordermonitor")

// MonitorState is the lifecycle of the poll loop.
type MonitorState int32

const (
	StateIdle MonitorState = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s MonitorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

type MonitorOptions struct {
	Client  *besmart.Client
	Service Service
	Feed    *Feed
	// PollInterval defaults to 10s.
	PollInterval time.Duration
	// StatsEvery is how many ticks pass between run summaries. Defaults
	// to 30.
	StatsEvery int
	// ActiveOnly requests the server-side "Active orders" filter on each
	// fetch.
	ActiveOnly bool
	// KnownCapacity bounds the fingerprint set.
	KnownCapacity int
	// AnalyticsWindow bounds the analytics history.
	AnalyticsWindow int
	Policy          PriorityPolicy
	Clock           chrono.Clock
}

// Monitor drives the whole pipeline on a fixed cadence: fetch, extract,
// dedupe, classify, persist, render. A failure in any one tick is
// logged and counted, never fatal to the loop.
type Monitor struct {
	client    *besmart.Client
	service   Service
	feed      *Feed
	known     *KnownSet
	analytics *Analytics
	policy    PriorityPolicy

	pollInterval time.Duration
	statsEvery   int
	activeOnly   bool
	clock        chrono.Clock

	state atomic.Int32

	ticks         int
	refreshErrors int
	fetchErrors   int
	parseDrops    int
	storeErrors   int
}

func NewMonitor(opts MonitorOptions) *Monitor {
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second * 10
	}
	if opts.StatsEvery == 0 {
		opts.StatsEvery = 30
	}
	if opts.Clock == nil {
		opts.Clock = chrono.StandardClock{}
	}
	if opts.Policy == (PriorityPolicy{}) {
		opts.Policy = DefaultPriorityPolicy()
	}

	return &Monitor{
		client:       opts.Client,
		service:      opts.Service,
		feed:         opts.Feed,
		known:        NewKnownSet(opts.KnownCapacity),
		analytics:    NewAnalytics(opts.AnalyticsWindow),
		policy:       opts.Policy,
		pollInterval: opts.PollInterval,
		statsEvery:   opts.StatsEvery,
		activeOnly:   opts.ActiveOnly,
		clock:        opts.Clock,
	}
}

func (m *Monitor) State() MonitorState {
	return MonitorState(m.state.Load())
}

// Run polls until the context is cancelled, then drops the session and
// renders a final summary.
func (m *Monitor) Run(ctx context.Context) {
	m.state.Store(int32(StateRunning))
	slog.InfoContext(ctx, "monitor started",
		"poll_interval", m.pollInterval, "active_only", m.activeOnly)

	for {
		m.Tick(ctx)

		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case <-m.clock.After(m.pollInterval):
		}
	}
}

func (m *Monitor) shutdown() {
	m.state.Store(int32(StateStopping))
	m.client.Close()
	if m.feed != nil {
		m.feed.Stats(m.ticks, m.analytics.Report(), telemetry.ReadPerfSnapshot())
	}
	m.state.Store(int32(StateStopped))
	slog.Info("monitor stopped",
		"ticks", m.ticks,
		"refresh_errors", m.refreshErrors,
		"fetch_errors", m.fetchErrors,
		"parse_drops", m.parseDrops,
		"store_errors", m.storeErrors)
}

// Tick runs one fetch-to-persist cycle.
func (m *Monitor) Tick(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "monitor:Tick")
	defer span.End()

	m.ticks++
	start := time.Now()
	defer func() {
		slog.DebugContext(ctx, "tick complete",
			"tick", m.ticks, "duration", time.Since(start))
	}()

	if m.client.Expired(m.clock.Now()) {
		if err := m.client.Refresh(ctx); err != nil {
			m.refreshErrors++
			span.RecordError(err)
			span.SetStatus(codes.Error, "session refresh failed")
			slog.WarnContext(ctx, "session refresh failed", "err", err)
			return
		}
	}

	if ctx.Err() != nil {
		return
	}

	page, err := m.client.FetchOrders(ctx, m.activeOnly)
	if err != nil {
		m.fetchErrors++
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		slog.WarnContext(ctx, "order fetch failed", "err", err)
		return
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(page.Body))
	if err != nil {
		m.parseDrops++
		span.RecordError(err)
		span.SetStatus(codes.Error, "page unparseable")
		slog.WarnContext(ctx, "listing page unparseable", "err", err)
		return
	}

	orders := m.extract(ctx, doc, page.FetchedAt)
	records := m.known.NewOrders(orders)

	for i := range records {
		records[i].Priority = m.policy.Classify(records[i].Order, m.analytics, m.clock.Now())
		m.analytics.AddOrder(records[i].Order)
	}

	if len(records) > 0 {
		m.persist(ctx, records)
		if m.feed != nil {
			m.feed.Orders(records, page.FetchedAt)
		}
	}

	if m.statsEvery > 0 && m.ticks%m.statsEvery == 0 && m.feed != nil {
		m.feed.Stats(m.ticks, m.analytics.Report(), telemetry.ReadPerfSnapshot())
	}
}

func (m *Monitor) extract(ctx context.Context, doc *goquery.Document, fetchedAt time.Time) []besmart.Order {
	rows, strategy := besmart.FindOrderContainers(doc)
	if len(rows) == 0 {
		slog.DebugContext(ctx, "no order containers on page")
		return nil
	}

	var orders []besmart.Order
	for _, row := range rows {
		order, ok := besmart.ParseOrder(row, fetchedAt)
		if !ok {
			m.parseDrops++
			continue
		}
		orders = append(orders, order)
	}

	if count, ok := besmart.ActiveOrdersCount(doc); ok && count != len(orders) {
		slog.DebugContext(ctx, "panel count disagrees with extraction",
			"panel", count, "extracted", len(orders), "strategy", strategy)
	}
	return orders
}

func (m *Monitor) persist(ctx context.Context, records []Record) {
	analyticsBlob := m.analytics.Blob()
	perf := perfBlob()

	for _, record := range records {
		err := m.service.UpsertOrder(ctx, record, analyticsBlob, perf)
		if err != nil {
			m.storeErrors++
			slog.WarnContext(ctx, "failed to persist order",
				"order", record.Id, "err", err)
		}
	}
}

func perfBlob() string {
	data, err := json.Marshal(telemetry.ReadPerfSnapshot())
	if err != nil {
		return "{}"
	}
	return string(data)
}
