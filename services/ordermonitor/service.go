package ordermonitor

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"besmart-monitor/services/ordermonitor/db"
)

// Service owns the persistence side of the monitor: the orders table
// plus the order_events and notifications side tables.
type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

func (s Service) Queries() *db.Queries {
	return s.qry
}

// UpsertOrder persists a record keyed by its order number. Replaying
// the same record only touches the mutable columns, so the stored row
// count never grows from repeats. The event and notification side
// writes are best effort; their failure is logged and does not fail
// the upsert.
func (s Service) UpsertOrder(ctx context.Context, record Record, analyticsBlob, perfBlob string) error {
	now := time.Now()
	detectedAt := record.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = now
	}

	err := s.qry.UpsertOrder(ctx, db.UpsertOrderParams{
		OrderNumber:        record.Id,
		CustomerName:       record.Customer,
		Restaurant:         record.Restaurant,
		DeliveryAddress:    record.Address,
		TotalAmount:        record.Total,
		Status:             string(record.Status),
		CookingTime:        record.CookingTime,
		DeliveryTime:       record.DeliveryTime,
		Rider:              record.Rider,
		CreatedAtText:      record.CreatedAt,
		Priority:           string(record.Priority),
		Fingerprint:        record.Fingerprint,
		DetectedAt:         detectedAt.Unix(),
		ProcessedAt:        now.Unix(),
		AnalyticsData:      analyticsBlob,
		PerformanceMetrics: perfBlob,
	})
	if err != nil {
		return fmt.Errorf("upsert order %q: %w", record.Id, err)
	}

	raw, err := json.Marshal(record.Order)
	if err != nil {
		raw = []byte("{}")
	}
	err = s.qry.CreateOrderEvent(ctx, db.CreateOrderEventParams{
		OrderNumber: record.Id,
		EventType:   "order_detected",
		RawData:     string(raw),
		CreatedAt:   now.Unix(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record order event",
			"order", record.Id, "err", err)
	}

	err = s.qry.CreateNotification(ctx, db.CreateNotificationParams{
		OrderNumber: record.Id,
		Channel:     "terminal",
		Message: fmt.Sprintf(
			"order %s from %s for %s (%s priority)",
			record.Id, record.Restaurant, record.Customer, record.Priority,
		),
		CreatedAt: now.Unix(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record notification intent",
			"order", record.Id, "err", err)
	}

	return nil
}
