package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Order struct {
	ID                 int64
	OrderNumber        string
	CustomerName       string
	Restaurant         string
	DeliveryAddress    string
	TotalAmount        string
	Status             string
	CookingTime        string
	DeliveryTime       string
	Rider              string
	CreatedAtText      string
	Priority           string
	Fingerprint        string
	DetectedAt         int64
	ProcessedAt        int64
	AnalyticsData      string
	PerformanceMetrics string
}

type UpsertOrderParams struct {
	OrderNumber        string
	CustomerName       string
	Restaurant         string
	DeliveryAddress    string
	TotalAmount        string
	Status             string
	CookingTime        string
	DeliveryTime       string
	Rider              string
	CreatedAtText      string
	Priority           string
	Fingerprint        string
	DetectedAt         int64
	ProcessedAt        int64
	AnalyticsData      string
	PerformanceMetrics string
}

const upsertOrder = `
INSERT INTO orders (
	order_number, customer_name, restaurant, delivery_address,
	total_amount, status, cooking_time, delivery_time, rider,
	created_at_text, priority, fingerprint, detected_at, processed_at,
	analytics_data, performance_metrics
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (order_number) DO UPDATE SET
	status = excluded.status,
	priority = excluded.priority,
	processed_at = excluded.processed_at,
	analytics_data = excluded.analytics_data,
	performance_metrics = excluded.performance_metrics
`

// UpsertOrder inserts a row keyed by order number, or updates only the
// mutable fields when the key already exists. Creation-time fields are
// left untouched on conflict.
func (q *Queries) UpsertOrder(ctx context.Context, arg UpsertOrderParams) error {
	_, err := q.db.ExecContext(ctx, upsertOrder,
		arg.OrderNumber,
		arg.CustomerName,
		arg.Restaurant,
		arg.DeliveryAddress,
		arg.TotalAmount,
		arg.Status,
		arg.CookingTime,
		arg.DeliveryTime,
		arg.Rider,
		arg.CreatedAtText,
		arg.Priority,
		arg.Fingerprint,
		arg.DetectedAt,
		arg.ProcessedAt,
		arg.AnalyticsData,
		arg.PerformanceMetrics,
	)
	return err
}

const getOrder = `
SELECT id, order_number, customer_name, restaurant, delivery_address,
	total_amount, status, cooking_time, delivery_time, rider,
	created_at_text, priority, fingerprint, detected_at, processed_at,
	analytics_data, performance_metrics
FROM orders WHERE order_number = ?
`

func (q *Queries) GetOrder(ctx context.Context, orderNumber string) (Order, error) {
	row := q.db.QueryRowContext(ctx, getOrder, orderNumber)
	var o Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerName,
		&o.Restaurant,
		&o.DeliveryAddress,
		&o.TotalAmount,
		&o.Status,
		&o.CookingTime,
		&o.DeliveryTime,
		&o.Rider,
		&o.CreatedAtText,
		&o.Priority,
		&o.Fingerprint,
		&o.DetectedAt,
		&o.ProcessedAt,
		&o.AnalyticsData,
		&o.PerformanceMetrics,
	)
	return o, err
}

const listRecentOrders = `
SELECT id, order_number, customer_name, restaurant, delivery_address,
	total_amount, status, cooking_time, delivery_time, rider,
	created_at_text, priority, fingerprint, detected_at, processed_at,
	analytics_data, performance_metrics
FROM orders ORDER BY detected_at DESC LIMIT ?
`

func (q *Queries) ListRecentOrders(ctx context.Context, limit int64) ([]Order, error) {
	rows, err := q.db.QueryContext(ctx, listRecentOrders, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.CustomerName,
			&o.Restaurant,
			&o.DeliveryAddress,
			&o.TotalAmount,
			&o.Status,
			&o.CookingTime,
			&o.DeliveryTime,
			&o.Rider,
			&o.CreatedAtText,
			&o.Priority,
			&o.Fingerprint,
			&o.DetectedAt,
			&o.ProcessedAt,
			&o.AnalyticsData,
			&o.PerformanceMetrics,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type StatusCount struct {
	Status string
	Count  int64
}

const countOrdersByStatus = `
SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY COUNT(*) DESC, status
`

func (q *Queries) CountOrdersByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := q.db.QueryContext(ctx, countOrdersByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

const countOrders = `SELECT COUNT(*) FROM orders`

func (q *Queries) CountOrders(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countOrders)
	var count int64
	err := row.Scan(&count)
	return count, err
}

type CreateOrderEventParams struct {
	OrderNumber string
	EventType   string
	RawData     string
	CreatedAt   int64
}

const createOrderEvent = `
INSERT INTO order_events (order_number, event_type, raw_data, created_at)
VALUES (?, ?, ?, ?)
`

func (q *Queries) CreateOrderEvent(ctx context.Context, arg CreateOrderEventParams) error {
	_, err := q.db.ExecContext(ctx, createOrderEvent,
		arg.OrderNumber,
		arg.EventType,
		arg.RawData,
		arg.CreatedAt,
	)
	return err
}

type CreateNotificationParams struct {
	OrderNumber string
	Channel     string
	Message     string
	CreatedAt   int64
}

const createNotification = `
INSERT INTO notifications (order_number, channel, message, created_at)
VALUES (?, ?, ?, ?)
`

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) error {
	_, err := q.db.ExecContext(ctx, createNotification,
		arg.OrderNumber,
		arg.Channel,
		arg.Message,
		arg.CreatedAt,
	)
	return err
}

const countOrderEvents = `SELECT COUNT(*) FROM order_events WHERE order_number = ?`

func (q *Queries) CountOrderEvents(ctx context.Context, orderNumber string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countOrderEvents, orderNumber)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countNotifications = `SELECT COUNT(*) FROM notifications WHERE order_number = ?`

func (q *Queries) CountNotifications(ctx context.Context, orderNumber string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countNotifications, orderNumber)
	var count int64
	err := row.Scan(&count)
	return count, err
}
