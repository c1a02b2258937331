package ordermonitor

import (
	"besmart-monitor/lib/scrapers/besmart"
)

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Record is an extracted order that passed the novelty filter, ready for
// classification and persistence.
type Record struct {
	besmart.Order
	Fingerprint string
	Priority    Priority
}
