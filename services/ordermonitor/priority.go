package ordermonitor

import (
	"strings"
	"time"
	"besmart-monitor/lib/scrapers/besmart"
)

// PriorityPolicy holds the scoring thresholds. The numbers carry no
// strong justification beyond operator experience, so they are policy
// rather than contract; construct a different policy to change them.
type PriorityPolicy struct {
	// score thresholds for each bucket
	UrgentAt int
	HighAt   int
	NormalAt int
	// elapsed time since detection
	LongWait   time.Duration
	MediumWait time.Duration
	// orders within the analytics window before a customer counts as
	// frequent
	FrequentCustomer int
}

func DefaultPriorityPolicy() PriorityPolicy {
	return PriorityPolicy{
		UrgentAt:         4,
		HighAt:           2,
		NormalAt:         1,
		LongWait:         time.Minute * 5,
		MediumWait:       time.Minute * 3,
		FrequentCustomer: 5,
	}
}

// CustomerCounter is the slice of analytics the classifier needs.
type CustomerCounter interface {
	CustomerCount(name string) int
}

// Classify scores an order's urgency. The score is monotonic
// non-decreasing in elapsed detection time.
func (p PriorityPolicy) Classify(order besmart.Order, analytics CustomerCounter, now time.Time) Priority {
	score := 0

	status := strings.ToLower(string(order.Status))
	switch {
	case strings.Contains(status, "urgent"):
		score += 3
	case strings.Contains(status, "high"):
		score += 2
	case strings.Contains(status, "normal"):
		score += 1
	}

	if !order.DetectedAt.IsZero() {
		elapsed := now.Sub(order.DetectedAt)
		switch {
		case elapsed > p.LongWait:
			score += 2
		case elapsed > p.MediumWait:
			score += 1
		}
	}

	if analytics != nil && order.Customer != "" &&
		analytics.CustomerCount(order.Customer) > p.FrequentCustomer {
		score += 1
	}

	switch {
	case score >= p.UrgentAt:
		return PriorityUrgent
	case score >= p.HighAt:
		return PriorityHigh
	case score >= p.NormalAt:
		return PriorityNormal
	default:
		return PriorityLow
	}
}
