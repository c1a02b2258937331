package ordermonitor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"besmart-monitor/lib/scrapers/besmart"
)

// Fingerprint computes the stable identity hash of a logical order. The
// detection time only participates as a day bucket, so the same order
// hashes identically across polling cycles.
func Fingerprint(order besmart.Order) string {
	bucket := order.DetectedAt.UTC().Format("2006-01-02")
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%s\x00%s\x00%s\x00%s",
		order.Id, order.Customer, order.Address, bucket,
	)))
	return hex.EncodeToString(sum[:])
}

// KnownSet is a bounded membership set of fingerprints. When inserting
// past capacity it is cleared in full rather than evicted entry by entry;
// a previously reported order can therefore be re-emitted after a
// rotation. That tradeoff is intentional, the capacity should be sized
// past a day's order volume.
type KnownSet struct {
	capacity int

	mu   sync.Mutex
	seen map[string]struct{}
}

const DefaultKnownCapacity = 500

func NewKnownSet(capacity int) *KnownSet {
	if capacity <= 0 {
		capacity = DefaultKnownCapacity
	}
	return &KnownSet{
		capacity: capacity,
		seen:     make(map[string]struct{}),
	}
}

// Observe reports whether the fingerprint is new, inserting it as a side
// effect.
func (s *KnownSet) Observe(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, known := s.seen[fingerprint]; known {
		return false
	}
	if len(s.seen) >= s.capacity {
		slog.Info("known-order set at capacity, rotating", "capacity", s.capacity)
		s.seen = make(map[string]struct{})
	}
	s.seen[fingerprint] = struct{}{}
	return true
}

func (s *KnownSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// NewOrders filters a batch down to the orders whose fingerprint has not
// been seen before, inserting every new fingerprint into the set.
func (s *KnownSet) NewOrders(orders []besmart.Order) []Record {
	var records []Record
	for _, order := range orders {
		fingerprint := Fingerprint(order)
		if !s.Observe(fingerprint) {
			continue
		}
		records = append(records, Record{
			Order:       order,
			Fingerprint: fingerprint,
		})
	}
	return records
}
