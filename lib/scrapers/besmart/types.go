package besmart

import (
	"fmt"
	"time"
)

// Status is the order lifecycle state the admin panel renders, either as a
// css class on the row or as a labeled cell.
type Status string

const (
	StatusProcessed          Status = "Processed"
	StatusInPreparation      Status = "InPreparation"
	StatusReadyForCollection Status = "ReadyForCollection"
	StatusOnTheWay           Status = "OnTheWay"
	StatusAtLocation         Status = "AtLocation"
	StatusUnknown            Status = "Unknown"
)

// Order is one row of the order listing after extraction. Id is the only
// field extraction guarantees; everything else is best-effort.
type Order struct {
	Id           string
	Customer     string
	Restaurant   string
	Address      string
	Total        string
	Status       Status
	CookingTime  string
	DeliveryTime string
	Rider        string
	CreatedAt    string
	DetectedAt   time.Time
}

// RawPage is a fetched order-listing page. It only lives long enough to be
// parsed.
type RawPage struct {
	Body      []byte
	Url       string
	FinalUrl  string
	FetchedAt time.Time
}

// FetchError reports a non-2xx response or transport failure from the
// listing surface. A tick that hits one produces zero new orders.
type FetchError struct {
	Url        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.Url, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.Url, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
