package besmart

import (
	"regexp"
	"strings"
	"time"
	"besmart-monitor/lib/htmlutil"
	"besmart-monitor/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Per-field extraction is a cascade: a structural rule (column position +
// nested element class) first, then looser class-based selectors, then a
// regex over the row's visible text. The order id is the only field that
// must resolve; rows without one are dropped.

var digitRunRegex = regexp.MustCompile(`\d+`)
var amountRegex = regexp.MustCompile(`[\d,]+\.?\d*`)

var idTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Task[:\s]*([A-Z0-9-]+)`),
	regexp.MustCompile(`(?i)Order[:\s]*([A-Z0-9-]+)`),
	regexp.MustCompile(`#([A-Z0-9-]+)`),
	regexp.MustCompile(`([A-Z]{2,3}-\d{4,})`),
	regexp.MustCompile(`(?i)ID[:\s]*([A-Z0-9-]+)`),
}

var idFallbackSelectors = []string{
	".order-id-field",
	"div[class*='order-id']",
	"span[class*='order-id']",
	".order-id",
	".task-id",
}

var customerFallbackSelectors = []string{
	".customer-field a",
	".customer-field span",
	"span[class*='customer']",
	"td[class*='customer']",
}

var restaurantFallbackSelectors = []string{
	".vendor-field a",
	".vendor-field span",
	"span[class*='vendor']",
	"span[class*='restaurant']",
	"td[class*='vendor']",
}

var addressFallbackSelectors = []string{
	"td:nth-child(4) div",
	"span[class*='address']",
	"td[class*='address']",
}

var amountFallbackSelectors = []string{
	"span.price",
	".price",
	"span[class*='amount']",
	"span[class*='total']",
}

var statusFallbackSelectors = []string{
	"span[class*='status']",
	"td[class*='status']",
	".status-field",
}

// state-indicating classes the panel puts on the row itself
var statusClasses = map[string]Status{
	"processed":          StatusProcessed,
	"inpreparation":      StatusInPreparation,
	"readyforcollection": StatusReadyForCollection,
	"ontheway":           StatusOnTheWay,
	"atlocation":         StatusAtLocation,
}

var statusLabels = map[string]Status{
	"Processed":            StatusProcessed,
	"In Preparation":       StatusInPreparation,
	"Ready For Collection": StatusReadyForCollection,
	"On The Way":           StatusOnTheWay,
	"At Location":          StatusAtLocation,
}

var canonicalStatusLabels = []string{
	"Processed",
	"In Preparation",
	"Ready For Collection",
	"On The Way",
	"At Location",
}

// ParseOrder extracts a structured order from one row element. It returns
// false when no identifying key is recoverable by any rule; every other
// field is best-effort and may be empty.
func ParseOrder(row *goquery.Selection, detectedAt time.Time) (Order, bool) {
	order := Order{
		Status:     StatusUnknown,
		DetectedAt: detectedAt,
	}

	cells := row.Find("td")

	order.Id = extractOrderId(row, cells)
	if order.Id == "" {
		return Order{}, false
	}

	order.Restaurant = cellField(cells, 1, "div.vendor-field a.link", row, restaurantFallbackSelectors)
	order.Customer = cellField(cells, 2, "div.customer-field a.link", row, customerFallbackSelectors)
	order.Address = cellField(cells, 3, "", row, addressFallbackSelectors)
	order.Total = extractAmount(row, cells)
	order.CreatedAt = cellText(cells, 5)
	order.CookingTime = cellText(cells, 6)
	order.DeliveryTime = cellText(cells, 7)
	order.Rider = cellText(cells, 8)
	order.Status = extractStatus(row)

	return order, true
}

func extractOrderId(row *goquery.Selection, cells *goquery.Selection) string {
	// structural: first column's id field, keep the trailing digit run
	// (the cell also holds a checkbox and a display prefix)
	if cells.Length() > 0 {
		field := cells.Eq(0).Find("div.order-id-field")
		if field.Length() > 0 {
			if id := lastDigitRun(htmlutil.CleanText(field)); id != "" {
				return id
			}
		}
	}

	for _, selector := range idFallbackSelectors {
		el := row.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		if id := lastDigitRun(htmlutil.CleanText(el)); id != "" {
			return id
		}
	}

	text := row.Text()
	for _, pattern := range idTextPatterns {
		groups := pattern.FindStringSubmatch(text)
		if len(groups) < 2 {
			continue
		}
		if id := lastDigitRun(groups[1]); id != "" {
			return id
		}
	}

	return ""
}

func lastDigitRun(s string) string {
	runs := digitRunRegex.FindAllString(s, -1)
	if len(runs) == 0 {
		return ""
	}
	return runs[len(runs)-1]
}

func cellField(cells *goquery.Selection, column int, nested string, row *goquery.Selection, fallbacks []string) string {
	if cells.Length() > column {
		cell := cells.Eq(column)
		if nested != "" {
			el := cell.Find(nested)
			if el.Length() > 0 {
				if text := htmlutil.CleanText(el); text != "" {
					return text
				}
			}
		} else {
			if text := htmlutil.CleanText(cell); text != "" {
				return text
			}
		}
	}

	for _, selector := range fallbacks {
		el := row.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		if text := htmlutil.CleanText(el); text != "" {
			return text
		}
	}
	return ""
}

func extractAmount(row *goquery.Selection, cells *goquery.Selection) string {
	if cells.Length() > 4 {
		price := cells.Eq(4).Find("span.price")
		if price.Length() > 0 {
			if amount := firstAmount(price.Text()); amount != "" {
				return amount
			}
		}
	}

	for _, selector := range amountFallbackSelectors {
		el := row.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		if amount := firstAmount(el.Text()); amount != "" {
			return amount
		}
	}

	// last resort: any numeric token in the total column's text
	if cells.Length() > 4 {
		return firstAmount(cells.Eq(4).Text())
	}
	return ""
}

// firstAmount picks the first numeric token and strips thousands
// separators, "$1,250.50" -> "1250.50".
func firstAmount(text string) string {
	match := amountRegex.FindString(text)
	return strings.ReplaceAll(match, ",", "")
}

func cellText(cells *goquery.Selection, column int) string {
	if cells.Length() <= column {
		return ""
	}
	return htmlutil.CleanText(cells.Eq(column))
}

func extractStatus(row *goquery.Selection) Status {
	for _, class := range htmlutil.Classes(row) {
		if status, ok := statusClasses[strings.ToLower(class)]; ok {
			return status
		}
	}

	// fallback: a status-labeled cell, tolerant of label drift
	for _, selector := range statusFallbackSelectors {
		el := row.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		label := textutil.ClosestLabel(htmlutil.CleanText(el), canonicalStatusLabels)
		if label != "" {
			return statusLabels[label]
		}
	}

	return StatusUnknown
}
