package besmart

import (
	"regexp"
	"strconv"
	"strings"
	"besmart-monitor/lib/htmlutil"
	"besmart-monitor/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// words that show up in an order row's text no matter how the markup
// drifts
var domainKeywords = []string{"vendor", "customer", "price", "total", "order", "rider"}

const minOrderColumns = 5

type containerStrategy struct {
	name string
	find func(doc *goquery.Document) []*goquery.Selection
}

// The listing markup belongs to a third party and drifts between
// releases, so container detection is a cascade of strategies rather than
// one fixed selector. First non-empty result wins.
var containerStrategies = []containerStrategy{
	{name: "orders-table", find: findKnownOrderRows},
	{name: "generic-table", find: findGenericOrderRows},
	{name: "keyword-scan", find: findByKeywordScan},
}

// FindOrderContainers returns the elements representing individual order
// rows, in document order, along with the name of the strategy that
// located them.
func FindOrderContainers(doc *goquery.Document) ([]*goquery.Selection, string) {
	for _, strategy := range containerStrategies {
		rows := strategy.find(doc)
		if len(rows) > 0 {
			return rows, strategy.name
		}
	}
	return nil, ""
}

func findKnownOrderRows(doc *goquery.Document) []*goquery.Selection {
	var rows []*goquery.Selection
	doc.Find("table.responsive-table tbody tr.orders-list-item").Each(func(_ int, row *goquery.Selection) {
		rows = append(rows, row)
	})
	return rows
}

func findGenericOrderRows(doc *goquery.Document) []*goquery.Selection {
	var rows []*goquery.Selection
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("td").Length() < minOrderColumns {
			return
		}
		if !textutil.ContainsKeyword(row.Text(), domainKeywords) {
			return
		}
		rows = append(rows, row)
	})
	return rows
}

var orderClassRegex = regexp.MustCompile(`(?i)order|task|active`)

func findByKeywordScan(doc *goquery.Document) []*goquery.Selection {
	var rows []*goquery.Selection
	doc.Find("tr, div, li").Each(func(_ int, el *goquery.Selection) {
		class, ok := el.Attr("class")
		if !ok || !orderClassRegex.MatchString(class) {
			return
		}
		if !textutil.ContainsKeyword(el.Text(), domainKeywords) {
			return
		}
		rows = append(rows, el)
	})
	return rows
}

// ActiveOrdersCount reads the count off the panel's "Active orders"
// toggle button when it is present.
func ActiveOrdersCount(doc *goquery.Document) (int, bool) {
	count := 0
	found := false
	doc.Find("div.btn").EachWithBreak(func(_ int, btn *goquery.Selection) bool {
		label := btn.Find("span.label")
		if !strings.Contains(label.Text(), "Active orders") {
			return true
		}
		value := htmlutil.CleanText(btn.Find("span.value"))
		n, err := strconv.Atoi(value)
		if err != nil {
			return true
		}
		count = n
		found = true
		return false
	})
	return count, found
}
