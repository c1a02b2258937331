package besmart

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const knownMarkupRow = `
<table class="responsive-table"><tbody>
<tr class="orders-list-item inpreparation">
	<td><div class="order-id-field"><input type="checkbox"> A-1001</div></td>
	<td><div class="vendor-field"><a class="link">Tacos El Sol</a></div></td>
	<td><div class="customer-field"><a class="link">Juan Perez</a></div></td>
	<td>Centro</td>
	<td><span class="price">$125.50</span></td>
	<td>10:32</td>
	<td>15m</td>
	<td>25m</td>
	<td>Pedro</td>
</tr>
</tbody></table>`

func parseRow(t *testing.T, html string, detectedAt time.Time) (Order, bool) {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	row := doc.Find("tr").First()
	require.Equal(t, 1, row.Length())
	return ParseOrder(row, detectedAt)
}

func TestParseKnownMarkup(t *testing.T) {
	detectedAt := time.Date(2024, 6, 1, 10, 35, 0, 0, time.UTC)
	order, ok := parseRow(t, knownMarkupRow, detectedAt)
	require.True(t, ok)

	require.Equal(t, "1001", order.Id)
	require.Equal(t, "Tacos El Sol", order.Restaurant)
	require.Equal(t, "Juan Perez", order.Customer)
	require.Equal(t, "Centro", order.Address)
	require.Equal(t, "125.50", order.Total)
	require.Equal(t, StatusInPreparation, order.Status)
	require.Equal(t, "10:32", order.CreatedAt)
	require.Equal(t, "15m", order.CookingTime)
	require.Equal(t, "25m", order.DeliveryTime)
	require.Equal(t, "Pedro", order.Rider)
	require.Equal(t, detectedAt, order.DetectedAt)
}

// parsing the same row twice with the same detection time must yield the
// same record
func TestParseIdempotent(t *testing.T) {
	detectedAt := time.Date(2024, 6, 1, 10, 35, 0, 0, time.UTC)
	first, ok := parseRow(t, knownMarkupRow, detectedAt)
	require.True(t, ok)
	second, ok := parseRow(t, knownMarkupRow, detectedAt)
	require.True(t, ok)
	require.Equal(t, first, second)
}

func TestParseDropsRowWithoutId(t *testing.T) {
	_, ok := parseRow(t, `
<table><tbody><tr>
	<td>no identifier here</td>
	<td>vendor text</td>
	<td>customer text</td>
</tr></tbody></table>`, time.Now())
	require.False(t, ok)
}

func TestParseRegexFallbacks(t *testing.T) {
	// no structural classes at all, id and amount only recoverable from
	// free text
	order, ok := parseRow(t, `
<table><tbody><tr>
	<td>Order: TSK-20451</td>
	<td>some vendor</td>
	<td>a customer</td>
	<td>Norte</td>
	<td>MXN 1,250.00 total</td>
</tr></tbody></table>`, time.Now())
	require.True(t, ok)

	require.Equal(t, "20451", order.Id)
	require.Equal(t, "Norte", order.Address)
	require.Equal(t, "1250.00", order.Total)
	require.Equal(t, StatusUnknown, order.Status)
}

func TestParseStatusFromRowClasses(t *testing.T) {
	for class, expected := range map[string]Status{
		"processed":          StatusProcessed,
		"inpreparation":      StatusInPreparation,
		"readyforcollection": StatusReadyForCollection,
		"ontheway":           StatusOnTheWay,
		"atlocation":         StatusAtLocation,
	} {
		order, ok := parseRow(t, `
<table><tbody><tr class="orders-list-item `+class+`">
	<td><div class="order-id-field">77</div></td>
	<td>v</td><td>c</td><td>z</td><td><span class="price">$1</span></td>
</tr></tbody></table>`, time.Now())
		require.True(t, ok)
		require.Equal(t, expected, order.Status, "class %q", class)
	}
}

func TestParseStatusFromLabeledCell(t *testing.T) {
	order, ok := parseRow(t, `
<table><tbody><tr>
	<td><div class="order-id-field">88</div></td>
	<td>v</td><td>c</td><td>z</td><td><span class="price">$1</span></td>
	<td><span class="status">On the way</span></td>
</tr></tbody></table>`, time.Now())
	require.True(t, ok)
	require.Equal(t, StatusOnTheWay, order.Status)
}
