package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<td>  Tacos
		El   Sol </td>`,
	))
	require.NoError(t, err)

	require.Equal(t, "Tacos El Sol", CleanText(doc.Find("td")))
}

func TestClasses(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<tr class="orders-list-item inpreparation"><td></td></tr>`,
	))
	require.NoError(t, err)

	require.Equal(t,
		[]string{"orders-list-item", "inpreparation"},
		Classes(doc.Find("tr")),
	)
	require.Nil(t, Classes(doc.Find("td")))
}
