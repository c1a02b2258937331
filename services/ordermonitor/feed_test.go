package ordermonitor

import (
	"bytes"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTruncateKeepsRunesIntact(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))

	long := "Café Ñandú Empanadería del Niño"
	cut := truncate(long, 12)
	require.True(t, utf8.ValidString(cut))
	require.Equal(t, 12, len([]rune(cut)))
	require.Equal(t, "Café Ñandú …", cut)
}

func TestFeedSkipsEmptyBatches(t *testing.T) {
	var out bytes.Buffer
	feed := NewFeed(&out)

	feed.Orders(nil, time.Now())
	require.Empty(t, out.String())
}

func TestFeedRendersBatch(t *testing.T) {
	var out bytes.Buffer
	feed := NewFeed(&out)

	detected := time.Date(2026, 8, 30, 10, 32, 0, 0, time.UTC)
	order := sampleOrder("1001", detected)
	feed.Orders([]Record{{Order: order, Priority: PriorityNormal}}, detected)

	rendered := out.String()
	require.Contains(t, rendered, "1001")
	require.Contains(t, rendered, "Tacos El Sol")
	require.Contains(t, rendered, "NORMAL")
	require.True(t, utf8.ValidString(rendered))
}
