package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	require.Equal(t, "inpreparation", NormalizeLabel("  In Preparation\n"))
	require.Equal(t, "ontheway", NormalizeLabel("On The Way"))
}

func TestContainsKeyword(t *testing.T) {
	keywords := []string{"vendor", "customer", "price"}
	require.True(t, ContainsKeyword("Tacos El Sol | Customer: Juan", keywords))
	require.False(t, ContainsKeyword("nothing of interest here", keywords))
}

func TestClosestLabel(t *testing.T) {
	canonical := []string{"In Preparation", "On The Way", "Ready For Collection"}

	require.Equal(t, "In Preparation", ClosestLabel("in preparation", canonical))
	// one typo should still resolve
	require.Equal(t, "Ready For Collection", ClosestLabel("Redy for collection", canonical))
	require.Equal(t, "", ClosestLabel("cancelled", canonical))
	require.Equal(t, "", ClosestLabel("", canonical))
}
