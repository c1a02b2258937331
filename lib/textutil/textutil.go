package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeLabel(label string) string {
	label = strings.ToLower(label)
	label = strings.Trim(label, " \n\t")
	label = whitespaceRegex.ReplaceAllString(label, "")
	return label
}

func ContainsKeyword(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// ClosestLabel matches a scraped label against a set of canonical labels,
// tolerating the small spelling drift the admin panel shows between
// releases. Returns "" when nothing is within the edit-distance budget.
func ClosestLabel(scraped string, canonical []string) string {
	scraped = NormalizeLabel(scraped)
	if scraped == "" {
		return ""
	}

	best := ""
	bestDist := -1
	for _, c := range canonical {
		dist := matchr.Levenshtein(scraped, NormalizeLabel(c))
		if bestDist == -1 || dist < bestDist {
			best = c
			bestDist = dist
		}
	}

	// allow roughly a quarter of the label to differ
	if bestDist > len(scraped)/4 {
		return ""
	}
	return best
}
