// Package feedback keeps a fresh, cleaned snapshot of public feedback for
// the home page carousel.
package feedback

import (
	"sort"

	"github.com/pochi-app/pochi-web/internal/upstream"
)

// IconCount is the size of the decorative icon set the carousel rotates
// through.
const IconCount = 8

const (
	marqueeMinItems = 6
	marqueeMaxItems = 15
)

// Process cleans a raw feedback list for display: items missing a required
// field are dropped, duplicate ids keep their first occurrence, and the
// result is ordered newest first.
func Process(items []upstream.FeedbackItem) []upstream.FeedbackItem {
	seen := make(map[int]bool, len(items))
	out := make([]upstream.FeedbackItem, 0, len(items))
	for _, it := range items {
		if !it.Complete() {
			continue
		}
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	// ISO-8601 timestamps compare correctly as strings.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// IconIndex maps a timestamp string to a stable icon slot. Cosmetic, but it
// must not change between renders of the same item.
func IconIndex(timestamp string, iconCount int) int {
	if iconCount <= 0 {
		return 0
	}
	sum := 0
	for i := 0; i < len(timestamp); i++ {
		sum += int(timestamp[i])
	}
	return sum % iconCount
}

// MarqueeItems builds the looping strip: up to 15 distinct items, padded by
// repetition to at least 6, then tripled so the scroll has no visible seam.
func MarqueeItems(items []upstream.FeedbackItem) []upstream.FeedbackItem {
	if len(items) == 0 {
		return nil
	}
	distinct := items
	if len(distinct) > marqueeMaxItems {
		distinct = distinct[:marqueeMaxItems]
	}
	base := make([]upstream.FeedbackItem, 0, marqueeMinItems)
	for len(base) < marqueeMinItems {
		base = append(base, distinct...)
	}
	out := make([]upstream.FeedbackItem, 0, len(base)*3)
	for i := 0; i < 3; i++ {
		out = append(out, base...)
	}
	return out
}
