package feed

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// SortByDue orders items ascending by due date in place. Undated items go
// last and equal keys keep their input order.
func SortByDue(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return CompareDue(a.DueAt, b.DueAt)
	})
}

// CompareDue orders due dates ascending with nil after every date.
func CompareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// Group is one category of the feed.
type Group struct {
	Type  Type
	Items []Item
}

// Categorize buckets items by type in display order, keeping each bucket's
// input order. Empty categories are omitted.
func Categorize(items []Item) []Group {
	byType := lo.GroupBy(items, func(item Item) Type { return item.Type })
	groups := make([]Group, 0, len(byType))
	for _, t := range Types {
		if bucket := byType[t]; len(bucket) > 0 {
			groups = append(groups, Group{Type: t, Items: bucket})
		}
	}
	return groups
}

// FilterByType keeps only items of type t.
func FilterByType(items []Item, t Type) []Item {
	return lo.Filter(items, func(item Item, _ int) bool { return item.Type == t })
}
