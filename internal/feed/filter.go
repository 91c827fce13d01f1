package feed

import (
	"slices"
	"time"

	"github.com/orgball2608/contentflow/internal/domain"
)

func FilterByPlatform(items []domain.Post, platform domain.Platform) []domain.Post {
	return filter(items, func(p domain.Post) bool { return p.Platform == platform })
}

func FilterByStatus(items []domain.Post, status domain.Status) []domain.Post {
	return filter(items, func(p domain.Post) bool { return p.Status == status })
}

// FilterDocs keeps posts without a platform.
func FilterDocs(items []domain.Post) []domain.Post {
	return filter(items, func(p domain.Post) bool { return p.Platform.IsDoc() })
}

// SortByNewest returns a copy ordered by CreatedAt descending.
func SortByNewest(items []domain.Post) []domain.Post {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b domain.Post) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		}
		return 0
	})
	return out
}

// Apply runs every filter set in f, then sorts newest first.
func (f Filter) Apply(items []domain.Post) []domain.Post {
	out := items
	switch {
	case f.Docs:
		out = FilterDocs(out)
	case f.Platform != domain.NoPlatform:
		out = FilterByPlatform(out, f.Platform)
	}
	if f.Status != "" {
		out = FilterByStatus(out, f.Status)
	}
	return SortByNewest(out)
}

// CountPinned counts pinned posts of platform. Docs form their own group.
func CountPinned(items []domain.Post, platform domain.Platform) int {
	n := 0
	for _, p := range items {
		if p.Pinned && p.Platform == platform {
			n++
		}
	}
	return n
}

// PinnedOf returns the first MaxPinned pinned posts of platform in feed order.
func PinnedOf(items []domain.Post, platform domain.Platform) []domain.Post {
	out := make([]domain.Post, 0, domain.MaxPinned)
	for _, p := range items {
		if p.Pinned && p.Platform == platform {
			out = append(out, p)
			if len(out) == domain.MaxPinned {
				break
			}
		}
	}
	return out
}

// DayBounds returns the start of t's calendar day and of the next one, in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// ScheduledOn returns posts of platform whose schedule falls on day.
func ScheduledOn(items []domain.Post, platform domain.Platform, day time.Time) []domain.Post {
	start, end := DayBounds(day)
	return filter(items, func(p domain.Post) bool {
		if p.Platform != platform || p.ScheduledFor == nil {
			return false
		}
		at := *p.ScheduledFor
		return at >= start.UnixMilli() && at < end.UnixMilli()
	})
}

// InWeek returns posts whose scheduledFor, or createdAt when unscheduled,
// falls within the seven days from weekStart.
func InWeek(items []domain.Post, weekStart time.Time) []domain.Post {
	from := weekStart.UnixMilli()
	to := weekStart.AddDate(0, 0, 7).UnixMilli()
	return filter(items, func(p domain.Post) bool {
		at := p.CreatedAt
		if p.ScheduledFor != nil {
			at = *p.ScheduledFor
		}
		return at >= from && at < to
	})
}

func filter(items []domain.Post, keep func(domain.Post) bool) []domain.Post {
	out := make([]domain.Post, 0, len(items))
	for _, p := range items {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
