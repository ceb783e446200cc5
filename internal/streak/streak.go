// Package streak turns activity timestamps into day-streak counts.
package streak

import (
	"fmt"
	"slices"
	"time"
)

// Current returns the number of consecutive calendar days with activity,
// ending today or yesterday. Days are taken in now's location. Timestamps
// later than today count as today.
//
// A streak whose most recent day is two or more days before today is broken
// and reports 0.
func Current(timestamps []time.Time, now time.Time) int {
	days := distinctDays(timestamps, now)
	if len(days) == 0 {
		return 0
	}

	today := dayOf(now, now.Location())
	if days[0].Before(today.AddDate(0, 0, -1)) {
		return 0
	}
	return runFrom(days, 0)
}

// Longest returns the longest run of consecutive activity days ever
// recorded, regardless of whether it is still going.
func Longest(timestamps []time.Time, now time.Time) int {
	days := distinctDays(timestamps, now)
	best := 0
	for i := 0; i < len(days); {
		n := runFrom(days, i)
		best = max(best, n)
		i += n
	}
	return best
}

// runFrom counts consecutive days starting at days[i], walking backwards in
// time. days must be sorted most recent first.
func runFrom(days []time.Time, i int) int {
	n := 1
	for j := i + 1; j < len(days); j++ {
		if !days[j-1].AddDate(0, 0, -1).Equal(days[j]) {
			break
		}
		n++
	}
	return n
}

// distinctDays normalises timestamps to local midnight, clamps future days
// to today, and returns them deduplicated, most recent first.
func distinctDays(timestamps []time.Time, now time.Time) []time.Time {
	loc := now.Location()
	today := dayOf(now, loc)

	seen := make(map[time.Time]bool, len(timestamps))
	days := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		if ts.IsZero() {
			continue
		}
		d := dayOf(ts, loc)
		if d.After(today) {
			d = today
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}

	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })
	return days
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseTimestamps parses RFC 3339 timestamps, reporting the first bad entry.
func ParseTimestamps(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for i, s := range raw {
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("timestamp %d %q: %w", i, s, err)
		}
		out = append(out, ts)
	}
	return out, nil
}

// NextMilestone returns the next streak milestone above the current streak
// length.
func NextMilestone(current int) int {
	milestones := []int{3, 7, 14, 30}
	for _, m := range milestones {
		if m > current {
			return m
		}
	}
	// Beyond 30, every 30 days.
	return ((current / 30) + 1) * 30
}
