// Package timeago formats commit times relative to now.
package timeago

import (
	"fmt"
	"time"
)

var units = []struct {
	limit time.Duration
	size  time.Duration
	name  string
}{
	{time.Hour, time.Minute, "minute"},
	{24 * time.Hour, time.Hour, "hour"},
	{7 * 24 * time.Hour, 24 * time.Hour, "day"},
	{30 * 24 * time.Hour, 7 * 24 * time.Hour, "week"},
	{365 * 24 * time.Hour, 30 * 24 * time.Hour, "month"},
}

// Since returns a human-readable age such as "3 hours ago". Times in the
// future are reported as "just now".
func Since(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < time.Minute {
		return "just now"
	}
	for _, u := range units {
		if diff < u.limit {
			return plural(int(diff/u.size), u.name)
		}
	}
	return plural(int(diff/(365*24*time.Hour)), "year")
}

// Unix is Since for a unix timestamp.
func Unix(sec int64, now time.Time) string {
	return Since(time.Unix(sec, 0), now)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
