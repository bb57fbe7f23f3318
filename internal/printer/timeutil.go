package printer

import (
	"fmt"
	"time"
)

// TimeAgo returns a human-readable relative age for a timestamp, e.g.
// "5 seconds ago", "2 minutes ago", "3 days ago". The comparison is done
// in UTC, which is how the dashboard serializes every timestamp.
func TimeAgo(t time.Time) string {
	diff := time.Now().UTC().Sub(t.UTC())
	if diff < 0 {
		return "in the future"
	}

	steps := []struct {
		limit time.Duration
		div   time.Duration
		unit  string
	}{
		{time.Minute, time.Second, "second"},
		{time.Hour, time.Minute, "minute"},
		{24 * time.Hour, time.Hour, "hour"},
	}

	for _, s := range steps {
		if diff < s.limit {
			return plural(int(diff/s.div), s.unit)
		}
	}

	return plural(int(diff/(24*time.Hour)), "day")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
