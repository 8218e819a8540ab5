package usage

import (
	"fmt"
	"sort"
	"time"
)

// Window is the bucket width of an aggregated usage report.
type Window string

const (
	Window15m Window = "15m"
	Window1h  Window = "1h"
	Window1d  Window = "1d"
)

// ParseWindow validates a window name. An empty string selects Window1d.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "":
		return Window1d, nil
	case Window15m, Window1h, Window1d:
		return Window(s), nil
	}
	return "", fmt.Errorf("invalid window %q: use 15m, 1h, or 1d", s)
}

func (w Window) minutes() int {
	switch w {
	case Window15m:
		return 15
	case Window1h:
		return 60
	default:
		return 1440
	}
}

// Bucket is the token total of one time window.
type Bucket struct {
	Timestamp   string `json:"timestamp"`
	TotalTokens int    `json:"total_tokens"`
}

// Aggregate sums record totals per window. Daily buckets are keyed by date,
// shorter windows by the RFC 3339 start of the window. Buckets are sorted by timestamp.
func Aggregate(records []Record, window Window) []Bucket {
	totals := make(map[string]int)
	for _, rec := range records {
		totals[bucketKey(rec.CreatedAt.UTC(), window)] += rec.Total()
	}

	buckets := make([]Bucket, 0, len(totals))
	for key, total := range totals {
		buckets = append(buckets, Bucket{Timestamp: key, TotalTokens: total})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Timestamp < buckets[j].Timestamp
	})
	return buckets
}

func bucketKey(ts time.Time, window Window) string {
	if window == Window1d {
		return ts.Format(DateLayout)
	}
	size := window.minutes()
	minutes := ts.Hour()*60 + ts.Minute()
	rounded := (minutes / size) * size
	start := time.Date(ts.Year(), ts.Month(), ts.Day(), rounded/60, rounded%60, 0, 0, time.UTC)
	return start.Format(time.RFC3339)
}

// MonthRange returns the first and last calendar date of month ("YYYY-MM").
func MonthRange(month string) (start, end string, err error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q: use YYYY-MM", month)
	}
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout), nil
}
