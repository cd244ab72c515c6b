// Package period maps timestamps onto calendar-month buckets.
//
// All arithmetic is done in UTC on the first day of the month, so month
// boundaries never drift the way fixed day offsets do.
package period

import (
	"fmt"
	"time"
)

// LabelLayout formats a bucket as "Jan 2006".
const LabelLayout = "Jan 2006"

// Bucket is a half-open [Start, End) calendar month.
type Bucket struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
}

// Month returns the bucket for the given year and month. Month values outside
// 1..12 are normalized by time.Date.
func Month(year int, month time.Month) Bucket {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Bucket{
		Year:  start.Year(),
		Month: start.Month(),
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// Of returns the bucket containing t.
func Of(t time.Time) Bucket {
	t = t.UTC()
	return Month(t.Year(), t.Month())
}

// MonthsAgo returns the bucket i calendar months before the month containing now.
// Negative i moves forward.
func MonthsAgo(now time.Time, i int) Bucket {
	return Of(now).Shift(-i)
}

// Trailing returns n buckets ending with the month containing now, oldest first.
func Trailing(now time.Time, n int) []Bucket {
	if n <= 0 {
		return nil
	}
	out := make([]Bucket, n)
	for i := 0; i < n; i++ {
		out[i] = MonthsAgo(now, n-1-i)
	}
	return out
}

// Forward returns n buckets starting with the month containing now.
func Forward(now time.Time, n int) []Bucket {
	if n <= 0 {
		return nil
	}
	out := make([]Bucket, n)
	for i := 0; i < n; i++ {
		out[i] = MonthsAgo(now, -i)
	}
	return out
}

// Year returns the [Jan 1, Jan 1 of next year) range for year.
func Year(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// Shift returns the bucket n months after b (before, if n is negative).
func (b Bucket) Shift(n int) Bucket {
	s := b.Start.AddDate(0, n, 0)
	return Month(s.Year(), s.Month())
}

// Contains reports whether t falls inside the bucket.
func (b Bucket) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(b.Start) && t.Before(b.End)
}

// Before reports whether b starts before o.
func (b Bucket) Before(o Bucket) bool {
	return b.Start.Before(o.Start)
}

// Equal reports whether b and o are the same month.
func (b Bucket) Equal(o Bucket) bool {
	return b.Year == o.Year && b.Month == o.Month
}

// Label renders the bucket as e.g. "Feb 2026".
func (b Bucket) Label() string {
	return b.Start.Format(LabelLayout)
}

// String implements fmt.Stringer.
func (b Bucket) String() string {
	return fmt.Sprintf("%04d-%02d", b.Year, int(b.Month))
}
