package daterange

import (
	"fmt"
	"time"
)

// Layout is the canonical ISO date layout used across the admission API.
const Layout = "2006-01-02"

// Normalize coerces a raw date string into YYYY-MM-DD form. Timestamps with a
// date prefix are truncated. Unparseable input yields an empty string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	if len(raw) >= len(Layout) {
		if _, err := time.Parse(Layout, raw[:len(Layout)]); err == nil {
			return raw[:len(Layout)]
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(Layout)
	}
	return ""
}

// Parse returns the UTC midnight time for an ISO date string.
func Parse(date string) (time.Time, error) {
	t, err := time.Parse(Layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// Generate produces every calendar date between start and end inclusive in
// ascending order. Missing, invalid, or reversed bounds yield an empty slice.
func Generate(start, end string) []string {
	from, err := Parse(Normalize(start))
	if err != nil {
		return nil
	}
	to, err := Parse(Normalize(end))
	if err != nil {
		return nil
	}
	if to.Before(from) {
		return nil
	}

	dates := make([]string, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(Layout))
	}
	return dates
}

// IsWeekend reports whether the ISO date falls on Saturday or Sunday.
// Invalid dates are treated as weekend so they are never selectable.
func IsWeekend(date string) bool {
	t, err := Parse(Normalize(date))
	if err != nil {
		return true
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Weekdays filters out weekend dates, preserving order.
func Weekdays(dates []string) []string {
	result := make([]string, 0, len(dates))
	for _, d := range dates {
		if !IsWeekend(d) {
			result = append(result, d)
		}
	}
	return result
}

// DayCell is a single selectable date in a calendar month grid.
type DayCell struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	Weekday int    `json:"weekday"`
	Weekend bool   `json:"weekend"`
}

// MonthLayout lays a month's dates into a 7-column grid. Offset is the
// weekday column (Sunday = 0) of the first day of the month.
type MonthLayout struct {
	Year   int       `json:"year"`
	Month  int       `json:"month"`
	Label  string    `json:"label"`
	Offset int       `json:"offset"`
	Cells  []DayCell `json:"cells"`
}

// MonthGrid groups the provided dates by calendar month, preserving the
// order months first appear, and computes the weekday-aligned layout for
// each month. Callers pass dates in ascending order.
func MonthGrid(dates []string) []MonthLayout {
	type monthKey struct {
		year  int
		month time.Month
	}

	buckets := make(map[monthKey][]DayCell)
	order := make([]monthKey, 0)

	for _, raw := range dates {
		t, err := Parse(Normalize(raw))
		if err != nil {
			continue
		}
		key := monthKey{year: t.Year(), month: t.Month()}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		wd := int(t.Weekday())
		buckets[key] = append(buckets[key], DayCell{
			Date:    t.Format(Layout),
			Day:     t.Day(),
			Weekday: wd,
			Weekend: wd == 0 || wd == 6,
		})
	}

	layouts := make([]MonthLayout, 0, len(order))
	for _, key := range order {
		first := time.Date(key.year, key.month, 1, 0, 0, 0, 0, time.UTC)
		layouts = append(layouts, MonthLayout{
			Year:   key.year,
			Month:  int(key.month),
			Label:  fmt.Sprintf("%s %d", key.month.String(), key.year),
			Offset: int(first.Weekday()),
			Cells:  buckets[key],
		})
	}
	return layouts
}
