package timelabel

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// clockLayout is the wall-clock representation used in storage and on
// Session records.
const clockLayout = "15:04:05"

// labelLayout is the customer-facing 12-hour label, no leading zero on
// the hour.
const labelLayout = "3:04 PM"

// Format converts a "HH:MM:SS" wall-clock value to a display label like
// "2:30 PM". Returns an empty string on malformed input; this runs in
// display contexts where a broken value should render as blank, not panic.
func Format(clock string) string {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return ""
	}
	return t.Format(labelLayout)
}

// Parse converts a label like "2:30 PM" or "02:30 pm" back to "HH:MM:SS".
// The second return value is false when the label does not parse; callers
// treat that as "no change", never as an error to propagate.
func Parse(label string) (string, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(label))

	// time.Parse accepts hour 0 in 12-hour layouts; a 12-hour label
	// carries 1 through 12 only, so check the hour token ourselves.
	colon := strings.IndexByte(normalized, ':')
	if colon < 1 {
		return "", false
	}
	hour, err := strconv.Atoi(normalized[:colon])
	if err != nil || hour < 1 || hour > 12 {
		return "", false
	}

	for _, layout := range []string{"3:04 PM", "03:04 PM"} {
		t, err := time.Parse(layout, normalized)
		if err == nil {
			return t.Format(clockLayout), true
		}
	}
	return "", false
}

// Grid returns the bookable half-hour slots, 7:00 AM through 3:30 PM.
// This is a business policy constant: lessons run on this grid regardless
// of what availability data says.
func Grid() []string {
	labels := make([]string, 0, 18)
	t := time.Date(0, 1, 1, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 18; i++ {
		labels = append(labels, t.Format(labelLayout))
		t = t.Add(30 * time.Minute)
	}
	return labels
}

// OnGrid reports whether a wall-clock value falls on one of the grid slots.
func OnGrid(clock string) bool {
	label := Format(clock)
	if label == "" {
		return false
	}
	for _, l := range Grid() {
		if l == label {
			return true
		}
	}
	return false
}

// Combine merges a calendar date with a wall-clock value into a single
// timestamp in the date's location.
func Combine(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0,
		date.Location(),
	), nil
}
