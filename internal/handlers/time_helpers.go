package handlers

import (
	"time"

	"github.com/BruksfildServices01/dealer-crm/internal/timezone"
)

// dayStart resolves a "YYYY-MM-DD" query value to the start of that day in
// loc, expressed in UTC.
func dayStart(loc *time.Location, value string) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(timezone.DateLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// dayEnd is the exclusive end of the day named by value.
func dayEnd(loc *time.Location, value string) (time.Time, bool) {
	start, ok := dayStart(loc, value)
	if !ok {
		return time.Time{}, false
	}
	return start.Add(24 * time.Hour), true
}
