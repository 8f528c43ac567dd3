package timezone

import "time"

const (
	DefaultTimezone = "UTC"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

// DateIn renders the calendar date of now in loc, offset by days.
func DateIn(now time.Time, loc *time.Location, days int) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).AddDate(0, 0, days).Format(DateLayout)
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) string {
	return DateIn(now, loc, 0)
}

// Tomorrow is the calendar date after now in loc.
func Tomorrow(now time.Time, loc *time.Location) string {
	return DateIn(now, loc, 1)
}

func IsDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

func IsClock(value string) bool {
	_, err := time.Parse(TimeLayout, value)
	return err == nil
}
