package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var ErrMalformedTemporalInput = errors.New("malformed temporal input")

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// Interval is a half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two ranges intersect. Touching endpoints do not.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format("2006-01-02 15:04"), i.End.Format("2006-01-02 15:04"))
}

// IsDate reports whether s has the YYYY-MM-DD shape. It does not check the calendar.
func IsDate(s string) bool {
	return datePattern.MatchString(s)
}

// IsClock reports whether s is a zero-padded 24-hour HH:MM value.
func IsClock(s string) bool {
	return clockPattern.MatchString(s)
}

// ParseDate parses a YYYY-MM-DD calendar date. Wall-clock values carry no zone, so the
// result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if !IsDate(s) {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrMalformedTemporalInput, s)
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not a calendar day", ErrMalformedTemporalInput, s)
	}

	return t, nil
}

// ParseClock returns the minutes elapsed since midnight for an HH:MM value.
func ParseClock(s string) (int, error) {
	if !IsClock(s) {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrMalformedTemporalInput, s)
	}

	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q: %v", ErrMalformedTemporalInput, s, err)
	}

	return t.Hour()*60 + t.Minute(), nil
}

// Instant combines a date and a clock time into one orderable value.
func Instant(date, clock string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}

	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	return day.Add(time.Duration(minutes) * time.Minute), nil
}

func NewInterval(date, clock string, durationMinutes int) (Interval, error) {
	if durationMinutes <= 0 {
		return Interval{}, fmt.Errorf("%w: duration %d must be a positive number of minutes", ErrMalformedTemporalInput, durationMinutes)
	}

	start, err := Instant(date, clock)
	if err != nil {
		return Interval{}, err
	}

	return Interval{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}, nil
}

// CanonicalDate formats the calendar day of t as YYYY-MM-DD.
func CanonicalDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
