package agrorules

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidReferenceDate indicates a missing reference date where one is
// strictly required for the requested operation.
var ErrInvalidReferenceDate = errors.New("agrorules: invalid reference date")

// ErrInvalidDateFormat indicates a date string that does not parse.
var ErrInvalidDateFormat = errors.New("agrorules: invalid date format")

// ErrInvalidOffset indicates a negative minimum-offset rule.
var ErrInvalidOffset = errors.New("agrorules: minimum offset must be >= 0")

// DateCheck is the verdict of a date-constraint validation. Callers surface
// MinimumDate as the "snap to minimum date" remediation.
type DateCheck struct {
	Valid          bool      `json:"valid"`
	DaysDifference int       `json:"days_difference"`
	MinimumDate    time.Time `json:"minimum_date"`
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// MinimumDate returns the earliest allowable event date: the reference date
// plus minOffsetDays calendar days.
func MinimumDate(ref time.Time, minOffsetDays int) (time.Time, error) {
	if ref.IsZero() {
		return time.Time{}, ErrInvalidReferenceDate
	}
	if minOffsetDays < 0 {
		return time.Time{}, ErrInvalidOffset
	}
	return dateOnly(ref).AddDate(0, 0, minOffsetDays), nil
}

// MaximumDate returns the latest allowable event date: the earlier of the
// cycle end date and today. A zero cycle end means no end constraint.
func MaximumDate(cycleEnd, today time.Time) time.Time {
	today = dateOnly(today)
	if cycleEnd.IsZero() {
		return today
	}
	end := dateOnly(cycleEnd)
	if end.Before(today) {
		return end
	}
	return today
}

// ValidateDate checks a candidate event date against a reference date plus a
// minimum-offset rule. A zero reference date yields a permissive verdict:
// no constraint can be evaluated until the dependent record is selected.
// The day difference is truncated, never rounded, and both dates are reduced
// to calendar days so time-of-day and timezone drift cannot shift the result.
func ValidateDate(candidate, ref time.Time, minOffsetDays int) DateCheck {
	if ref.IsZero() || candidate.IsZero() {
		return DateCheck{Valid: true}
	}
	refDay := dateOnly(ref)
	days := int(dateOnly(candidate).Sub(refDay).Hours() / 24)
	return DateCheck{
		Valid:          days >= minOffsetDays,
		DaysDifference: days,
		MinimumDate:    refDay.AddDate(0, 0, minOffsetDays),
	}
}

// dateOnly truncates to midnight UTC. Midnight-to-midnight arithmetic keeps
// day differences exact multiples of 24h.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
