package agrorules

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMinimumDate(t *testing.T) {
	min, err := MinimumDate(date(2024, 1, 1), 70)
	if err != nil {
		t.Fatalf("MinimumDate returned error: %v", err)
	}
	if want := date(2024, 3, 11); !min.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format(DateLayout), min.Format(DateLayout))
	}
}

func TestMinimumDate_InvalidReference(t *testing.T) {
	if _, err := MinimumDate(time.Time{}, 70); !errors.Is(err, ErrInvalidReferenceDate) {
		t.Fatalf("expected ErrInvalidReferenceDate, got %v", err)
	}
	if _, err := MinimumDate(date(2024, 1, 1), -1); !errors.Is(err, ErrInvalidOffset) {
		t.Fatalf("expected ErrInvalidOffset, got %v", err)
	}
}

func TestMaximumDate(t *testing.T) {
	today := date(2024, 6, 1)
	if got := MaximumDate(time.Time{}, today); !got.Equal(today) {
		t.Fatalf("zero cycle end should yield today, got %s", got)
	}
	if got := MaximumDate(date(2024, 5, 20), today); !got.Equal(date(2024, 5, 20)) {
		t.Fatalf("past cycle end should win, got %s", got)
	}
	if got := MaximumDate(date(2024, 7, 1), today); !got.Equal(today) {
		t.Fatalf("future cycle end should yield today, got %s", got)
	}
}

// Boundary invariant: the minimum date itself validates, one day earlier
// does not.
func TestValidateDate_MinimumBoundary(t *testing.T) {
	ref := date(2024, 1, 1)
	for _, offset := range []int{0, 1, 40, 70, 365} {
		min, err := MinimumDate(ref, offset)
		if err != nil {
			t.Fatalf("MinimumDate(%d): %v", offset, err)
		}
		if check := ValidateDate(min, ref, offset); !check.Valid {
			t.Fatalf("offset %d: minimum date %s should be valid: %+v", offset, min, check)
		}
		if check := ValidateDate(min.AddDate(0, 0, -1), ref, offset); check.Valid {
			t.Fatalf("offset %d: day before minimum should be invalid", offset)
		}
	}
}

func TestValidateDate_CycleScenario(t *testing.T) {
	ref := date(2024, 1, 1)

	check := ValidateDate(date(2024, 3, 10), ref, 70)
	if check.Valid {
		t.Fatalf("2024-03-10 should fail the 70 day rule: %+v", check)
	}
	if check.DaysDifference != 69 {
		t.Fatalf("expected 69 days difference, got %d", check.DaysDifference)
	}
	if want := date(2024, 3, 11); !check.MinimumDate.Equal(want) {
		t.Fatalf("expected minimum %s, got %s", want, check.MinimumDate)
	}

	check = ValidateDate(date(2024, 3, 11), ref, 70)
	if !check.Valid || check.DaysDifference != 70 {
		t.Fatalf("2024-03-11 should pass with 70 days, got %+v", check)
	}
}

// Intraday drift must not shift the day difference: only calendar days count.
func TestValidateDate_IgnoresTimeOfDay(t *testing.T) {
	ref := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	candidate := time.Date(2024, 3, 11, 0, 5, 0, 0, time.FixedZone("WAT", 3600))
	check := ValidateDate(candidate, ref, 70)
	if !check.Valid || check.DaysDifference != 70 {
		t.Fatalf("time-of-day shifted the verdict: %+v", check)
	}
}

func TestValidateDate_NoReferenceIsPermissive(t *testing.T) {
	if check := ValidateDate(date(2024, 3, 10), time.Time{}, 70); !check.Valid {
		t.Fatalf("missing reference must be permissive, got %+v", check)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-11")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !got.Equal(date(2024, 3, 11)) {
		t.Fatalf("unexpected date %s", got)
	}
	if _, err := ParseDate("11/03/2024"); !errors.Is(err, ErrInvalidDateFormat) {
		t.Fatalf("expected ErrInvalidDateFormat, got %v", err)
	}
}
