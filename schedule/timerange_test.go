package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/sports-center/apperr"
)

func rng(t *testing.T, start, end string) Range {
	t.Helper()
	r, err := ParseRange(start, end)
	if err != nil {
		t.Fatalf("ParseRange(%q, %q): %v", start, end, err)
	}
	return r
}

func TestOverlaps_Symmetric(t *testing.T) {
	for a := Clock(0); a < 6*60; a += 30 {
		for b := a + 30; b <= 6*60; b += 30 {
			for c := Clock(0); c < 6*60; c += 30 {
				for d := c + 30; d <= 6*60; d += 30 {
					if Overlaps(a, b, c, d) != Overlaps(c, d, a, b) {
						t.Fatalf("overlap not symmetric for [%v,%v) and [%v,%v)", a, b, c, d)
					}
				}
			}
		}
	}
}

func TestOverlaps_BackToBackDoesNotConflict(t *testing.T) {
	a := rng(t, "09:00", "10:00")
	b := rng(t, "10:00", "11:00")
	if a.Overlaps(b) {
		t.Fatalf("expected back-to-back ranges not to overlap")
	}
}

func TestOverlaps_PartialAndContained(t *testing.T) {
	existing := rng(t, "18:00", "19:00")
	if !existing.Overlaps(rng(t, "18:30", "19:30")) {
		t.Fatalf("expected partial overlap")
	}
	if !existing.Overlaps(rng(t, "18:15", "18:45")) {
		t.Fatalf("expected contained range to overlap")
	}
	if !existing.Overlaps(rng(t, "17:00", "20:00")) {
		t.Fatalf("expected containing range to overlap")
	}
	if existing.Overlaps(rng(t, "19:00", "20:00")) {
		t.Fatalf("expected adjacent range not to overlap")
	}
}

func TestParseClock_RoundTripAllMinutes(t *testing.T) {
	for m := Clock(0); m < MinutesPerDay; m++ {
		parsed, err := ParseClock(m.String())
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", m.String(), err)
		}
		if parsed != m {
			t.Fatalf("round trip mismatch: %d -> %q -> %d", m, m.String(), parsed)
		}
	}
}

func TestParseClock_AcceptsZeroSeconds(t *testing.T) {
	c, err := ParseClock("18:30:00")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.String() != "18:30" {
		t.Fatalf("expected 18:30, got %s", c)
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, s := range []string{"", "9:00", "24:00", "12:60", "ab:cd", "12-30", "12:30:15", "123:00"} {
		_, err := ParseClock(s)
		if !errors.Is(err, apperr.ErrFormat) {
			t.Fatalf("ParseClock(%q): expected format error, got %v", s, err)
		}
	}
}

func TestNewRange_RejectsEmptyAndInverted(t *testing.T) {
	_, err := ParseRange("10:00", "10:00")
	if !errors.Is(err, apperr.ErrInvalidRange) {
		t.Fatalf("expected invalid range for empty interval, got %v", err)
	}
	_, err = ParseRange("11:00", "10:00")
	if !errors.Is(err, apperr.ErrInvalidRange) {
		t.Fatalf("expected invalid range for inverted interval, got %v", err)
	}
}

func TestClock_On(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	got := MustParseClock("19:45").On(date)
	want := time.Date(2025, 3, 14, 19, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-14", time.UTC)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if d.Format(DateLayout) != "2025-03-14" {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("14/03/2025", time.UTC); !errors.Is(err, apperr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}
