package shared

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateRangeInclusiveUpperBound(t *testing.T) {
	r, err := ParseDateRange("2026-08-01", "2026-08-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.From.Hour() != 0 || r.From.Day() != 1 {
		t.Fatalf("unexpected lower bound %v", r.From)
	}
	endOfDay := time.Date(2026, 8, 1, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	if !r.To.Equal(endOfDay) {
		t.Fatalf("expected upper bound %v got %v", endOfDay, r.To)
	}
}

func TestParseDateRangeOpenEnds(t *testing.T) {
	r, err := ParseDateRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsZero() {
		t.Fatalf("expected zero range, got %+v", r)
	}

	r, err = ParseDateRange("2026-08-01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.From.IsZero() || !r.To.IsZero() {
		t.Fatalf("expected lower bound only, got %+v", r)
	}
}

func TestParseDateRangeRejectsGarbage(t *testing.T) {
	if _, err := ParseDateRange("not-a-date", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseDateRange("2026-08-10", "2026-08-01"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}
