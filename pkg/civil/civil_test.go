package civil

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAge(t *testing.T) {
	tests := []struct {
		name string
		dob  time.Time
		asOf time.Time
		want int
	}{
		{"birthday today", date(1990, 6, 15), date(2024, 6, 15), 34},
		{"day before birthday", date(1990, 6, 15), date(2024, 6, 14), 33},
		{"earlier month", date(1990, 6, 15), date(2024, 5, 30), 33},
		{"later month", date(1990, 6, 15), date(2024, 7, 1), 34},
		{"leap day in non-leap year", date(2000, 2, 29), date(2023, 2, 28), 22},
		{"leap day turns over in March", date(2000, 2, 29), date(2023, 3, 1), 23},
		{"newborn", date(2024, 1, 1), date(2024, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Age(tt.dob, tt.asOf); got != tt.want {
				t.Errorf("Age() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("1985-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(date(1985, 3, 9)) {
		t.Errorf("unexpected date %v", got)
	}
	if FormatDate(got) != "1985-03-09" {
		t.Errorf("round trip mismatch: %s", FormatDate(got))
	}

	for _, bad := range []string{"", "09/03/1985", "1985-13-01", "1985-02-30"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFormatDate_Zero(t *testing.T) {
	if FormatDate(time.Time{}) != "" {
		t.Error("expected empty string for zero time")
	}
}
