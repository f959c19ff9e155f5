package core

import (
	"testing"
	"time"
)

func TestMonthKeyOf(t *testing.T) {
	tests := []struct {
		name   string
		in     time.Time
		want   MonthKey
		wantOK bool
	}{
		{
			name:   "mid month",
			in:     time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local),
			want:   "2025-03",
			wantOK: true,
		},
		{
			name:   "zero padded month",
			in:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
			want:   "2025-01",
			wantOK: true,
		},
		{
			name:   "zero instant excluded",
			in:     time.Time{},
			want:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MonthKeyOf(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MonthKeyOf() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMonthKeyOf_Stable(t *testing.T) {
	in := time.Date(2024, 12, 31, 23, 30, 0, 0, time.Local)
	first, _ := MonthKeyOf(in)
	for i := 0; i < 10; i++ {
		if got, _ := MonthKeyOf(in); got != first {
			t.Fatalf("MonthKeyOf() unstable: got %q after %q", got, first)
		}
	}
}

func TestMonthKeyOf_LocalCalendar(t *testing.T) {
	// The bucket follows the local calendar, not the instant's own zone:
	// an instant late on the last UTC day of a month may already be the
	// next local month (or vice versa) depending on the host zone.
	in := time.Date(2025, 5, 31, 23, 30, 0, 0, time.UTC)
	want, ok := MonthKeyOf(in.Local())
	if !ok {
		t.Fatal("MonthKeyOf() not ok for valid instant")
	}
	got, _ := MonthKeyOf(in)
	if got != want {
		t.Errorf("MonthKeyOf(utc) = %q, want local bucket %q", got, want)
	}
}

func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2025-01", false},
		{"2025-12", false},
		{"2025-13", true},
		{"2025-00", true},
		{"2025-1", true},
		{"202501", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseMonthKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMonthKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestMonthKeyParts(t *testing.T) {
	m := MonthKey("2025-04")
	if got := m.Year(); got != 2025 {
		t.Errorf("Year() = %d, want 2025", got)
	}
	if got := m.Index(); got != 3 {
		t.Errorf("Index() = %d, want 3", got)
	}
	if got := MonthKey("garbage").Index(); got != -1 {
		t.Errorf("Index() on invalid key = %d, want -1", got)
	}
}

func TestYearMonths(t *testing.T) {
	months := YearMonths(2025)
	if len(months) != 12 {
		t.Fatalf("YearMonths() returned %d months, want 12", len(months))
	}
	if months[0] != "2025-01" || months[11] != "2025-12" {
		t.Errorf("YearMonths() bounds = %q..%q, want 2025-01..2025-12", months[0], months[11])
	}
}
