package core

import (
	"testing"
	"time"
)

func TestSettlement_SettledFor(t *testing.T) {
	month := MonthKey("2025-06")
	inMonth := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		s    Settlement
		m    MonthKey
		want bool
	}{
		{
			name: "month set member",
			s:    Settlement{Months: []MonthKey{"2025-05", "2025-06"}},
			m:    month,
			want: true,
		},
		{
			name: "month set non-member",
			s:    Settlement{Months: []MonthKey{"2025-05"}},
			m:    month,
			want: false,
		},
		{
			name: "legacy single month match",
			s:    Settlement{LastMonth: "2025-06"},
			m:    month,
			want: true,
		},
		{
			name: "legacy single month mismatch",
			s:    Settlement{LastMonth: "2025-05"},
			m:    month,
			want: false,
		},
		{
			name: "legacy timestamp inside month",
			s:    Settlement{SettledAt: inMonth},
			m:    month,
			want: true,
		},
		{
			name: "legacy timestamp other month",
			s:    Settlement{SettledAt: inMonth},
			m:    "2025-07",
			want: false,
		},
		{
			name: "empty set falls through to legacy field",
			s:    Settlement{Months: []MonthKey{}, LastMonth: "2025-06"},
			m:    month,
			want: true,
		},
		{
			name: "no representation at all",
			s:    Settlement{},
			m:    month,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.SettledFor(tt.m); got != tt.want {
				t.Errorf("SettledFor(%q) = %v, want %v", tt.m, got, tt.want)
			}
		})
	}
}

func TestSettlement_SettledFor_TimestampOnlyExactMonth(t *testing.T) {
	// A bill settled only via the legacy timestamp is settled for exactly
	// the month containing that instant and no other.
	s := Settlement{SettledAt: time.Date(2025, 3, 28, 18, 0, 0, 0, time.Local)}
	for _, m := range YearMonths(2025) {
		want := m == "2025-03"
		if got := s.SettledFor(m); got != want {
			t.Errorf("SettledFor(%q) = %v, want %v", m, got, want)
		}
	}
}

func TestSettlement_Toggle_SetIsInvolution(t *testing.T) {
	orig := Settlement{Months: []MonthKey{"2025-01", "2025-03"}}
	month := MonthKey("2025-02")

	once := orig.Toggle(month)
	if !once.SettledFor(month) {
		t.Fatal("first Toggle() did not settle the month")
	}
	if !once.SettledFor("2025-01") || !once.SettledFor("2025-03") {
		t.Error("Toggle() disturbed other months' membership")
	}

	twice := once.Toggle(month)
	if twice.SettledFor(month) {
		t.Error("second Toggle() did not clear the month")
	}
	if len(twice.Months) != len(orig.Months) {
		t.Errorf("double Toggle() membership size = %d, want %d", len(twice.Months), len(orig.Months))
	}
	for _, m := range orig.Months {
		if !twice.SettledFor(m) {
			t.Errorf("double Toggle() lost month %q", m)
		}
	}
}

func TestSettlement_Toggle_SetRemoval(t *testing.T) {
	s := Settlement{Months: []MonthKey{"2025-04"}}
	got := s.Toggle("2025-04")
	if got.SettledFor("2025-04") {
		t.Error("Toggle() on a member month did not remove it")
	}
	if got.Months == nil {
		t.Error("Toggle() dropped the set representation")
	}
}

func TestSettlement_Toggle_LegacySingleField(t *testing.T) {
	// The legacy path can only hold one month: toggling a different month
	// overwrites (and loses) the previous one. Regression for the known
	// single-field limitation.
	s := Settlement{LastMonth: "2025-02"}

	got := s.Toggle("2025-05")
	if got.LastMonth != "2025-05" {
		t.Errorf("Toggle() LastMonth = %q, want 2025-05", got.LastMonth)
	}
	if got.SettledFor("2025-02") {
		t.Error("legacy overwrite should lose the previously settled month")
	}

	cleared := got.Toggle("2025-05")
	if cleared.LastMonth != "" {
		t.Errorf("Toggle() on same month = %q, want cleared", cleared.LastMonth)
	}
	if cleared.SettledFor("2025-05") {
		t.Error("clearing toggle left the month settled")
	}
}

func TestSettlement_UsesMonthSet(t *testing.T) {
	if (Settlement{}).UsesMonthSet() {
		t.Error("nil set should not count as the set representation")
	}
	if !(Settlement{Months: []MonthKey{}}).UsesMonthSet() {
		t.Error("empty set should count as the set representation")
	}
}
