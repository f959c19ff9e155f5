package core

import "time"

// Settlement records for which months a recurring obligation has been paid
// (bill) or received (income source).
//
// The data model went through three shapes and old records may still carry
// any of them:
//
//  1. Months — the current representation, the set of every month key the
//     obligation was marked settled for.
//  2. LastMonth — a legacy single "last settled month" field.
//  3. SettledAt — an even older single timestamp.
//
// Reads accept all three without migration; writes only ever produce the
// Months set on records that already have one.
// A zero SettledAt means the timestamp field is absent.
type Settlement struct {
	Months    []MonthKey `json:"months,omitempty"`
	LastMonth MonthKey   `json:"lastMonth,omitempty"`
	SettledAt time.Time  `json:"settledAt,omitempty"`
}

// SettledFor reports whether the obligation is settled for month m,
// checking the three representations in precedence order and
// short-circuiting on the first hit. An obligation with none of the shapes
// present is simply not settled — never an error.
func (s Settlement) SettledFor(m MonthKey) bool {
	for _, sm := range s.Months {
		if sm == m {
			return true
		}
	}
	if s.LastMonth != "" && s.LastMonth == m {
		return true
	}
	if !s.SettledAt.IsZero() {
		if key, ok := MonthKeyOf(s.SettledAt); ok && key == m {
			return true
		}
	}
	return false
}

// Toggle flips settlement for month m and returns the updated record.
//
// On a record using the set representation this is a pure symmetric
// difference: m is added if absent and removed if present, all other
// months untouched, so toggling twice restores the original membership.
//
// A record still using only the legacy single-month field falls back to
// overwriting that field (set to m, or cleared when it already equals m).
// The legacy path can represent settlement for at most one month at a time;
// that loss is a known limitation of the old shape, not of Toggle.
func (s Settlement) Toggle(m MonthKey) Settlement {
	if s.Months != nil {
		next := make([]MonthKey, 0, len(s.Months)+1)
		removed := false
		for _, sm := range s.Months {
			if sm == m {
				removed = true
				continue
			}
			next = append(next, sm)
		}
		if !removed {
			next = append(next, m)
		}
		s.Months = next
		return s
	}

	if s.LastMonth == m {
		s.LastMonth = ""
	} else {
		s.LastMonth = m
	}
	return s
}

// UsesMonthSet reports whether the record carries the current set
// representation (an empty set still counts).
func (s Settlement) UsesMonthSet() bool {
	return s.Months != nil
}
