package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted form for calendar dates.
const DateLayout = "2006-01-02"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records a violation unless the field already has one.
func (v Violations) Add(field, code string) {
	if _, exists := v[field]; !exists {
		v[field] = code
	}
}

// Has reports whether field already failed.
func (v Violations) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Basic validators
func Required(field, value string, v Violations) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
		return false
	}
	return true
}

func MinLen(field, value string, n int, v Violations) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		v.Add(field, "too_short")
	}
}

func MaxLen(field, value string, n int, v Violations) {
	if utf8.RuneCountInString(value) > n {
		v.Add(field, "too_long")
	}
}

func Email(field, value string, v Violations) {
	if !strings.Contains(value, "@") {
		v.Add(field, "invalid_email")
	}
}

func Equal(field, a, b string, v Violations) {
	if a != b {
		v.Add(field, "mismatch")
	}
}

// PositiveDecimal parses value and requires it to be strictly positive.
func PositiveDecimal(field, value string, v Violations) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(value), ",", "."))
	if err != nil {
		v.Add(field, "not_a_number")
		return decimal.Zero
	}
	if !d.IsPositive() {
		v.Add(field, "must_be_positive")
	}
	return d
}

// PositivePrice parses a money amount, rounds it to kopecks and requires the
// rounded amount to be strictly positive.
func PositivePrice(field, value string, v Violations) decimal.Decimal {
	d := PositiveDecimal(field, value, v)
	if v.Has(field) {
		return decimal.Zero
	}
	d = d.Round(2)
	if !d.IsPositive() {
		v.Add(field, "must_be_positive")
	}
	return d
}

// DateNotBefore parses value with DateLayout and rejects dates earlier than
// the calendar day of today.
func DateNotBefore(field, value string, today time.Time, v Violations) time.Time {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), today.Location())
	if err != nil {
		v.Add(field, "invalid_date")
		return time.Time{}
	}
	y, m, day := today.Date()
	if d.Before(time.Date(y, m, day, 0, 0, 0, 0, today.Location())) {
		v.Add(field, "in_past")
	}
	return d
}
