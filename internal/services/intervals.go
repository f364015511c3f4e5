package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// IntervalName tags a parsed interval specifier: one of the fixed calendar
// names or IntervalDays for a custom "N days" form.
type IntervalName string

const (
	IntervalBiweekly   IntervalName = "biweekly"
	IntervalMonthly    IntervalName = "monthly"
	IntervalQuarterly  IntervalName = "quarterly"
	IntervalSemiannual IntervalName = "semiannual"
	IntervalAnnual     IntervalName = "annual"
	IntervalBiennial   IntervalName = "biennial"
	IntervalTriennial  IntervalName = "triennial"
	IntervalDays       IntervalName = "days"
)

type IntervalSpec struct {
	Name IntervalName
	Days int
}

var daysPattern = regexp.MustCompile(`^(\d+)\s*days?$`)

// ParseInterval maps a stored interval string to its spec. Fixed names and
// the "N days" form are recognized; anything else is persisted verbatim on
// the task but cannot drive a next-due computation, which this error signals.
func ParseInterval(raw string) (IntervalSpec, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	switch normalized {
	case string(IntervalBiweekly):
		return IntervalSpec{Name: IntervalBiweekly}, nil
	case string(IntervalMonthly):
		return IntervalSpec{Name: IntervalMonthly}, nil
	case string(IntervalQuarterly):
		return IntervalSpec{Name: IntervalQuarterly}, nil
	case string(IntervalSemiannual):
		return IntervalSpec{Name: IntervalSemiannual}, nil
	case string(IntervalAnnual):
		return IntervalSpec{Name: IntervalAnnual}, nil
	case string(IntervalBiennial):
		return IntervalSpec{Name: IntervalBiennial}, nil
	case string(IntervalTriennial):
		return IntervalSpec{Name: IntervalTriennial}, nil
	}

	if match := daysPattern.FindStringSubmatch(normalized); match != nil {
		days, err := strconv.Atoi(match[1])
		if err != nil || days <= 0 {
			return IntervalSpec{}, fmt.Errorf("day count must be a positive integer, got %q", raw)
		}
		return IntervalSpec{Name: IntervalDays, Days: days}, nil
	}

	return IntervalSpec{}, fmt.Errorf("unrecognized interval %q", raw)
}

// NextDueDate computes the next due date from a base date. Fixed names use
// calendar arithmetic, not fixed durations: a month added to Jan 31 follows
// time.AddDate normalization and rolls into early March rather than clamping
// to the end of February.
func NextDueDate(baseDate time.Time, spec IntervalSpec) time.Time {
	switch spec.Name {
	case IntervalBiweekly:
		return baseDate.AddDate(0, 0, 14)
	case IntervalMonthly:
		return baseDate.AddDate(0, 1, 0)
	case IntervalQuarterly:
		return baseDate.AddDate(0, 3, 0)
	case IntervalSemiannual:
		return baseDate.AddDate(0, 6, 0)
	case IntervalAnnual:
		return baseDate.AddDate(1, 0, 0)
	case IntervalBiennial:
		return baseDate.AddDate(2, 0, 0)
	case IntervalTriennial:
		return baseDate.AddDate(3, 0, 0)
	case IntervalDays:
		return baseDate.AddDate(0, 0, spec.Days)
	}
	return baseDate
}

// FixedIntervalNames lists the built-in interval choices in display order.
func FixedIntervalNames() []string {
	return []string{
		string(IntervalBiweekly),
		string(IntervalMonthly),
		string(IntervalQuarterly),
		string(IntervalSemiannual),
		string(IntervalAnnual),
		string(IntervalBiennial),
		string(IntervalTriennial),
	}
}
