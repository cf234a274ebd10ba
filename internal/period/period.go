// Package period resolves the pay period of a month from the company rule.
package period

import (
	"time"

	"payroll-engine/internal/model"
	"payroll-engine/internal/model/payerr"
)

// Period is an inclusive date range.
type Period struct {
	Start time.Time `json:"debut"`
	End   time.Time `json:"fin"`
}

// Contains reports whether d falls inside the period, bounds included.
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// weekday maps Go's Sunday-first weekdays onto Monday = 0.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Resolve returns the pay period of ym. It ends on the Sunday of the ISO
// week holding the reference date and starts the day after the previous
// month's end.
func Resolve(rule model.PayPeriodRule, ym model.YearMonth) (Period, error) {
	end, err := End(rule, ym)
	if err != nil {
		return Period{}, err
	}
	prevEnd, err := End(rule, ym.Prev())
	if err != nil {
		return Period{}, err
	}
	return Period{Start: prevEnd.AddDate(0, 0, 1), End: end}, nil
}

// End returns the last day of the pay period of ym.
func End(rule model.PayPeriodRule, ym model.YearMonth) (time.Time, error) {
	ref, err := ReferenceDate(rule, ym)
	if err != nil {
		return time.Time{}, err
	}
	return ref.AddDate(0, 0, 6-weekday(ref)), nil
}

// ReferenceDate picks the occurrence-th reference weekday of ym; negative
// occurrences count from the end of the month.
func ReferenceDate(rule model.PayPeriodRule, ym model.YearMonth) (time.Time, error) {
	if rule.ReferenceWeekday < 0 || rule.ReferenceWeekday > 6 {
		return time.Time{}, payerr.Newf(payerr.KindPeriodUndefined, "reference weekday %d outside 0..6", rule.ReferenceWeekday).
			WithField("parametres_paie.periode_de_paie.jour_de_fin")
	}

	var dates []time.Time
	last := ym.LastDay().Day()
	for d := 1; d <= last; d++ {
		t := time.Date(ym.Year, time.Month(ym.Month), d, 0, 0, 0, 0, time.UTC)
		if weekday(t) == rule.ReferenceWeekday {
			dates = append(dates, t)
		}
	}

	idx := rule.Occurrence - 1
	if rule.Occurrence < 0 {
		idx = len(dates) + rule.Occurrence
	}
	if rule.Occurrence == 0 || idx < 0 || idx >= len(dates) {
		return time.Time{}, payerr.Newf(payerr.KindPeriodUndefined, "occurrence %d of weekday %d does not exist in %s",
			rule.Occurrence, rule.ReferenceWeekday, ym).WithField("parametres_paie.periode_de_paie.occurrence")
	}
	return dates[idx], nil
}
