// Package hours qualifies worked and missed hours week by week.
//
// All quantities are hundredths of an hour (centiemes) so that weekly
// thresholds compare exactly. A week is the ISO week, which may straddle
// two months; callers pass three months of records so the weeks around
// month M are complete.
package hours

import (
	"fmt"
	"math"
	"sort"
	"time"

	"payroll-engine/internal/model"
	"payroll-engine/internal/model/payerr"
)

const (
	legalBaseCent = 3500 // 35h
	legalHS25Cent = 4300 // 43h, start of the 50% band
	maxDayCent    = 2400
)

type Input struct {
	Planned     []model.DayRecord
	Actual      []model.DayRecord
	WeeklyHours float64
	Month       model.YearMonth
}

type Result struct {
	Events   []model.PayrollEvent
	Messages []model.CalculationMessage
}

type weekKey struct {
	year, week int
}

type week struct {
	plannedWork []model.DayRecord
	actual      []model.DayRecord
	nonWorked   []model.DayRecord
}

type slice struct {
	date  time.Time
	typ   model.EventType
	cents int
}

func toCent(h float64) int {
	return int(math.Round(h * 100))
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Analyze emits the payroll events of month M.
func Analyze(in Input) Result {
	var res Result
	tc := toCent(in.WeeklyHours)

	plannedByDate := make(map[string]model.DayRecord, len(in.Planned))
	for _, p := range in.Planned {
		plannedByDate[dateKey(p.Date())] = p
	}

	actualByDate := make(map[string]model.DayRecord, len(in.Actual))
	for _, a := range in.Actual {
		if w := a.Worked(); w < 0 || w > float64(maxDayCent)/100 {
			clamped := plannedByDate[dateKey(a.Date())].Planned()
			res.Messages = append(res.Messages, model.Warning(string(payerr.KindDataIncoherent),
				fmt.Sprintf("%s: %.2fh worked is not plausible, clamped to %.2fh planned", dateKey(a.Date()), w, clamped)))
			a.WorkedHours = &clamped
		}
		actualByDate[dateKey(a.Date())] = a
	}

	weeks := make(map[weekKey]*week)
	bucket := func(t time.Time) *week {
		y, w := t.ISOWeek()
		k := weekKey{y, w}
		if weeks[k] == nil {
			weeks[k] = &week{}
		}
		return weeks[k]
	}
	for _, p := range plannedByDate {
		wk := bucket(p.Date())
		if p.Type == model.DayWork {
			wk.plannedWork = append(wk.plannedWork, p)
		} else {
			wk.nonWorked = append(wk.nonWorked, p)
		}
	}
	for _, a := range actualByDate {
		wk := bucket(a.Date())
		wk.actual = append(wk.actual, a)
	}

	var slices []slice
	for _, wk := range weeks {
		slices = append(slices, wk.qualify(tc, actualByDate)...)
	}

	res.Events = aggregate(slices, in.Month)
	return res
}

// qualify runs the weekly counter over one ISO week.
func (wk *week) qualify(tc int, actualByDate map[string]model.DayRecord) []slice {
	var out []slice

	// Paid leave and holidays count toward the weekly threshold.
	counter := 0
	for _, p := range wk.nonWorked {
		if p.Type == model.DayPaidLeave || p.Type == model.DayHoliday {
			counter += toCent(p.Planned())
		}
	}

	sort.Slice(wk.actual, func(i, j int) bool { return wk.actual[i].Date().Before(wk.actual[j].Date()) })
	sort.Slice(wk.plannedWork, func(i, j int) bool { return wk.plannedWork[i].Date().Before(wk.plannedWork[j].Date()) })

	// Counter value at the start of each day, so missed hours are placed
	// at the point of the week where they would have been worked.
	dayStart := make(map[string]int)
	days := make(map[string]time.Time)
	for _, a := range wk.actual {
		days[dateKey(a.Date())] = a.Date()
	}
	for _, p := range wk.plannedWork {
		days[dateKey(p.Date())] = p.Date()
	}
	ordered := make([]time.Time, 0, len(days))
	for _, d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	for _, d := range ordered {
		k := dateKey(d)
		dayStart[k] = counter
		a, ok := actualByDate[k]
		if !ok {
			continue
		}
		h := toCent(a.Worked())
		if h <= 0 {
			continue
		}
		base, hs25, hs50 := split(counter, counter+h, tc)
		out = appendSlice(out, d, model.EventWorkBase, base)
		out = appendSlice(out, d, model.EventWorkHS25, hs25)
		out = appendSlice(out, d, model.EventWorkHS50, hs50)
		counter += h
	}

	for _, p := range wk.plannedWork {
		k := dateKey(p.Date())
		planned := toCent(p.Planned())
		worked := 0
		if a, ok := actualByDate[k]; ok {
			worked = max(0, toCent(a.Worked()))
		}
		if worked >= planned {
			continue
		}
		base, hs25 := missed(dayStart[k]+worked, planned-worked, tc)
		out = appendSlice(out, p.Date(), model.EventUnjustifiedBase, base)
		out = appendSlice(out, p.Date(), model.EventUnjustifiedHS25, hs25)
	}

	for _, p := range wk.nonWorked {
		if a, ok := actualByDate[dateKey(p.Date())]; ok && toCent(a.Worked()) > 0 {
			continue
		}
		out = append(out, slice{date: p.Date(), typ: model.EventType(p.Type), cents: -1 - toCent(p.Planned())})
	}

	return out
}

// split qualifies the window [begin, end) of the weekly counter:
// accumulating base up to max(tc, 35h), hs25 up to 43h, hs50 beyond.
func split(begin, end, tc int) (base, hs25, hs50 int) {
	hs25 = max(0, min(end, legalHS25Cent)-max(begin, tc, legalBaseCent))
	hs50 = max(0, end-max(begin, tc, legalHS25Cent))
	base = end - begin - hs25 - hs50
	return base, hs25, hs50
}

// missed places a deficit one centieme at a time from cursor, stopping at
// the contractual weekly hours.
func missed(cursor, deficit, tc int) (base, hs25 int) {
	for i := 0; i < deficit; i++ {
		if cursor >= tc {
			break
		}
		cursor++
		if cursor <= legalBaseCent {
			base++
		} else {
			hs25++
		}
	}
	return base, hs25
}

func appendSlice(out []slice, d time.Time, typ model.EventType, cents int) []slice {
	if cents <= 0 {
		return out
	}
	return append(out, slice{date: d, typ: typ, cents: cents})
}

var eventOrder = map[model.EventType]int{
	model.EventWorkBase:        0,
	model.EventWorkHS25:        1,
	model.EventWorkHS50:        2,
	model.EventUnjustifiedBase: 3,
	model.EventUnjustifiedHS25: 4,
	model.EventPaidLeave:       5,
	model.EventHoliday:         6,
	model.EventExcusedAbsence:  7,
	model.EventUnpaidAbsence:   8,
	model.EventWeekend:         9,
}

// aggregate keeps month M and sums hour slices per (day, type). Planned
// records are encoded with negative cents (-1 - planned) and kept as-is.
func aggregate(slices []slice, ym model.YearMonth) []model.PayrollEvent {
	type key struct {
		date string
		typ  model.EventType
	}
	sums := make(map[key]int)
	var events []model.PayrollEvent
	var keys []key

	for _, s := range slices {
		if s.date.Year() != ym.Year || int(s.date.Month()) != ym.Month {
			continue
		}
		if s.cents < 0 {
			ev := model.PayrollEvent{Year: ym.Year, Month: ym.Month, Day: s.date.Day(), Type: s.typ}
			if planned := -1 - s.cents; planned > 0 {
				ev.PlannedHours = model.Ptr(float64(planned) / 100)
			}
			events = append(events, ev)
			continue
		}
		k := key{dateKey(s.date), s.typ}
		if _, seen := sums[k]; !seen {
			keys = append(keys, k)
		}
		sums[k] += s.cents
	}

	for _, k := range keys {
		d, _ := time.Parse("2006-01-02", k.date)
		events = append(events, model.PayrollEvent{
			Year:  d.Year(),
			Month: int(d.Month()),
			Day:   d.Day(),
			Type:  k.typ,
			Hours: model.Ptr(float64(sums[k]) / 100),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Day != events[j].Day {
			return events[i].Day < events[j].Day
		}
		return eventOrder[events[i].Type] < eventOrder[events[j].Type]
	})
	return events
}
