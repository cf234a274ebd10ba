package model

import (
	"fmt"
	"time"
)

type DayType string

const (
	DayWork          DayType = "travail"
	DayWeekend       DayType = "weekend"
	DayHoliday       DayType = "ferie"
	DayPaidLeave     DayType = "conges_payes"
	DayExcused       DayType = "absence_justifiee"
	DayUnpaidAbsence DayType = "absence_non_remuneree"
)

// DayRecord is one planned or actual day. Keys (Year, Month, Day) are unique per side.
type DayRecord struct {
	Year         int      `json:"annee"`
	Month        int      `json:"mois"`
	Day          int      `json:"jour"`
	Type         DayType  `json:"type"`
	PlannedHours *float64 `json:"heures_prevues,omitempty"`
	WorkedHours  *float64 `json:"heures_faites,omitempty"`
}

func (d DayRecord) Date() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d DayRecord) Planned() float64 {
	if d.PlannedHours == nil {
		return 0
	}
	return *d.PlannedHours
}

func (d DayRecord) Worked() float64 {
	if d.WorkedHours == nil {
		return 0
	}
	return *d.WorkedHours
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month int
}

func (ym YearMonth) Prev() YearMonth {
	if ym.Month == 1 {
		return YearMonth{ym.Year - 1, 12}
	}
	return YearMonth{ym.Year, ym.Month - 1}
}

func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{ym.Year + 1, 1}
	}
	return YearMonth{ym.Year, ym.Month + 1}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

func (ym YearMonth) LastDay() time.Time {
	return time.Date(ym.Year, time.Month(ym.Month)+1, 0, 0, 0, 0, 0, time.UTC)
}

type FilePeriod struct {
	Year  int `json:"annee"`
	Month int `json:"mois"`
}

// CalendarFile mirrors calendrier_MM.json.
type CalendarFile struct {
	Period  FilePeriod   `json:"periode"`
	Planned []PlannedDay `json:"calendrier_prevu"`
}

type PlannedDay struct {
	Day          int      `json:"jour"`
	Type         DayType  `json:"type"`
	PlannedHours *float64 `json:"heures_prevues,omitempty"`
}

// ScheduleFile mirrors horaires_MM.json.
type ScheduleFile struct {
	Period FilePeriod  `json:"periode"`
	Actual []ActualDay `json:"calendrier_reel"`
}

type ActualDay struct {
	Day         int      `json:"jour"`
	WorkedHours *float64 `json:"heures_faites"`
	Type        DayType  `json:"type,omitempty"`
}

// Records expands the file into day records stamped with its period.
func (f *CalendarFile) Records() []DayRecord {
	out := make([]DayRecord, 0, len(f.Planned))
	for _, p := range f.Planned {
		out = append(out, DayRecord{
			Year:         f.Period.Year,
			Month:        f.Period.Month,
			Day:          p.Day,
			Type:         p.Type,
			PlannedHours: p.PlannedHours,
		})
	}
	return out
}

func (f *ScheduleFile) Records() []DayRecord {
	out := make([]DayRecord, 0, len(f.Actual))
	for _, a := range f.Actual {
		typ := a.Type
		if typ == "" {
			typ = DayWork
		}
		out = append(out, DayRecord{
			Year:        f.Period.Year,
			Month:       f.Period.Month,
			Day:         a.Day,
			Type:        typ,
			WorkedHours: a.WorkedHours,
		})
	}
	return out
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (time.Time, bool) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}
	for _, i := range [...]int{0, 1, 2, 3, 5, 6, 8, 9} {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, false
		}
	}
	y := int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
	m := time.Month(int(s[5]-'0')*10 + int(s[6]-'0'))
	d := int(s[8]-'0')*10 + int(s[9]-'0')
	if m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
