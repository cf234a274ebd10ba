package model

import "time"

type EventType string

const (
	EventWorkBase        EventType = "travail_base"
	EventWorkHS25        EventType = "travail_hs25"
	EventWorkHS50        EventType = "travail_hs50"
	EventUnjustifiedBase EventType = "absence_injustifiee_base"
	EventUnjustifiedHS25 EventType = "absence_injustifiee_hs25"
	EventUnjustifiedHS50 EventType = "absence_injustifiee_hs50" // reserved, never produced
	EventPaidLeave       EventType = "conges_payes"
	EventHoliday         EventType = "ferie"
	EventWeekend         EventType = "weekend"
	EventExcusedAbsence  EventType = "absence_justifiee"
	EventUnpaidAbsence   EventType = "absence_non_remuneree"
)

// PayrollEvent is one typed slice of a day for month M. Worked and absence
// slices carry Hours; retained planned days carry PlannedHours.
type PayrollEvent struct {
	Year         int       `json:"annee"`
	Month        int       `json:"mois"`
	Day          int       `json:"jour"`
	Type         EventType `json:"type"`
	Hours        *float64  `json:"heures,omitempty"`
	PlannedHours *float64  `json:"heures_prevues,omitempty"`
}

func (e PayrollEvent) Date() time.Time {
	return time.Date(e.Year, time.Month(e.Month), e.Day, 0, 0, 0, 0, time.UTC)
}

// Amount returns Hours when set, else PlannedHours.
func (e PayrollEvent) Amount() float64 {
	if e.Hours != nil {
		return *e.Hours
	}
	if e.PlannedHours != nil {
		return *e.PlannedHours
	}
	return 0
}
