package model

// CalculationRequest carries every per-employee document in memory.
// Rate tables come from the server's registry.
type CalculationRequest struct {
	Employee  string         `json:"employe"`
	Year      int            `json:"annee"`
	Month     int            `json:"mois"`
	Contract  *Contract      `json:"contrat"`
	Company   *Company       `json:"entreprise"`
	Cumuls    *CumulsFile    `json:"cumuls,omitempty"`
	Calendars []CalendarFile `json:"calendriers"`
	Schedules []ScheduleFile `json:"horaires"`
	Saisies   *SaisiesFile   `json:"saisies,omitempty"`
}
