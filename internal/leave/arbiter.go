// Package leave compares the two legal paid-leave indemnity methods.
package leave

import (
	"fmt"

	"payroll-engine/internal/money"
)

type Method string

const (
	MethodMaintenance Method = "maintien_de_salaire"
	MethodTenth       Method = "dixieme"
)

const (
	legalWeeklyHours = 35.0
	workingDays      = 5.0
	tenthDivisor     = 30.0
)

type Input struct {
	Days           int
	WeeklyHours    float64
	HourlyBase     float64
	HS25           float64
	ReferenceGross float64 // brut_reference_n_1
}

// Outcome is the arbitration result. Retention always equals Maintenance;
// Amount is what the winning method pays.
type Outcome struct {
	Method              Method  `json:"methode"`
	Days                int     `json:"jours"`
	BaseHours           float64 `json:"heures_normales"`
	OvertimeHours       float64 `json:"heures_supplementaires"`
	MaintenanceBase     float64 `json:"maintien_base"`
	MaintenanceOvertime float64 `json:"maintien_heures_supp"`
	Maintenance         float64 `json:"maintien"`
	Tenth               float64 `json:"dixieme"`
	Amount              float64 `json:"montant"`
}

func (o Outcome) Retention() float64 {
	return o.Maintenance
}

// Arbitrate returns the more favourable method. Ties go to maintenance.
func Arbitrate(in Input) Outcome {
	n := float64(in.Days)
	normalPerDay := legalWeeklyHours / workingDays
	extraPerDay := max(0, in.WeeklyHours-legalWeeklyHours) / workingDays

	out := Outcome{
		Days:          in.Days,
		BaseHours:     money.RoundTo(n*normalPerDay, 2),
		OvertimeHours: money.RoundTo(n*extraPerDay, 2),
	}
	out.MaintenanceBase = money.Round2(n * normalPerDay * in.HourlyBase)
	out.MaintenanceOvertime = money.Round2(n * extraPerDay * in.HourlyBase * (1 + in.HS25))
	out.Maintenance = money.Sum(out.MaintenanceBase, out.MaintenanceOvertime)
	out.Tenth = money.Round2(n * (in.ReferenceGross * 0.10) / tenthDivisor)

	if out.Tenth > out.Maintenance {
		out.Method = MethodTenth
		out.Amount = out.Tenth
	} else {
		out.Method = MethodMaintenance
		out.Amount = out.Maintenance
	}
	return out
}

// Narrative explains the arbitration on the payslip footer.
func (o Outcome) Narrative() string {
	if o.Days == 0 {
		return ""
	}
	maintenance := money.FormatEUR(o.Maintenance)
	tenth := money.FormatEUR(o.Tenth)
	if o.Method == MethodTenth {
		return fmt.Sprintf("Congés payés (%d j) : règle du dixième retenue, %s contre %s en maintien de salaire.", o.Days, tenth, maintenance)
	}
	return fmt.Sprintf("Congés payés (%d j) : maintien de salaire retenu, %s contre %s selon la règle du dixième.", o.Days, maintenance, tenth)
}
