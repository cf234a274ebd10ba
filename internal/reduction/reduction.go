// Package reduction computes the general employer contribution reduction,
// regularized progressively over the year.
package reduction

import (
	"fmt"
	"math"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/model"
	"payroll-engine/internal/money"
	"payroll-engine/internal/paycontext"
)

const (
	ID    = "reduction_generale"
	Label = "Réduction générale des cotisations patronales"

	smicMultiple = 1.6
	atmpCap      = 0.0046
)

// rateIDs make up the T parameter together with the capped AT/MP rate.
var rateIDs = []string{
	baremes.IDMaladie,
	baremes.IDAllocations,
	baremes.IDRetraiteSecuPlafond,
	baremes.IDRetraiteSecuDeplafond,
	baremes.IDCSA,
	baremes.IDAssuranceChomage,
	baremes.IDRetraiteCompT1,
	baremes.IDCEGT1,
	baremes.IDFNAL,
}

type Input struct {
	Gross          float64
	MonthPaidHours float64
}

type Result struct {
	T              float64 `json:"parametre_t"`
	TotalGross     float64 `json:"brut_cumule"`
	TotalHours     float64 `json:"heures_cumulees"`
	Ceiling        float64 `json:"plafond_eligibilite"`
	Coefficient    float64 `json:"coefficient"`
	TotalDue       float64 `json:"valeur_cumulative"`
	PriorApplied   float64 `json:"deja_appliquee"`
	MonthReduction float64 `json:"reduction_du_mois"`
	Line           model.ContributionLine
}

// Compute regularizes the reduction from the year-to-date cumuls. The
// returned line is employer-only and negative when it reduces.
func Compute(c *paycontext.Context, in Input) (*Result, []model.CalculationMessage) {
	t, msgs := Parameter(c)
	prior := c.Cumuls()

	r := &Result{
		T:            t,
		TotalGross:   money.Sum(prior.GrossTotal, in.Gross),
		TotalHours:   money.RoundTo(prior.PaidHours+in.MonthPaidHours, 2),
		PriorApplied: math.Abs(prior.GeneralReduction),
	}
	r.Ceiling = smicMultiple * c.SmicHourly() * r.TotalHours

	due := 0.0
	if r.TotalGross > 0 && r.TotalGross < r.Ceiling {
		coef := (t / 0.6) * (r.Ceiling/r.TotalGross - 1)
		r.Coefficient = math.Max(0, math.Min(coef, t))
		due = r.TotalGross * r.Coefficient
	}
	r.Coefficient = money.RoundTo(r.Coefficient, 4)
	r.TotalDue = money.Round2(due)
	r.MonthReduction = money.Round2(due - r.PriorApplied)

	r.Line = model.ContributionLine{
		ID:             ID,
		Label:          Label,
		EmployerAmount: money.Round2(-(due - r.PriorApplied)),
	}
	return r, msgs
}

// Parameter returns T: the reduced employer rates of the covered rules plus
// the AT/MP rate capped at 0.46%.
func Parameter(c *paycontext.Context) (float64, []model.CalculationMessage) {
	var msgs []model.CalculationMessage
	t := 0.0
	for _, id := range rateIDs {
		rule, ok := c.Contribution(id)
		if !ok {
			msgs = append(msgs, model.Warning(paycontext.CodeRateLookupFailed,
				fmt.Sprintf("contribution %s missing, left out of the general reduction", id)))
			continue
		}
		t += reducedRate(c, rule.Employer.Rate)
	}
	return t + math.Min(c.ATMPRate(), atmpCap), msgs
}

func reducedRate(c *paycontext.Context, rate baremes.Rate) float64 {
	switch v := rate.(type) {
	case baremes.Scalar:
		return float64(v)
	case baremes.SmicConditional:
		return v.Reduced
	case baremes.HeadcountConditional:
		if c.Headcount() < v.Threshold {
			return v.Below
		}
		return v.Above
	case baremes.RegionConditional:
		if c.IsAlsaceMoselle() {
			return v.AlsaceMoselle
		}
		return v.Metropole
	}
	return 0
}
