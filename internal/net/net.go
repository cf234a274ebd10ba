// Package net derives the net amounts from gross and contributions.
package net

import (
	"payroll-engine/internal/model"
	"payroll-engine/internal/money"
	"payroll-engine/internal/paycontext"
)

const (
	withholdingZone   = "metropole"
	transportEmployer = 0.5
)

type Input struct {
	Gross            float64
	TotalEmployee    float64
	CSGNonDeductible float64
	EmployerMutuelle float64
	OvertimeGross    float64
	BenefitsInKind   float64
	UntaxedBonuses   []model.BonusLine
}

type Result struct {
	Synthesis model.NetSynthesis
	NetToPay  float64
}

// Build applies the net formulas. Overtime is exempted from taxable net
// without the annual cap.
func Build(c *paycontext.Context, in Input) *Result {
	s := model.NetSynthesis{
		NetSocial:        money.Sub(in.Gross, in.TotalEmployee),
		CSGNonDeductible: in.CSGNonDeductible,
		EmployerMutuelle: in.EmployerMutuelle,
		OvertimeExempt:   money.Round2(in.OvertimeGross),
		BenefitsInKind:   in.BenefitsInKind,
	}
	s.NetTaxable = money.Sub(money.Sum(s.NetSocial, s.CSGNonDeductible, s.EmployerMutuelle), s.OvertimeExempt)

	s.WithholdingBase = s.NetTaxable
	s.WithholdingRate, s.WithholdingNeutral = withholdingRate(c, s.NetTaxable)
	if s.NetTaxable > 0 {
		s.WithholdingTax = money.Round2(s.NetTaxable * s.WithholdingRate / 100)
	}

	sp := c.Contract.Specifics
	if mv := sp.MealVouchers; mv.Granted && mv.PerMonth > 0 {
		s.MealVouchers = money.Round2(float64(mv.PerMonth) * (mv.FaceValue - mv.EmployerShare))
	}
	s.Transport = money.Round2(sp.Transport.MonthlySubscription * transportEmployer)

	var bonuses []float64
	for _, b := range in.UntaxedBonuses {
		bonuses = append(bonuses, b.Amount)
	}
	s.UntaxedBonuses = money.Sum(bonuses...)
	s.Advance = money.Round2(c.Advance())

	pay := money.Sum(s.NetSocial, -s.WithholdingTax, -s.MealVouchers, s.Transport, s.UntaxedBonuses, -s.Advance, -s.BenefitsInKind)
	return &Result{Synthesis: s, NetToPay: pay}
}

// withholdingRate returns the PAS rate in percent. Without a rate on the
// contract the neutral grid applies.
func withholdingRate(c *paycontext.Context, netTaxable float64) (float64, bool) {
	if r := c.Contract.Specifics.Withholding.Rate; r != nil {
		return *r, false
	}
	rate, ok := c.Tables.Withholding.NeutralRate(withholdingZone, netTaxable)
	if !ok {
		return 0, true
	}
	return money.RoundTo(rate*100, 2), true
}
