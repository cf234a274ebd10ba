// Package gross composes the gross salary lines of month M.
package gross

import (
	"fmt"
	"sort"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/leave"
	"payroll-engine/internal/model"
	"payroll-engine/internal/money"
	"payroll-engine/internal/paycontext"
	"payroll-engine/internal/period"
)

const (
	legalWeeklyHours = 35.0
	weeksPerMonth    = 52.0 / 12.0

	CodeSeniorityBase = "SENIORITY_BASE_MISSING"
)

const (
	LabelBaseSalary          = "Salaire de base"
	LabelStructuralOvertime  = "Heures supplémentaires structurelles à 25 %"
	LabelContractualSubtotal = "Salaire contractuel"
	LabelOvertime25          = "Heures supplémentaires à 25 %"
	LabelOvertime50          = "Heures supplémentaires à 50 %"
	LabelLeaveRetention      = "Absence congés payés"
	LabelLeaveMaintenance    = "Indemnité congés payés (maintien de salaire)"
	LabelLeaveMaintenanceHS  = "Indemnité congés payés heures supplémentaires (maintien de salaire)"
	LabelLeaveTenth          = "Indemnité congés payés (dixième)"
	LabelSeniority           = "Prime d'ancienneté"
	LabelBenefitsInKind      = "Avantages en nature"
)

// Result carries the gross lines and the figures later steps need.
type Result struct {
	Lines []model.GrossLine
	Total float64

	HourlyBase      float64
	MonthlyHours    float64 // contractual monthly hours, T_c × 52/12
	StructuralHours float64

	HS25Hours         float64
	HS50Hours         float64
	AbsenceHSHours    float64
	OvertimeGross     float64 // remuneration_hs_totale
	OvertimeHours     float64 // total_heures_supp_mois
	BenefitsInKind    float64
	UntaxedBonuses    []model.BonusLine
	LeaveDays         int
	Leave             *leave.Outcome
	SeniorityYears    float64
}

// MonthPaidHours is the contractual monthly hours plus conjunctural overtime.
func (r *Result) MonthPaidHours() float64 {
	return money.RoundTo(r.MonthlyHours+r.HS25Hours+r.HS50Hours, 2)
}

type builder struct {
	c      *paycontext.Context
	res    *Result
	msgs   []model.CalculationMessage
	m25    float64
	m50    float64
	hourly float64
}

// Build derives hourly rates from the contract and turns the month's events
// inside p into gross lines.
func Build(c *paycontext.Context, events []model.PayrollEvent, p period.Period) (*Result, []model.CalculationMessage) {
	b := &builder{c: c, res: &Result{}, m25: c.HS25(), m50: c.HS50()}

	structuralGain := b.contractual()
	b.events(events, p)
	b.seniority()
	b.bonuses()
	b.benefitsInKind()

	r := b.res
	var gains, losses []float64
	for _, l := range r.Lines {
		if l.Subtotal {
			continue
		}
		gains = append(gains, l.Gain)
		losses = append(losses, l.Loss)
	}
	r.Total = money.Sub(money.Sum(gains...), money.Sum(losses...))
	r.HS25Hours = money.RoundTo(r.HS25Hours, 2)
	r.HS50Hours = money.RoundTo(r.HS50Hours, 2)
	r.AbsenceHSHours = money.RoundTo(r.AbsenceHSHours, 2)
	r.OvertimeHours = money.RoundTo(r.StructuralHours+r.HS25Hours+r.HS50Hours-r.AbsenceHSHours, 2)
	r.OvertimeGross = money.Sum(structuralGain, r.OvertimeGross)
	return r, b.msgs
}

// contractual emits the base salary and, above 35h, the structural overtime
// it includes. It returns the structural overtime amount.
func (b *builder) contractual() float64 {
	tc := b.c.WeeklyHours()
	sb := b.c.BaseSalary()
	r := b.res

	if tc <= legalWeeklyHours {
		r.MonthlyHours = money.RoundTo(tc*weeksPerMonth, 2)
		b.hourly = sb / r.MonthlyHours
		r.HourlyBase = b.hourly
		b.add(model.GrossLine{
			Label:    LabelBaseSalary,
			Quantity: r.MonthlyHours,
			Rate:     money.RoundTo(b.hourly, 4),
			Gain:     money.Round2(r.MonthlyHours * b.hourly),
		})
		return 0
	}

	legal := money.RoundTo(legalWeeklyHours*weeksPerMonth, 2)
	r.StructuralHours = money.RoundTo((tc-legalWeeklyHours)*weeksPerMonth, 2)
	r.MonthlyHours = money.RoundTo(tc*weeksPerMonth, 2)
	b.hourly = sb / (legal + r.StructuralHours*(1+b.m25))
	r.HourlyBase = b.hourly

	base := money.Round2(legal * b.hourly)
	structural := money.Sub(money.Round2(sb), base)
	b.add(model.GrossLine{Label: LabelBaseSalary, Quantity: legal, Rate: money.RoundTo(b.hourly, 4), Gain: base})
	b.add(model.GrossLine{
		Label:    LabelStructuralOvertime,
		Quantity: r.StructuralHours,
		Rate:     money.RoundTo(b.hourly*(1+b.m25), 4),
		Gain:     structural,
	})
	b.add(model.GrossLine{Label: LabelContractualSubtotal, Gain: money.Round2(sb), Subtotal: true})
	return structural
}

func (b *builder) events(events []model.PayrollEvent, p period.Period) {
	r := b.res
	var absenceLines []model.GrossLine
	var absHSLoss []float64

	for _, e := range events {
		if !p.Contains(e.Date()) {
			continue
		}
		h := e.Amount()
		switch e.Type {
		case model.EventWorkHS25:
			r.HS25Hours += h
		case model.EventWorkHS50:
			r.HS50Hours += h
		case model.EventPaidLeave:
			r.LeaveDays++
		case model.EventUnjustifiedBase:
			absenceLines = append(absenceLines, b.absence(e, "Absence injustifiée", b.hourly))
		case model.EventUnjustifiedHS25:
			l := b.absence(e, "Absence injustifiée (heures supplémentaires à 25 %)", b.hourly*(1+b.m25))
			absenceLines = append(absenceLines, l)
			r.AbsenceHSHours += h
			absHSLoss = append(absHSLoss, l.Loss)
		case model.EventUnjustifiedHS50:
			l := b.absence(e, "Absence injustifiée (heures supplémentaires à 50 %)", b.hourly*(1+b.m50))
			absenceLines = append(absenceLines, l)
			r.AbsenceHSHours += h
			absHSLoss = append(absHSLoss, l.Loss)
		case model.EventUnpaidAbsence:
			if h > 0 {
				absenceLines = append(absenceLines, b.absence(e, "Absence non rémunérée", b.hourly))
			}
		}
	}

	var hsGains []float64
	if hs := money.RoundTo(r.HS25Hours, 2); hs > 0 {
		l := model.GrossLine{Label: LabelOvertime25, Quantity: hs, Rate: money.RoundTo(b.hourly*(1+b.m25), 4), Gain: money.Round2(hs * b.hourly * (1 + b.m25))}
		b.add(l)
		hsGains = append(hsGains, l.Gain)
	}
	if hs := money.RoundTo(r.HS50Hours, 2); hs > 0 {
		l := model.GrossLine{Label: LabelOvertime50, Quantity: hs, Rate: money.RoundTo(b.hourly*(1+b.m50), 4), Gain: money.Round2(hs * b.hourly * (1 + b.m50))}
		b.add(l)
		hsGains = append(hsGains, l.Gain)
	}
	r.OvertimeGross = money.Sub(money.Sum(hsGains...), money.Sum(absHSLoss...))

	b.leave()
	for _, l := range absenceLines {
		b.add(l)
	}
}

func (b *builder) absence(e model.PayrollEvent, label string, rate float64) model.GrossLine {
	h := e.Amount()
	return model.GrossLine{
		Label:    fmt.Sprintf("%s du %s", label, e.Date().Format("02/01/2006")),
		Quantity: h,
		Rate:     money.RoundTo(rate, 4),
		Loss:     money.Round2(h * rate),
	}
}

func (b *builder) leave() {
	r := b.res
	if r.LeaveDays == 0 {
		return
	}
	out := leave.Arbitrate(leave.Input{
		Days:           r.LeaveDays,
		WeeklyHours:    b.c.WeeklyHours(),
		HourlyBase:     b.hourly,
		HS25:           b.m25,
		ReferenceGross: b.c.Cumuls().ReferenceGross,
	})
	r.Leave = &out

	b.add(model.GrossLine{
		Label:    LabelLeaveRetention,
		Quantity: money.RoundTo(out.BaseHours+out.OvertimeHours, 2),
		Loss:     out.Retention(),
	})
	if out.Method == leave.MethodTenth {
		b.add(model.GrossLine{Label: LabelLeaveTenth, Quantity: float64(out.Days), Gain: out.Tenth})
		return
	}
	b.add(model.GrossLine{Label: LabelLeaveMaintenance, Quantity: out.BaseHours, Rate: money.RoundTo(b.hourly, 4), Gain: out.MaintenanceBase})
	if out.MaintenanceOvertime > 0 {
		b.add(model.GrossLine{
			Label:    LabelLeaveMaintenanceHS,
			Quantity: out.OvertimeHours,
			Rate:     money.RoundTo(b.hourly*(1+b.m25), 4),
			Gain:     out.MaintenanceOvertime,
		})
	}
}

func (b *builder) seniority() {
	hired, ok := b.c.Contract.HireDate()
	if !ok {
		return
	}
	years := b.c.ReferenceDate().Sub(hired).Hours() / 24 / 365.25
	b.res.SeniorityYears = money.RoundTo(years, 2)

	conv, ok := b.c.Tables.Convention(b.c.ConventionID())
	if !ok || len(conv.Seniority.Brackets) == 0 {
		return
	}
	rate := conv.Seniority.RateFor(years)
	if rate <= 0 {
		return
	}

	sb := b.c.BaseSalary()
	base := sb
	switch conv.Seniority.Base {
	case baremes.SeniorityBaseMinimum:
		coef := b.c.Contract.Pay.Classification.Coefficient
		minimum, found := conv.MinimumFor(coef)
		if !found {
			b.msgs = append(b.msgs, model.Warning(CodeSeniorityBase,
				fmt.Sprintf("no minimum for coefficient %g in convention %s, seniority computed on base salary", coef, conv.IDCC)))
			break
		}
		base = minimum
	case baremes.SeniorityBasePercentage:
		base = sb * conv.Seniority.Percentage
	}

	b.add(model.GrossLine{
		Label:    LabelSeniority,
		Quantity: money.Round2(base),
		Rate:     rate,
		Gain:     money.Round2(base * rate),
	})
}

func (b *builder) bonuses() {
	for _, bonus := range b.c.Bonuses() {
		if bonus.Amount == 0 {
			continue
		}
		label, social := bonus.ID, true
		if def, ok := b.c.Tables.Bonus(bonus.ID); ok {
			label, social = def.Label, def.SocialBased
		}
		if bonus.SocialBased != nil {
			social = *bonus.SocialBased
		}

		amount := money.Round2(bonus.Amount)
		if !social {
			b.res.UntaxedBonuses = append(b.res.UntaxedBonuses, model.BonusLine{ID: bonus.ID, Label: label, Amount: amount})
			continue
		}
		b.add(model.GrossLine{Label: label, Gain: amount})
	}
}

func (b *builder) benefitsInKind() {
	company := b.c.Company.Payroll.BenefitsInKind
	declared := b.c.Contract.Pay.BenefitsInKind

	meals := company.MealValue * float64(declared.Meals.PerMonth)
	housing := 0.0
	if declared.Housing.Granted {
		housing = housingForfait(company.HousingScale, b.c.BaseSalary(), declared.Housing.Rooms)
	}

	total := money.Round2(meals + housing)
	if total <= 0 {
		return
	}
	b.res.BenefitsInKind = total
	b.add(model.GrossLine{Label: LabelBenefitsInKind, Gain: total})
}

// housingForfait picks the first bracket whose ceiling covers pay; an open
// ceiling matches everything.
func housingForfait(scale []model.HousingBracket, pay float64, rooms int) float64 {
	if len(scale) == 0 {
		return 0
	}
	brackets := append([]model.HousingBracket(nil), scale...)
	sort.SliceStable(brackets, func(i, j int) bool {
		if brackets[i].MaxPay == nil {
			return false
		}
		if brackets[j].MaxPay == nil {
			return true
		}
		return *brackets[i].MaxPay < *brackets[j].MaxPay
	})

	chosen := brackets[len(brackets)-1]
	for _, br := range brackets {
		if br.MaxPay == nil || pay <= *br.MaxPay {
			chosen = br
			break
		}
	}
	return chosen.OneRoom + float64(max(rooms-1, 0))*chosen.PerExtraRoom
}

func (b *builder) add(l model.GrossLine) {
	b.res.Lines = append(b.res.Lines, l)
}
