// Package contributions computes the social contribution lines of a payslip.
package contributions

import (
	"fmt"
	"strings"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/model"
	"payroll-engine/internal/money"
	"payroll-engine/internal/paycontext"
)

const (
	csgAbatement   = 0.9825
	tranche2Factor = 8.0
	legalWeekly    = 35.0

	defaultMaladieMultiple     = 2.5
	defaultAllocationsMultiple = 3.5
)

const (
	IDCSGDeductible    = "csg_deductible"
	IDCSGNonDeductible = "csg_crds_non_deductible"
	IDCSGOvertime      = "csg_crds_hs"
	IDForfaitSocial    = "forfait_social_prevoyance"
	IDOvertimeEmployee = "reduction_salariale_hs"
	IDOvertimeEmployer = "deduction_forfaitaire_hs"

	LabelCSGDeductible    = "CSG déductible de l'impôt sur le revenu"
	LabelCSGNonDeductible = "CSG/CRDS non déductible de l'impôt sur le revenu"
	LabelCSGOvertime      = "CSG/CRDS sur HS non déductible de l'impôt sur le revenu"
	LabelOvertimeEmployee = "Réduction de cotisations sur heures supplémentaires"
	LabelOvertimeEmployer = "Déduction forfaitaire patronale sur heures supplémentaires"
	LabelForfaitSocial    = "Forfait social sur prévoyance"
	LabelMutuelle         = "Complémentaire santé"
)

// requiredIDs must be present in cotisations.json; a missing one counts as zero.
var requiredIDs = []string{
	baremes.IDMaladie,
	baremes.IDRetraiteSecuPlafond,
	baremes.IDRetraiteSecuDeplafond,
	baremes.IDAllocations,
	baremes.IDATMP,
	baremes.IDCSA,
	baremes.IDAssuranceChomage,
	baremes.IDRetraiteCompT1,
	baremes.IDCEGT1,
	baremes.IDFNAL,
	baremes.IDCSG,
}

type Input struct {
	Gross         float64
	OvertimeGross float64 // remuneration_hs_totale
	OvertimeHours float64 // total_heures_supp_mois
}

// Assiettes are the bases the rules refer to by name.
type Assiettes struct {
	Gross               float64 `json:"brut"`
	Ceiling             float64 `json:"plafond_ss"`
	CappedGross         float64 `json:"brut_plafonne"`
	Tranche2            float64 `json:"tranche_2"`
	CET                 float64 `json:"assiette_cet"`
	CSGNormal           float64 `json:"csg_crds_base_normale"`
	CSGOvertime         float64 `json:"csg_crds_base_hs"`
	EmployerPrevoyance  float64 `json:"prevoyance_patronale"`
	EmployerMutuelleCSG float64 `json:"mutuelle_patronale_soumise_csg"`
}

func (a Assiettes) For(b baremes.Base) (float64, bool) {
	switch b {
	case baremes.BaseGross:
		return a.Gross, true
	case baremes.BaseCeiling:
		return a.Ceiling, true
	case baremes.BaseCappedGross:
		return a.CappedGross, true
	case baremes.BaseTranche2:
		return a.Tranche2, true
	case baremes.BaseCET:
		return a.CET, true
	case baremes.BaseCSGNormal:
		return a.CSGNormal, true
	case baremes.BaseCSGOvertime:
		return a.CSGOvertime, true
	}
	return 0, false
}

type Result struct {
	Lines            []model.ContributionLine
	TotalEmployee    float64
	TotalEmployer    float64
	Assiettes        Assiettes
	CSGNonDeductible float64
	EmployerMutuelle float64
}

type engine struct {
	c    *paycontext.Context
	in   Input
	a    Assiettes
	msgs []model.CalculationMessage
}

// Compute resolves every applicable rule against the month's gross.
func Compute(c *paycontext.Context, in Input) (*Result, []model.CalculationMessage) {
	e := &engine{c: c, in: in}
	for _, id := range requiredIDs {
		if _, ok := c.Contribution(id); !ok {
			e.warnMissing(id)
		}
	}

	e.a = e.baseAssiettes()
	mutuelle, employerMutuelle := e.mutuelle()
	prevoyance := e.prevoyance()
	e.a.CSGNormal = money.Round2((in.Gross-in.OvertimeGross)*csgAbatement + e.a.EmployerPrevoyance + e.a.EmployerMutuelleCSG)
	e.a.CSGOvertime = money.Round2(in.OvertimeGross * csgAbatement)

	res := &Result{Assiettes: e.a, EmployerMutuelle: employerMutuelle}
	for i := range c.Tables.Contributions {
		rule := &c.Tables.Contributions[i]
		switch {
		case strings.HasPrefix(rule.ID, "prevoyance_"), rule.ID == baremes.IDMutuelle:
			continue
		case rule.ID == baremes.IDAPEC && !c.IsCadre():
			continue
		case rule.ID == baremes.IDCSG:
			csg := e.csg(rule)
			for _, l := range csg {
				if l.ID != IDCSGDeductible {
					res.CSGNonDeductible = money.Sum(res.CSGNonDeductible, l.EmployeeAmount)
				}
			}
			res.Lines = append(res.Lines, csg...)
			continue
		}
		if l, ok := e.rule(rule); ok {
			res.Lines = append(res.Lines, l)
		}
	}
	res.Lines = append(res.Lines, mutuelle...)
	res.Lines = append(res.Lines, prevoyance...)
	res.Lines = append(res.Lines, e.overtime()...)

	var employee, employer []float64
	for _, l := range res.Lines {
		employee = append(employee, l.EmployeeAmount)
		employer = append(employer, l.EmployerAmount)
	}
	res.TotalEmployee = money.Sum(employee...)
	res.TotalEmployer = money.Sum(employer...)
	return res, e.msgs
}

func (e *engine) baseAssiettes() Assiettes {
	gross := e.in.Gross
	pss := e.c.MonthlyCeiling()
	if tc := e.c.WeeklyHours(); tc < legalWeekly && e.c.Contract.Employment.WorkingTime.ProrateCeiling {
		pss = money.Round2(pss * tc / legalWeekly)
	}

	a := Assiettes{Gross: gross}
	a.Ceiling = min(gross, pss)
	a.CappedGross = min(gross, pss)
	if gross > pss {
		a.Tranche2 = money.Sub(min(gross, tranche2Factor*pss), pss)
		a.CET = min(gross, tranche2Factor*pss)
	}
	return a
}

// rule emits one table line. Lines with both amounts zero are dropped
// unless the rule declares no rate at all.
func (e *engine) rule(rule *baremes.Contribution) (model.ContributionLine, bool) {
	base, ok := e.a.For(rule.Base)
	if !ok {
		e.msgs = append(e.msgs, model.Warning(paycontext.CodeRateLookupFailed,
			fmt.Sprintf("contribution %s: unknown base %q, counted as zero", rule.ID, rule.Base)))
		return model.ContributionLine{}, false
	}

	employee := e.resolve(rule, rule.Employee.Rate)
	employer := e.resolve(rule, rule.Employer.Rate)
	switch rule.ID {
	case baremes.IDMaladie:
		if e.c.IsAlsaceMoselle() && rule.EmployeeAlsaceMoselle != nil {
			employee = model.Ptr(*rule.EmployeeAlsaceMoselle)
		}
	case baremes.IDATMP:
		employer = model.Ptr(e.c.ATMPRate())
	}

	l := line(rule.ID, rule.Label, base, employee, employer)
	if l.EmployeeAmount == 0 && l.EmployerAmount == 0 && (employee != nil || employer != nil) {
		return l, false
	}
	return l, true
}

// resolve selects the applicable value of a tagged rate.
func (e *engine) resolve(rule *baremes.Contribution, rate baremes.Rate) *float64 {
	switch v := rate.(type) {
	case nil:
		return nil
	case baremes.Scalar:
		return model.Ptr(float64(v))
	case baremes.HeadcountConditional:
		if e.c.Headcount() < v.Threshold {
			return model.Ptr(v.Below)
		}
		return model.Ptr(v.Above)
	case baremes.RegionConditional:
		if e.c.IsAlsaceMoselle() {
			return model.Ptr(v.AlsaceMoselle)
		}
		return model.Ptr(v.Metropole)
	case baremes.SmicConditional:
		multiple := v.SmicMultiple
		if multiple == 0 {
			multiple = defaultMaladieMultiple
			if rule.ID == baremes.IDAllocations {
				multiple = defaultAllocationsMultiple
			}
		}
		if e.in.Gross <= money.Mul(e.c.SmicMonthly(), multiple) {
			return model.Ptr(v.Reduced)
		}
		return model.Ptr(v.Full)
	case baremes.CsgSplit:
		return model.Ptr(v.Total())
	}
	return nil
}

func (e *engine) csg(rule *baremes.Contribution) []model.ContributionLine {
	split, ok := rule.Employee.Rate.(baremes.CsgSplit)
	if !ok {
		e.msgs = append(e.msgs, model.Warning(paycontext.CodeRateLookupFailed,
			"contribution csg: employee rate is not split into deductible and non deductible parts, counted as zero"))
		return nil
	}

	out := []model.ContributionLine{
		line(IDCSGDeductible, LabelCSGDeductible, e.a.CSGNormal, model.Ptr(split.Deductible), nil),
		line(IDCSGNonDeductible, LabelCSGNonDeductible, e.a.CSGNormal, model.Ptr(split.NonDeductible), nil),
	}
	if e.a.CSGOvertime > 0 {
		out = append(out, line(IDCSGOvertime, LabelCSGOvertime, e.a.CSGOvertime, model.Ptr(split.Total()), nil))
	}
	return out
}

// mutuelle returns the flat lines and the total employer amount.
func (e *engine) mutuelle() ([]model.ContributionLine, float64) {
	m := e.c.Contract.Specifics.Mutuelle
	if !m.Member {
		return nil, 0
	}

	var out []model.ContributionLine
	var employer, exposed []float64
	for _, ml := range m.Lines {
		label := ml.Label
		if label == "" {
			label = LabelMutuelle
		}
		l := model.ContributionLine{
			ID:             baremes.IDMutuelle,
			Label:          label,
			EmployeeAmount: money.Round2(ml.EmployeeAmount),
			EmployerAmount: money.Round2(ml.EmployerAmount),
		}
		out = append(out, l)
		employer = append(employer, l.EmployerAmount)
		if ml.EmployerCSGBased {
			exposed = append(exposed, l.EmployerAmount)
		}
	}
	e.a.EmployerMutuelleCSG = money.Sum(exposed...)
	return out, money.Sum(employer...)
}

// prevoyance builds the prévoyance lines and records the employer part
// entering the CSG base.
func (e *engine) prevoyance() []model.ContributionLine {
	var out []model.ContributionLine
	var employer []float64

	p := e.c.Contract.Specifics.Prevoyance
	if e.c.IsCadre() && p.Member && len(p.Lines) > 0 {
		for _, pl := range p.Lines {
			base, ok := e.a.For(baremes.Base(pl.Base))
			if pl.Base == "" || !ok {
				base = e.a.CappedGross
			}
			label := pl.Label
			if label == "" {
				label = "Prévoyance cadre"
			}
			l := line(baremes.IDPrevoyanceCadre, label, base, model.Ptr(pl.EmployeeRate), model.Ptr(pl.EmployerRate))
			out = append(out, l)
			employer = append(employer, l.EmployerAmount)

			if pl.ForfaitSocial != nil && *pl.ForfaitSocial > 0 {
				out = append(out, line(IDForfaitSocial, LabelForfaitSocial, l.EmployerAmount, nil, model.Ptr(*pl.ForfaitSocial)))
			}
		}
		e.a.EmployerPrevoyance = money.Sum(employer...)
		return out
	}

	id := baremes.IDPrevoyanceNonCadre
	if e.c.IsCadre() {
		id = baremes.IDPrevoyanceCadre
	}
	rule, ok := e.c.Contribution(id)
	if !ok {
		e.warnMissing(id)
		return nil
	}
	if l, ok := e.rule(rule); ok {
		out = append(out, l)
		e.a.EmployerPrevoyance = l.EmployerAmount
	}
	return out
}

func (e *engine) overtime() []model.ContributionLine {
	var out []model.ContributionLine
	ot := e.c.Tables.Overtime

	if e.in.OvertimeGross > 0 {
		rate := ot.EmployeeReduction.Effective()
		out = append(out, model.ContributionLine{
			ID:             IDOvertimeEmployee,
			Label:          LabelOvertimeEmployee,
			Base:           model.Ptr(e.in.OvertimeGross),
			EmployeeRate:   model.Ptr(rate),
			EmployeeAmount: -money.Mul(e.in.OvertimeGross, rate),
		})
	}
	if e.in.OvertimeHours > 0 {
		if perHour, ok := ot.EmployerDeductionFor(e.c.Headcount()); ok && perHour > 0 {
			out = append(out, model.ContributionLine{
				ID:             IDOvertimeEmployer,
				Label:          LabelOvertimeEmployer,
				Base:           model.Ptr(e.in.OvertimeHours),
				EmployerRate:   model.Ptr(perHour),
				EmployerAmount: -money.Mul(e.in.OvertimeHours, perHour),
			})
		}
	}
	return out
}

func (e *engine) warnMissing(id string) {
	e.msgs = append(e.msgs, model.Warning(paycontext.CodeRateLookupFailed,
		fmt.Sprintf("contribution %s missing from cotisations.json, counted as zero", id)))
}

func line(id, label string, base float64, employee, employer *float64) model.ContributionLine {
	base = money.Round2(base)
	l := model.ContributionLine{
		ID:           id,
		Label:        label,
		Base:         model.Ptr(base),
		EmployeeRate: employee,
		EmployerRate: employer,
	}
	if employee != nil {
		l.EmployeeAmount = money.Mul(base, *employee)
	}
	if employer != nil {
		l.EmployerAmount = money.Mul(base, *employer)
	}
	return l
}
