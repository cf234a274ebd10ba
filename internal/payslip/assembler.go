// Package payslip orders the computed lines into the displayed payslip.
package payslip

import (
	"strings"

	"payroll-engine/internal/contributions"
	"payroll-engine/internal/gross"
	"payroll-engine/internal/model"
	"payroll-engine/internal/money"
	"payroll-engine/internal/net"
	"payroll-engine/internal/paycontext"
	"payroll-engine/internal/period"
	"payroll-engine/internal/reduction"
)

var (
	reliefKeys = []string{"réduction générale", "réduction de cotisations sur heures sup", "déduction forfaitaire"}
	otherKeys  = []string{"fnal", "formation", "apprentissage", "solidarité", "dialogue", "mobilité"}
	csgNDKeys  = []string{"csg/crds sur hs", "csg/crds non déductible"}
)

type Input struct {
	Context       *paycontext.Context
	Period        period.Period
	Gross         *gross.Result
	Contributions *contributions.Result
	Reduction     *reduction.Result
	Net           *net.Result
	YearToDate    model.Cumuls
	Warnings      []model.CalculationMessage
}

func Assemble(in Input) *model.Payslip {
	p := &model.Payslip{
		Header:       header(in.Context, in.Period, in.Gross.SeniorityYears),
		Gross:        grossSection(in.Gross),
		NetToPay:     in.Net.NetToPay,
		Net:          in.Net.Synthesis,
		UntaxedBonus: in.Gross.UntaxedBonuses,
		Meta:         model.PayslipMeta{Warnings: in.Warnings},
	}
	if p.Meta.Warnings == nil {
		p.Meta.Warnings = []model.CalculationMessage{}
	}

	lines := append([]model.ContributionLine(nil), in.Contributions.Lines...)
	if in.Reduction != nil {
		lines = append(lines, in.Reduction.Line)
	}
	p.Contributions = contributionSection(lines)

	var bonuses []float64
	for _, b := range in.Gross.UntaxedBonuses {
		bonuses = append(bonuses, b.Amount)
	}
	p.Footer = model.Footer{
		EmployerCost: money.Sum(in.Gross.Total, p.Contributions.TotalEmployer, money.Sum(bonuses...)),
		YearToDate:   in.YearToDate,
	}
	if in.Gross.Leave != nil {
		p.Footer.LeaveNarrative = in.Gross.Leave.Narrative()
	}
	return p
}

func header(c *paycontext.Context, p period.Period, seniority float64) model.Header {
	ct := c.Contract
	h := model.Header{
		PeriodStart: p.Start.Format("2006-01-02"),
		PeriodEnd:   p.End.Format("2006-01-02"),
		Year:        c.Month.Year,
		Month:       c.Month.Month,
		Employer: model.EmployerHeader{
			Name:       c.Company.Identification.Name,
			SIRET:      c.Company.Identification.SIRET,
			Address:    c.Company.Identification.Address,
			Convention: c.Company.Convention.Label,
		},
		Employee: model.EmployeeHeader{
			Name:        strings.TrimSpace(ct.Employee.FirstName + " " + ct.Employee.LastName),
			NIR:         ct.Employee.NIR,
			JobTitle:    ct.Employment.JobTitle,
			Status:      ct.Employment.Status,
			HireDate:    ct.Employment.HireDate,
			Coefficient: ct.Pay.Classification.Coefficient,
			WeeklyHours: c.WeeklyHours(),
			Seniority:   seniority,
			Address:     ct.Employee.Address,
		},
	}
	if conv, ok := c.Tables.Convention(c.ConventionID()); ok {
		h.Employer.Convention = conv.Label
	}
	return h
}

func grossSection(g *gross.Result) model.GrossSection {
	s := model.GrossSection{
		Lines:    []model.GrossLine{},
		Leave:    []model.GrossLine{},
		Absences: []model.GrossLine{},
		Total:    g.Total,
	}
	for _, l := range g.Lines {
		label := strings.ToLower(l.Label)
		switch {
		case strings.Contains(label, "congés payés"):
			s.Leave = append(s.Leave, l)
		case strings.Contains(label, "absence"):
			s.Absences = append(s.Absences, l)
		default:
			s.Lines = append(s.Lines, l)
		}
	}
	return s
}

func contributionSection(lines []model.ContributionLine) model.ContributionSection {
	s := model.ContributionSection{
		Main:             []model.ContributionLine{},
		Other:            []model.ContributionLine{},
		Reliefs:          []model.ContributionLine{},
		CSGNonDeductible: []model.ContributionLine{},
	}
	for _, l := range lines {
		label := strings.ToLower(l.Label)
		switch {
		case containsAny(label, reliefKeys):
			s.Reliefs = append(s.Reliefs, l)
		case containsAny(label, otherKeys):
			s.Other = append(s.Other, l)
		case containsAny(label, csgNDKeys):
			s.CSGNonDeductible = append(s.CSGNonDeductible, l)
		default:
			s.Main = append(s.Main, l)
		}
	}

	s.SubtotalEmployee, s.SubtotalEmployer = totals(s.Main, s.Other, s.Reliefs)
	ndEmployee, ndEmployer := totals(s.CSGNonDeductible)
	s.TotalEmployee = money.Sum(s.SubtotalEmployee, ndEmployee)
	s.TotalEmployer = money.Sum(s.SubtotalEmployer, ndEmployer)
	return s
}

func totals(groups ...[]model.ContributionLine) (employee, employer float64) {
	var ee, er []float64
	for _, g := range groups {
		for _, l := range g {
			ee = append(ee, l.EmployeeAmount)
			er = append(er, l.EmployerAmount)
		}
	}
	return money.Sum(ee...), money.Sum(er...)
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
