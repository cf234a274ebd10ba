package paycontext

import (
	"fmt"
	"math"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/model"
	"payroll-engine/internal/model/payerr"
	"payroll-engine/internal/money"
	"payroll-engine/internal/sources"
)

const (
	CodeCumulsMissing      = string(payerr.KindCumulsMissing)
	CodeRateLookupFailed   = string(payerr.KindRateLookupFailed)
	CodeSmicNotMet         = "SMIC_NOT_MET"
	CodeConventionMinimum  = "CONVENTION_MINIMUM_NOT_MET"
	CodeConventionNotFound = "CONVENTION_NOT_FOUND"
)

// Context is built once per computation and owns every table and document
// the components read.
type Context struct {
	Employee string
	Month    model.YearMonth
	Contract *model.Contract
	Company  *model.Company
	Tables   *baremes.Tables
	Saisies  *model.SaisiesFile
	Planned  []model.DayRecord
	Actual   []model.DayRecord

	cumuls model.Cumuls
}

// New validates the bundle and derives the prior-month cumuls snapshot.
func New(b *sources.Bundle) (*Context, []model.CalculationMessage, error) {
	if err := b.Validate(); err != nil {
		return nil, nil, err
	}
	if err := validateContract(b.Contract); err != nil {
		return nil, nil, err
	}

	c := &Context{
		Employee: b.Employee,
		Month:    b.YearMonth(),
		Contract: b.Contract,
		Company:  b.Company,
		Tables:   b.Tables,
		Saisies:  b.Saisies,
	}
	for i := range b.Calendars {
		c.Planned = append(c.Planned, b.Calendars[i].Records()...)
	}
	for i := range b.Schedules {
		c.Actual = append(c.Actual, b.Schedules[i].Records()...)
	}

	var msgs []model.CalculationMessage
	cumuls, msg := openingCumuls(b.Cumuls, c.Month)
	if msg != nil {
		msgs = append(msgs, *msg)
	}
	c.cumuls = cumuls
	msgs = append(msgs, c.checkMinimumPay()...)

	return c, msgs, nil
}

func validateContract(ct *model.Contract) error {
	wt := ct.Employment.WorkingTime.WeeklyHours
	if wt == nil {
		return payerr.New(payerr.KindContractIncomplete, "weekly hours missing").WithField("contrat.temps_travail.duree_hebdomadaire")
	}
	if *wt < 1 || *wt > 48 {
		return payerr.Newf(payerr.KindConfigInvalid, "weekly hours %.2f outside [1, 48]", *wt).WithField("contrat.temps_travail.duree_hebdomadaire")
	}
	sb := ct.Pay.BaseSalary.Value
	if sb == nil {
		return payerr.New(payerr.KindContractIncomplete, "base salary missing").WithField("remuneration.salaire_de_base.valeur")
	}
	if *sb <= 0 {
		return payerr.New(payerr.KindConfigInvalid, "base salary must be positive").WithField("remuneration.salaire_de_base.valeur")
	}
	if s := ct.Employment.Status; s != model.StatusCadre && s != model.StatusNonCadre {
		return payerr.Newf(payerr.KindConfigInvalid, "unknown status %q", s).WithField("contrat.statut")
	}
	return nil
}

// openingCumuls returns the year-to-date totals month M starts from. Totals
// of a previous year restart at zero and hand their gross over as the
// reference gross of the 1/10th rule.
func openingCumuls(f *model.CumulsFile, ym model.YearMonth) (model.Cumuls, *model.CalculationMessage) {
	if f == nil {
		msg := model.Warning(CodeCumulsMissing, fmt.Sprintf("no cumuls for %s, starting from zero", ym.Prev()))
		return model.Cumuls{}, &msg
	}
	if f.Period.Year != 0 && f.Period.Year < ym.Year {
		ref := f.Totals.ReferenceGross
		if f.Totals.GrossTotal > 0 {
			ref = f.Totals.GrossTotal
		}
		return model.Cumuls{ReferenceGross: ref}, nil
	}
	return f.Totals, nil
}

func (c *Context) checkMinimumPay() []model.CalculationMessage {
	var msgs []model.CalculationMessage

	monthlyHours := money.Round2(c.WeeklyHours() * 52 / 12)
	hourly := c.BaseSalary() / monthlyHours
	smic := c.Tables.Smic.HourlyForAge(c.employeeAge())
	if hourly+0.005 < smic {
		msgs = append(msgs, model.Warning(CodeSmicNotMet,
			fmt.Sprintf("hourly base %.4f is below the applicable SMIC %.4f", hourly, smic)))
	}

	idcc := c.ConventionID()
	if idcc == "" {
		return msgs
	}
	conv, ok := c.Tables.Convention(idcc)
	if !ok {
		return append(msgs, model.Warning(CodeConventionNotFound, fmt.Sprintf("convention %s not in conventions_collectives.json", idcc)))
	}
	coef := c.Contract.Pay.Classification.Coefficient
	if minimum, ok := conv.MinimumFor(coef); ok && c.BaseSalary() < minimum*c.WeeklyHours()/35 {
		msgs = append(msgs, model.Warning(CodeConventionMinimum,
			fmt.Sprintf("base salary %.2f is below the minimum %.2f for coefficient %g", c.BaseSalary(), minimum, coef)))
	}
	return msgs
}

func (c *Context) employeeAge() int {
	birth, ok := model.ParseDate(c.Contract.Employee.BirthDate)
	if !ok {
		return math.MaxInt32
	}
	ref := c.ReferenceDate()
	age := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		age--
	}
	return age
}
