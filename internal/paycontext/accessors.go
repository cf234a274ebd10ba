package paycontext

import (
	"time"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/model"
)

func (c *Context) Headcount() int {
	return c.Company.Payroll.Headcount
}

func (c *Context) IsCadre() bool {
	return c.Contract.IsCadre()
}

func (c *Context) BaseSalary() float64 {
	return c.Contract.BaseSalary()
}

func (c *Context) WeeklyHours() float64 {
	return c.Contract.WeeklyHours()
}

func (c *Context) IsAlsaceMoselle() bool {
	return c.Contract.Specifics.AlsaceMoselle
}

// Cumuls is the prior-month snapshot.
func (c *Context) Cumuls() model.Cumuls {
	return c.cumuls
}

func (c *Context) Contribution(id string) (*baremes.Contribution, bool) {
	return c.Tables.Contribution(id)
}

func (c *Context) ATMPRate() float64 {
	return c.Company.Payroll.SpecificRates.ATMP
}

func (c *Context) SmicHourly() float64 {
	return c.Tables.Smic.Hourly
}

func (c *Context) SmicMonthly() float64 {
	return c.Tables.Smic.Monthly()
}

func (c *Context) MonthlyCeiling() float64 {
	return c.Tables.Ceilings.Monthly
}

func (c *Context) HS25() float64 {
	return c.Tables.Overtime.Majorations.HS25
}

func (c *Context) HS50() float64 {
	return c.Tables.Overtime.Majorations.HS50
}

// ReferenceDate is the last day of month M; seniority is measured at it.
func (c *Context) ReferenceDate() time.Time {
	return c.Month.LastDay()
}

// ConventionID prefers the contract's IDCC over the company's.
func (c *Context) ConventionID() string {
	if id := c.Contract.Pay.Classification.IDCC; id != "" {
		return id
	}
	return c.Company.Convention.IDCC
}

// Bonuses are the contract's recurring variable elements followed by the month's entries.
func (c *Context) Bonuses() []model.Bonus {
	out := append([]model.Bonus(nil), c.Contract.Pay.VariableElements...)
	if c.Saisies != nil {
		out = append(out, c.Saisies.Bonuses...)
	}
	return out
}

func (c *Context) Advance() float64 {
	return c.Saisies.AdvanceAmount()
}
