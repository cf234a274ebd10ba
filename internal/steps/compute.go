package steps

import (
	"payroll-engine/internal/contributions"
	"payroll-engine/internal/gross"
	"payroll-engine/internal/hours"
	"payroll-engine/internal/model"
	"payroll-engine/internal/net"
	"payroll-engine/internal/paycontext"
	"payroll-engine/internal/payslip"
	"payroll-engine/internal/period"
	"payroll-engine/internal/reduction"
)

type ContextStep struct{}

func (h *ContextStep) Validate(state *State) []model.CalculationMessage {
	if state.Bundle == nil {
		return missing(state, "sources bundle")
	}
	return nil
}

func (h *ContextStep) Apply(state *State) []model.CalculationMessage {
	c, msgs, err := paycontext.New(state.Bundle)
	if err != nil {
		return state.Fail(err)
	}
	state.Context = c
	return msgs
}

type HoursStep struct{}

func (h *HoursStep) Validate(state *State) []model.CalculationMessage {
	if state.Context == nil {
		return missing(state, "context")
	}
	return nil
}

func (h *HoursStep) Apply(state *State) []model.CalculationMessage {
	c := state.Context
	res := hours.Analyze(hours.Input{
		Planned:     c.Planned,
		Actual:      c.Actual,
		WeeklyHours: c.WeeklyHours(),
		Month:       c.Month,
	})
	state.Events = res.Events
	return res.Messages
}

type PeriodStep struct{}

func (h *PeriodStep) Validate(state *State) []model.CalculationMessage {
	if state.Context == nil {
		return missing(state, "context")
	}
	return nil
}

func (h *PeriodStep) Apply(state *State) []model.CalculationMessage {
	p, err := period.Resolve(state.Context.Company.Payroll.PayPeriod, state.Context.Month)
	if err != nil {
		return state.Fail(err)
	}
	state.Period = p
	return nil
}

type GrossStep struct{}

func (h *GrossStep) Validate(state *State) []model.CalculationMessage {
	if state.Period.End.IsZero() {
		return missing(state, "pay period")
	}
	return nil
}

func (h *GrossStep) Apply(state *State) []model.CalculationMessage {
	res, msgs := gross.Build(state.Context, state.Events, state.Period)
	state.Gross = res
	return msgs
}

type ContributionsStep struct{}

func (h *ContributionsStep) Validate(state *State) []model.CalculationMessage {
	if state.Gross == nil {
		return missing(state, "gross")
	}
	return nil
}

func (h *ContributionsStep) Apply(state *State) []model.CalculationMessage {
	g := state.Gross
	res, msgs := contributions.Compute(state.Context, contributions.Input{
		Gross:         g.Total,
		OvertimeGross: g.OvertimeGross,
		OvertimeHours: g.OvertimeHours,
	})
	state.Contributions = res
	return msgs
}

type ReductionStep struct{}

func (h *ReductionStep) Validate(state *State) []model.CalculationMessage {
	if state.Gross == nil {
		return missing(state, "gross")
	}
	return nil
}

func (h *ReductionStep) Apply(state *State) []model.CalculationMessage {
	res, msgs := reduction.Compute(state.Context, reduction.Input{
		Gross:          state.Gross.Total,
		MonthPaidHours: state.Gross.MonthPaidHours(),
	})
	state.Reduction = res
	return msgs
}

type NetStep struct{}

func (h *NetStep) Validate(state *State) []model.CalculationMessage {
	if state.Contributions == nil {
		return missing(state, "contributions")
	}
	return nil
}

func (h *NetStep) Apply(state *State) []model.CalculationMessage {
	g, ct := state.Gross, state.Contributions
	state.Net = net.Build(state.Context, net.Input{
		Gross:            g.Total,
		TotalEmployee:    ct.TotalEmployee,
		CSGNonDeductible: ct.CSGNonDeductible,
		EmployerMutuelle: ct.EmployerMutuelle,
		OvertimeGross:    g.OvertimeGross,
		BenefitsInKind:   g.BenefitsInKind,
		UntaxedBonuses:   g.UntaxedBonuses,
	})
	return nil
}

type PayslipStep struct{}

func (h *PayslipStep) Validate(state *State) []model.CalculationMessage {
	if state.Net == nil || state.Cumuls == nil {
		return missing(state, "net and cumuls")
	}
	return nil
}

func (h *PayslipStep) Apply(state *State) []model.CalculationMessage {
	state.Payslip = payslip.Assemble(payslip.Input{
		Context:       state.Context,
		Period:        state.Period,
		Gross:         state.Gross,
		Contributions: state.Contributions,
		Reduction:     state.Reduction,
		Net:           state.Net,
		YearToDate:    state.Cumuls.Totals,
		Warnings:      state.Warnings,
	})
	return nil
}
