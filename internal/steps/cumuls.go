package steps

import (
	"payroll-engine/internal/gross"
	"payroll-engine/internal/model"
	"payroll-engine/internal/money"
	"payroll-engine/internal/net"
	"payroll-engine/internal/reduction"
)

type CumulsStep struct{}

func (h *CumulsStep) Validate(state *State) []model.CalculationMessage {
	if state.Net == nil || state.Reduction == nil {
		return missing(state, "net and reduction")
	}
	return nil
}

func (h *CumulsStep) Apply(state *State) []model.CalculationMessage {
	c := state.Context
	state.Cumuls = &model.CumulsFile{
		Period: model.CumulsPeriod{Year: c.Month.Year, LastMonth: c.Month.Month},
		Totals: NextCumuls(c.Cumuls(), state.Gross, state.Reduction, state.Net),
	}
	return nil
}

// NextCumuls adds month M to the opening year-to-date totals. The general
// reduction is replaced by the regularized year total, stored negative.
func NextCumuls(prior model.Cumuls, g *gross.Result, r *reduction.Result, n *net.Result) model.Cumuls {
	return model.Cumuls{
		GrossTotal:       money.Sum(prior.GrossTotal, g.Total),
		PaidHours:        money.RoundTo(prior.PaidHours+g.MonthPaidHours(), 2),
		GeneralReduction: money.Round2(-r.TotalDue),
		NetTaxable:       money.Sum(prior.NetTaxable, n.Synthesis.NetTaxable),
		WithholdingTax:   money.Sum(prior.WithholdingTax, n.Synthesis.WithholdingTax),
		OvertimeHours:    money.RoundTo(prior.OvertimeHours+g.OvertimeHours, 2),
		ReferenceGross:   prior.ReferenceGross,
	}
}
