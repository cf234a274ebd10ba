// Package steps holds the ordered calculation steps of one payslip.
package steps

import (
	"errors"

	"payroll-engine/internal/contributions"
	"payroll-engine/internal/gross"
	"payroll-engine/internal/model"
	"payroll-engine/internal/model/payerr"
	"payroll-engine/internal/net"
	"payroll-engine/internal/paycontext"
	"payroll-engine/internal/period"
	"payroll-engine/internal/reduction"
	"payroll-engine/internal/sources"
)

// Step validates its prerequisites on the state, then applies its part of
// the computation. A CRITICAL message from either stops the run.
type Step interface {
	Validate(state *State) []model.CalculationMessage
	Apply(state *State) []model.CalculationMessage
}

// State is filled step by step during one computation.
type State struct {
	Bundle        *sources.Bundle
	Context       *paycontext.Context
	Events        []model.PayrollEvent
	Period        period.Period
	Gross         *gross.Result
	Contributions *contributions.Result
	Reduction     *reduction.Result
	Net           *net.Result
	Cumuls        *model.CumulsFile
	Payslip       *model.Payslip

	// Warnings seen so far, echoed in the payslip meta.
	Warnings []model.CalculationMessage
	// Err is the failure behind the first CRITICAL message.
	Err *payerr.Error
}

// Fail records err as the run's failure and returns its CRITICAL message.
func (s *State) Fail(err error) []model.CalculationMessage {
	var pe *payerr.Error
	if !errors.As(err, &pe) {
		pe = payerr.Wrap(err, payerr.KindInternal, "unexpected failure")
	}
	s.Err = pe
	return []model.CalculationMessage{model.Critical(string(pe.Kind), pe.Error())}
}

func missing(s *State, what string) []model.CalculationMessage {
	return s.Fail(payerr.New(payerr.KindInternal, what+" not computed"))
}
