package engine

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"payroll-engine/internal/jsonpatch"
	"payroll-engine/internal/model"
	"payroll-engine/internal/model/payerr"
	"payroll-engine/internal/sources"
	"payroll-engine/internal/steps"
)

// Compute runs every step over the bundle and returns the response
// envelope. Failures never escape as errors: they end up in the result with
// ok=false and no payslip.
func Compute(b *sources.Bundle) (resp *model.CalculationResponse) {
	start := time.Now()
	state := &steps.State{Bundle: b}

	var allMessages []model.CalculationMessage
	hasCritical := false

	record := func(msgs []model.CalculationMessage) {
		for _, m := range msgs {
			m.ID = len(allMessages)
			allMessages = append(allMessages, m)
			switch m.Level {
			case model.LevelCritical:
				hasCritical = true
			case model.LevelWarning:
				state.Warnings = append(state.Warnings, m)
			}
		}
	}

	defer func() {
		if r := recover(); r != nil {
			record(state.Fail(payerr.Newf(payerr.KindInternal, "panic: %v", r)))
			resp = respond(b, state, allMessages, start)
		}
	}()

	for _, name := range steps.Names() {
		step, _ := steps.Get(name)

		record(step.Validate(state))
		if hasCritical {
			break
		}
		record(step.Apply(state))
		if hasCritical {
			break
		}
	}

	if hasCritical && state.Err == nil {
		state.Err = payerr.New(payerr.KindInternal, "calculation stopped by a critical message")
	}
	return respond(b, state, allMessages, start)
}

// Run loads the employee's documents from src and computes month ym.
func Run(src sources.Source, employee string, ym model.YearMonth) *model.CalculationResponse {
	start := time.Now()
	b, err := src.Load(employee, ym)
	if err != nil {
		state := &steps.State{}
		msgs := state.Fail(err)
		return respond(&sources.Bundle{Employee: employee, Year: ym.Year, Month: ym.Month}, state, msgs, start)
	}
	return Compute(b)
}

func respond(b *sources.Bundle, state *steps.State, messages []model.CalculationMessage, start time.Time) *model.CalculationResponse {
	elapsed := time.Since(start)
	now := time.Now().UTC()

	if messages == nil {
		messages = []model.CalculationMessage{}
	}

	resp := &model.CalculationResponse{
		CalculationMetadata: model.CalculationMetadata{
			CalculationID:          uuid.New().String(),
			CalculationStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
			CalculationCompletedAt: now.Format(time.RFC3339),
			CalculationDurationMs:  elapsed.Milliseconds(),
			CalculationOutcome:     model.OutcomeSuccess,
		},
		CalculationResult: model.CalculationResult{Messages: messages},
	}
	if b != nil {
		resp.CalculationMetadata.Employee = b.Employee
		resp.CalculationMetadata.Year = b.Year
		resp.CalculationMetadata.Month = b.Month
	}

	log := zap.L().Named("engine").With(
		zap.String("calculation_id", resp.CalculationMetadata.CalculationID),
		zap.String("employee", resp.CalculationMetadata.Employee),
		zap.Int("year", resp.CalculationMetadata.Year),
		zap.Int("month", resp.CalculationMetadata.Month),
	)
	for _, w := range state.Warnings {
		log.Warn("calculation warning", zap.String("code", w.Code), zap.String("message", w.Message))
	}

	if state.Err != nil {
		resp.CalculationMetadata.CalculationOutcome = model.OutcomeFailure
		resp.CalculationResult.Error = &model.Failure{
			Kind:    string(state.Err.Kind),
			Message: state.Err.Message,
			Field:   state.Err.Field,
		}
		log.Info("payslip failed",
			zap.String("kind", string(state.Err.Kind)),
			zap.String("message", state.Err.Message),
			zap.Int64("duration_ms", elapsed.Milliseconds()))
		return resp
	}

	resp.CalculationResult.OK = true
	resp.CalculationResult.Payslip = state.Payslip
	resp.CalculationResult.Cumuls = state.Cumuls
	if state.Context != nil && state.Cumuls != nil {
		patch, err := jsonpatch.Between(state.Context.Cumuls(), state.Cumuls.Totals)
		if err != nil {
			log.Warn("cumuls patch failed", zap.Error(err))
		} else {
			resp.CalculationResult.CumulsPatch = patch
		}
	}

	log.Info("payslip computed",
		zap.Float64("gross", state.Payslip.Gross.Total),
		zap.Float64("net_to_pay", state.Payslip.NetToPay),
		zap.Int("warnings", len(state.Warnings)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
		zap.String("outcome", resp.CalculationMetadata.CalculationOutcome))
	return resp
}
