package model

import json "github.com/goccy/go-json"

type CalculationResponse struct {
	CalculationMetadata CalculationMetadata `json:"calculation_metadata"`
	CalculationResult   CalculationResult   `json:"calculation_result"`
}

type CalculationMetadata struct {
	CalculationID          string `json:"calculation_id"`
	Employee               string `json:"employee"`
	Year                   int    `json:"year"`
	Month                  int    `json:"month"`
	CalculationStartedAt   string `json:"calculation_started_at"`
	CalculationCompletedAt string `json:"calculation_completed_at"`
	CalculationDurationMs  int64  `json:"calculation_duration_ms"`
	CalculationOutcome     string `json:"calculation_outcome"`
}

type CalculationResult struct {
	OK          bool                 `json:"ok"`
	Error       *Failure             `json:"error,omitempty"`
	Messages    []CalculationMessage `json:"messages"`
	Payslip     *Payslip             `json:"payslip,omitempty"`
	Cumuls      *CumulsFile          `json:"cumuls,omitempty"`
	CumulsPatch json.RawMessage      `json:"cumuls_patch,omitempty"`
}

// Failure is the structured {kind, message} result of an aborted run.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)
