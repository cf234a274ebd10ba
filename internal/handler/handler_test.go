package handler

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/fixtures"
	"payroll-engine/internal/model"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, fixtures.WriteTables(dir))
	return New(baremes.NewRegistry(dir))
}

func do(h *Handler, method, path string, body []byte) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	ctx.Request.SetBody(body)
	h.Serve(&ctx)
	return &ctx
}

func standardRequest() model.CalculationRequest {
	ym := model.YearMonth{Year: 2025, Month: 3}
	b := fixtures.Bundle(ym, fixtures.Contract(35, 2000), fixtures.Company(10))
	return model.CalculationRequest{
		Employee:  b.Employee,
		Year:      b.Year,
		Month:     b.Month,
		Contract:  b.Contract,
		Company:   b.Company,
		Cumuls:    &model.CumulsFile{Period: model.CumulsPeriod{Year: 2025, LastMonth: 2}},
		Calendars: b.Calendars,
		Schedules: b.Schedules,
	}
}

func TestPayslipRequest(t *testing.T) {
	body, err := json.Marshal(standardRequest())
	require.NoError(t, err)

	ctx := do(newHandler(t), fasthttp.MethodPost, PathPayslips, body)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp model.CalculationResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, model.OutcomeSuccess, resp.CalculationMetadata.CalculationOutcome)
	require.NotNil(t, resp.CalculationResult.Payslip)
	assert.Equal(t, 1565.02, resp.CalculationResult.Payslip.NetToPay)
}

func TestPayslipRequestWithoutContract(t *testing.T) {
	req := standardRequest()
	req.Contract = nil
	body, err := json.Marshal(req)
	require.NoError(t, err)

	ctx := do(newHandler(t), fasthttp.MethodPost, PathPayslips, body)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp model.CalculationResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, model.OutcomeFailure, resp.CalculationMetadata.CalculationOutcome)
	require.NotNil(t, resp.CalculationResult.Error)
	assert.Equal(t, "CONFIG_MISSING", resp.CalculationResult.Error.Kind)
	assert.Nil(t, resp.CalculationResult.Payslip)
}

func TestRejectedRequests(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "wrong method", method: fasthttp.MethodGet, path: PathPayslips, status: fasthttp.StatusMethodNotAllowed},
		{name: "malformed body", method: fasthttp.MethodPost, path: PathPayslips, body: "{", status: fasthttp.StatusBadRequest},
		{name: "month out of range", method: fasthttp.MethodPost, path: PathPayslips, body: `{"mois":13}`, status: fasthttp.StatusBadRequest},
		{name: "unknown path", method: fasthttp.MethodPost, path: "/nope", status: fasthttp.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := do(h, tt.method, tt.path, []byte(tt.body))

			assert.Equal(t, tt.status, ctx.Response.StatusCode())
			var e model.ErrorResponse
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &e))
			assert.Equal(t, tt.status, e.Status)
		})
	}
}

func TestHealth(t *testing.T) {
	ctx := do(newHandler(t), fasthttp.MethodGet, PathHealth, nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(ctx.Response.Body()))
}
