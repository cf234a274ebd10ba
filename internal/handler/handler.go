// Package handler exposes the payslip engine over HTTP.
package handler

import (
	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/engine"
	"payroll-engine/internal/model"
	"payroll-engine/internal/sources"
)

const (
	PathPayslips = "/payslips"
	PathHealth   = "/health"
)

type Handler struct {
	tables *baremes.Registry
	log    *zap.Logger
}

func New(tables *baremes.Registry) *Handler {
	return &Handler{tables: tables, log: zap.L().Named("handler")}
}

// Serve routes requests; it is a fasthttp.RequestHandler.
func (h *Handler) Serve(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case PathPayslips:
		h.handlePayslip(ctx)
	case PathHealth:
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"ok"}`)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

func (h *Handler) handlePayslip(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.CalculationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(ctx, fasthttp.StatusBadRequest, "mois must be between 1 and 12")
		return
	}

	src := &requestSource{req: &req, tables: h.tables}
	resp := engine.Run(src, req.Employee, model.YearMonth{Year: req.Year, Month: req.Month})

	h.log.Debug("payslip request",
		zap.String("employee", req.Employee),
		zap.String("outcome", resp.CalculationMetadata.CalculationOutcome))

	body, err := json.Marshal(resp)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

// requestSource serves the documents carried by one request body, with
// the rule tables read from the registry.
type requestSource struct {
	req    *model.CalculationRequest
	tables *baremes.Registry
}

func (s *requestSource) Load(employee string, ym model.YearMonth) (*sources.Bundle, error) {
	tables, err := s.tables.Load()
	if err != nil {
		return nil, err
	}
	return sources.FromRequest(s.req, tables)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(model.ErrorResponse{
		Status:  status,
		Message: message,
	})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
