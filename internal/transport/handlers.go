package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/groundworks/estimator/internal/engine"
	"github.com/groundworks/estimator/internal/intake"
	"github.com/groundworks/estimator/internal/observability"
	"github.com/groundworks/estimator/model"
)

// calculateRequest is the body of POST /v1/services/{serviceID}/calculate.
// Exactly one of Selection (manual form) or Extraction (text pipeline
// output) may be set; omitting both prices the project entirely on category
// defaults.
type calculateRequest struct {
	CompanyID  string                  `json:"companyId"`
	Quantity   float64                 `json:"quantity"`
	Selection  *intake.FormInput       `json:"selection,omitempty"`
	Extraction *intake.ExtractionInput `json:"extraction,omitempty"`
}

func (h *handlers) handleCalculate(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceID")

	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body: "+err.Error()))
		return
	}
	if req.CompanyID == "" {
		WriteError(w, model.NewBadRequestError("companyId is required"))
		return
	}
	if req.Selection != nil && req.Extraction != nil {
		WriteError(w, model.NewBadRequestError("provide either selection or extraction, not both"))
		return
	}

	ctx, span := observability.StartSpan(r.Context(), "estimate.calculate",
		observability.AttrServiceID.String(serviceID),
		observability.AttrCompanyID.String(req.CompanyID),
		observability.AttrQuantity.Float64(req.Quantity),
	)
	result, status, err := h.calculate(ctx, serviceID, req)
	observability.EndSpanWithError(span, err)
	h.recordCalculation(serviceID, status)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// calculate resolves the effective config, normalizes the selection, and runs
// the pricing engine. The returned status tags the calculation metric:
// "error" for infrastructure failures, "rejected" for input validation.
func (h *handlers) calculate(ctx context.Context, serviceID string, req calculateRequest) (model.CalculationResult, string, error) {
	cfg, err := h.cache.Resolve(ctx, serviceID, req.CompanyID)
	if err != nil {
		return model.CalculationResult{}, "error", err
	}

	var sel model.VariableSelection
	switch {
	case req.Extraction != nil:
		sel, err = intake.FromExtraction(cfg, *req.Extraction)
	case req.Selection != nil:
		sel, err = intake.FromForm(cfg, *req.Selection)
	default:
		sel, err = intake.FromForm(cfg, intake.FormInput{})
	}
	if err != nil {
		return model.CalculationResult{}, "rejected", err
	}

	start := time.Now()
	result, err := engine.Calculate(cfg, sel, req.Quantity)
	if err != nil {
		return model.CalculationResult{}, "rejected", err
	}
	if h.metrics != nil {
		h.metrics.CalculationDuration.WithLabelValues(serviceID).Observe(time.Since(start).Seconds())
	}
	return result, "ok", nil
}

func (h *handlers) recordCalculation(serviceID, status string) {
	if h.metrics != nil {
		h.metrics.CalculationsTotal.WithLabelValues(serviceID, status).Inc()
	}
}

func (h *handlers) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceID")
	companyID := r.URL.Query().Get("company")
	if companyID == "" {
		WriteError(w, model.NewBadRequestError("company query parameter is required"))
		return
	}

	cfg, err := h.configs.Get(r.Context(), serviceID, companyID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}

// saveConfigRequest is the body of PUT /v1/services/{serviceID}/config.
type saveConfigRequest struct {
	Config model.ServiceConfig `json:"config"`
	Actor  string              `json:"actor"`
}

func (h *handlers) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceID")
	companyID := r.URL.Query().Get("company")
	if companyID == "" {
		WriteError(w, model.NewBadRequestError("company query parameter is required"))
		return
	}

	var req saveConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body: "+err.Error()))
		return
	}

	actor := req.Actor
	if actor == "" {
		actor = SubjectFrom(r.Context())
	}

	if err := h.configs.Save(r.Context(), serviceID, companyID, req.Config, actor); err != nil {
		if h.metrics != nil {
			h.metrics.ConfigSavesTotal.WithLabelValues("error").Inc()
		}
		WriteError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ConfigSavesTotal.WithLabelValues("ok").Inc()
	}

	WriteJSON(w, http.StatusNoContent, nil)
}
