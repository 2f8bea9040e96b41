package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"credit_valuation/pkg/core/logger"
	"credit_valuation/pkg/core/metrics"
	"credit_valuation/pkg/core/report"
	"credit_valuation/pkg/core/store"
	"credit_valuation/pkg/core/utils"
	"credit_valuation/pkg/core/valuation"
)

const maxBodyBytes = 1 << 20

// Store is the persistence collaborator for calculated valuations.
type Store interface {
	Save(ctx context.Context, rec *store.ValuationRecord) error
	Get(ctx context.Context, id string) (*store.ValuationRecord, error)
	ListByCompany(ctx context.Context, companyID string) ([]*store.ValuationRecord, error)
	MarkCompleted(ctx context.Context, id string) (*store.ValuationRecord, error)
}

// Handler holds dependencies for valuation endpoints
type Handler struct {
	Store       Store
	Metrics     *metrics.Metrics
	Log         *zap.Logger
	AllowOrigin string
}

// NewHandler creates a new valuation handler. m may be nil.
func NewHandler(s Store, m *metrics.Metrics, log *zap.Logger, allowOrigin string) *Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return &Handler{Store: s, Metrics: m, Log: logger.OrNop(log), AllowOrigin: allowOrigin}
}

// Register mounts the valuation endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/valuation/dcf", h.HandleDCF)
	mux.HandleFunc("/api/valuation/multiples", h.HandleMultiples)
	mux.HandleFunc("/api/valuation/get", h.HandleGet)
	mux.HandleFunc("/api/valuation/list", h.HandleList)
	mux.HandleFunc("/api/valuation/complete", h.HandleComplete)
	mux.HandleFunc("/api/valuation/report", h.HandleReport)
	mux.HandleFunc("/api/valuation/summary", h.HandleSummary)
}

type DCFRequest struct {
	CompanyID string                `json:"company_id"`
	Save      bool                  `json:"save"`
	Input     valuation.RawDCFInput `json:"input"`
}

type MultiplesRequest struct {
	CompanyID string                      `json:"company_id"`
	Save      bool                        `json:"save"`
	Input     valuation.RawMultiplesInput `json:"input"`
}

type CalculationResponse struct {
	ID     string       `json:"id,omitempty"`
	Status store.Status `json:"status,omitempty"`
	Result interface{}  `json:"result"`
}

type ErrorResponse struct {
	Error       string                 `json:"error"`
	Violations  []valuation.Violation  `json:"violations,omitempty"`
	DomainError *valuation.DomainError `json:"domain_error,omitempty"`
}

func (h *Handler) HandleDCF(w http.ResponseWriter, r *http.Request) {
	if !h.preflight(w, r, http.MethodPost) {
		return
	}

	var req DCFRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.Save && req.CompanyID == "" {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "company_id is required to save a valuation"})
		return
	}

	started := time.Now()
	res, err := valuation.CalculateDCF(req.Input)
	h.observe(valuation.MethodDCF, err, started)
	if err != nil {
		h.writeCalcError(w, valuation.MethodDCF, req.CompanyID, err)
		return
	}

	h.respond(w, r, req.CompanyID, valuation.MethodDCF, req.Save, req.Input, res)
}

func (h *Handler) HandleMultiples(w http.ResponseWriter, r *http.Request) {
	if !h.preflight(w, r, http.MethodPost) {
		return
	}

	var req MultiplesRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.Save && req.CompanyID == "" {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "company_id is required to save a valuation"})
		return
	}

	started := time.Now()
	res, err := valuation.CalculateMultiples(req.Input)
	h.observe(valuation.MethodMultiples, err, started)
	if err != nil {
		h.writeCalcError(w, valuation.MethodMultiples, req.CompanyID, err)
		return
	}

	h.respond(w, r, req.CompanyID, valuation.MethodMultiples, req.Save, req.Input, res)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !h.preflight(w, r, http.MethodGet) {
		return
	}
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !h.preflight(w, r, http.MethodGet) {
		return
	}
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "company_id is required"})
		return
	}
	recs, err := h.Store.ListByCompany(r.Context(), companyID)
	if err != nil {
		h.Log.Error("list valuations failed", zap.String("company_id", companyID), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list valuations"})
		return
	}
	h.writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	if !h.preflight(w, r, http.MethodPost) {
		return
	}
	id := r.URL.Query().Get("id")
	rec, err := h.Store.MarkCompleted(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("valuation %q not found", id)})
		return
	}
	if err != nil {
		h.Log.Error("complete valuation failed", zap.String("valuation_id", id), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to complete valuation"})
		return
	}
	h.Log.Info("valuation completed", zap.String("valuation_id", id), zap.String("company_id", rec.CompanyID))
	h.writeJSON(w, http.StatusOK, rec)
}

// HandleReport renders a stored valuation as Markdown (format=md) or HTML (default).
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !h.preflight(w, r, http.MethodGet) {
		return
	}
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}

	title := "Valuation report: " + rec.CompanyID
	var mdText string
	switch rec.Method {
	case valuation.MethodDCF:
		var res valuation.DCFResult
		if err := json.Unmarshal(rec.Result, &res); err != nil {
			h.writeCorrupt(w, rec.ID, err)
			return
		}
		mdText = report.DCFMarkdown(title, &res)
	case valuation.MethodMultiples:
		var res valuation.MultiplesResult
		if err := json.Unmarshal(rec.Result, &res); err != nil {
			h.writeCorrupt(w, rec.ID, err)
			return
		}
		mdText = report.MultiplesMarkdown(title, &res)
	default:
		h.writeCorrupt(w, rec.ID, fmt.Errorf("unknown method %q", rec.Method))
		return
	}

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, mdText)
		return
	}

	html, err := report.HTML(mdText)
	if err != nil {
		h.Log.Error("render report failed", zap.String("valuation_id", rec.ID), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to render report"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

// HandleSummary combines the latest stored DCF and multiples results of a company.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if !h.preflight(w, r, http.MethodGet) {
		return
	}
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "company_id is required"})
		return
	}
	recs, err := h.Store.ListByCompany(r.Context(), companyID)
	if err != nil {
		h.Log.Error("list valuations failed", zap.String("company_id", companyID), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list valuations"})
		return
	}

	// Records are oldest first, so later ones win.
	var dcf *valuation.DCFResult
	var mult *valuation.MultiplesResult
	for _, rec := range recs {
		switch rec.Method {
		case valuation.MethodDCF:
			var res valuation.DCFResult
			if err := json.Unmarshal(rec.Result, &res); err != nil {
				h.Log.Warn("skipping unreadable valuation", zap.String("valuation_id", rec.ID), zap.Error(err))
				continue
			}
			dcf = &res
		case valuation.MethodMultiples:
			var res valuation.MultiplesResult
			if err := json.Unmarshal(rec.Result, &res); err != nil {
				h.Log.Warn("skipping unreadable valuation", zap.String("valuation_id", rec.ID), zap.Error(err))
				continue
			}
			mult = &res
		}
	}
	h.writeJSON(w, http.StatusOK, valuation.Summarize(dcf, mult))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, companyID, method string, save bool, input, result interface{}) {
	resp := CalculationResponse{Result: result}

	if save {
		rec, err := newRecord(companyID, method, input, result)
		if err == nil {
			err = h.Store.Save(r.Context(), rec)
		}
		if err != nil {
			h.Log.Error("save valuation failed", zap.String("method", method), zap.String("company_id", companyID), zap.Error(err))
			h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to save valuation"})
			return
		}
		resp.ID, resp.Status = rec.ID, rec.Status
		h.Log.Info("valuation saved",
			zap.String("method", method),
			zap.String("company_id", companyID),
			zap.String("valuation_id", rec.ID))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func newRecord(companyID, method string, input, result interface{}) (*store.ValuationRecord, error) {
	in, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal input: %w", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &store.ValuationRecord{
		CompanyID: companyID,
		Method:    method,
		Status:    store.StatusDraft,
		Input:     in,
		Result:    out,
	}, nil
}

func (h *Handler) loadRecord(w http.ResponseWriter, r *http.Request) (*store.ValuationRecord, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "id is required"})
		return nil, false
	}
	rec, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("valuation %q not found", id)})
		return nil, false
	}
	if err != nil {
		h.Log.Error("load valuation failed", zap.String("valuation_id", id), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to load valuation"})
		return nil, false
	}
	return rec, true
}

func (h *Handler) writeCalcError(w http.ResponseWriter, method, companyID string, err error) {
	var vErr *valuation.ValidationError
	var dErr *valuation.DomainError
	switch {
	case errors.As(err, &vErr):
		h.Log.Info("valuation input rejected",
			zap.String("method", method),
			zap.String("company_id", companyID),
			zap.Int("violations", len(vErr.Violations)))
		h.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid input", Violations: vErr.Violations})
	case errors.As(err, &dErr):
		h.Log.Info("valuation undefined for inputs",
			zap.String("method", method),
			zap.String("company_id", companyID),
			zap.String("scope", dErr.Scope))
		h.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: dErr.Error(), DomainError: dErr})
	default:
		h.Log.Error("valuation failed", zap.String("method", method), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "valuation failed"})
	}
}

func (h *Handler) writeCorrupt(w http.ResponseWriter, id string, err error) {
	h.Log.Error("stored valuation unreadable", zap.String("valuation_id", id), zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "stored valuation is unreadable"})
}

func (h *Handler) observe(method string, err error, started time.Time) {
	outcome := metrics.OutcomeOK
	var vErr *valuation.ValidationError
	switch {
	case errors.As(err, &vErr):
		outcome = metrics.OutcomeValidationError
	case errors.Is(err, valuation.ErrDomain):
		outcome = metrics.OutcomeDomainError
	}
	h.Metrics.Observe(method, outcome, started)
}

// preflight sets CORS headers, answers OPTIONS and rejects other methods.
func (h *Handler) preflight(w http.ResponseWriter, r *http.Request, method string) bool {
	w.Header().Set("Access-Control-Allow-Origin", h.AllowOrigin)
	w.Header().Set("Access-Control-Allow-Methods", method+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != method {
		h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return false
	}
	return true
}

func decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return utils.DecodeLenient(body, dst)
}

// writeJSON encodes before writing the status so an unencodable value becomes a 500.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		h.Log.Error("encode response failed", zap.Int("status", status), zap.Error(err))
		body = []byte(`{"error":"failed to encode response"}`)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.Log.Debug("write response failed", zap.Error(err))
	}
}
