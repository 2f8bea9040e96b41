package config

import (
	"encoding/json"
	"net/http"

	coreConfig "credit_valuation/pkg/core/config"
	"credit_valuation/pkg/core/valuation"
)

// Response is the client-visible part of the service configuration.
type Response struct {
	Storage                string    `json:"storage"` // "postgres" or "file"
	Methods                []string  `json:"methods"`
	DefaultProjectionYears int       `json:"default_projection_years"`
	MinProjectionYears     int       `json:"min_projection_years"`
	MaxProjectionYears     int       `json:"max_projection_years"`
	MaxTerminalGrowthRate  float64   `json:"max_terminal_growth_rate"`
	SensitivityDeltas      []float64 `json:"sensitivity_deltas"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Cfg *coreConfig.Config
}

// NewHandler creates a new config handler
func NewHandler(cfg *coreConfig.Config) *Handler {
	return &Handler{Cfg: cfg}
}

// HandleConfig lets the front end build its valuation forms with the engine's limits.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", h.Cfg.Server.AllowOrigin)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	storage := "file"
	if h.Cfg.Storage.DatabaseURL != "" {
		storage = "postgres"
	}

	resp := Response{
		Storage:                storage,
		Methods:                []string{valuation.MethodDCF, valuation.MethodMultiples},
		DefaultProjectionYears: valuation.DefaultProjectionYears,
		MinProjectionYears:     valuation.MinProjectionYears,
		MaxProjectionYears:     valuation.MaxProjectionYears,
		MaxTerminalGrowthRate:  valuation.MaxTerminalGrowthRate,
		SensitivityDeltas:      valuation.SensitivityDeltas[:],
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
