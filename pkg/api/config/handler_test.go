package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreConfig "credit_valuation/pkg/core/config"
)

func TestHandleConfig(t *testing.T) {
	cfg := &coreConfig.Config{}
	cfg.Server.AllowOrigin = "https://app.example"
	cfg.Storage.DatabaseURL = "postgres://localhost/valuations"

	rec := httptest.NewRecorder()
	NewHandler(cfg).HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "postgres", resp.Storage)
	assert.Equal(t, []string{"dcf", "multiples"}, resp.Methods)
	assert.Equal(t, 5, resp.DefaultProjectionYears)
	assert.Len(t, resp.SensitivityDeltas, 5)
	assert.NotContains(t, rec.Body.String(), "localhost", "database url must not leak")
}
