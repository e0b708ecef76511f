package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/compiler"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/registry"
	"github.com/ezz-ae/entrestate-engine/pkg/services"
	"github.com/ezz-ae/entrestate-engine/pkg/tablespec"
)

func newTestTableSpecService(t *testing.T) services.TableSpecService {
	t.Helper()
	reg := registry.MustLoad()
	logger := zap.NewNop()
	base := compiler.New(reg, logger)
	return services.NewTableSpecService(
		base,
		compiler.NewAssisted(base, nil, time.Second, logger),
		tablespec.NewValidator(reg),
		tablespec.NewEnforcer(reg),
		services.NewStaticEntitlements(),
		logger,
	)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestTableSpecHandler_Compile(t *testing.T) {
	h := NewTableSpecHandler(newTestTableSpecService(t), zap.NewNop())

	rec := postJSON(t, h.Compile, CompileRequest{
		Intent: "Find 2BR in JVC under 2m AED",
		Tier:   models.TierPro,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.CompilationResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, models.SourceRuleBased, result.Source)
	assert.Equal(t, models.GrainAsset, result.Spec.RowGrain)
	assert.Contains(t, result.Spec.Scope.Areas, "JVC")
}

func TestTableSpecHandler_CompileWithLLMDisabled(t *testing.T) {
	h := NewTableSpecHandler(newTestTableSpecService(t), zap.NewNop())

	rec := postJSON(t, h.Compile, CompileRequest{
		Intent: "Find 2BR in JVC under 2m AED",
		Tier:   models.TierPro,
		UseLLM: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.CompilationResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Contains(t, result.Warnings, models.WarnLLMDisabled)
}

func TestTableSpecHandler_CompileEmptyInput(t *testing.T) {
	h := NewTableSpecHandler(newTestTableSpecService(t), zap.NewNop())

	rec := postJSON(t, h.Compile, CompileRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTableSpecHandler_CompileUnknownGoldenPath(t *testing.T) {
	h := NewTableSpecHandler(newTestTableSpecService(t), zap.NewNop())

	rec := postJSON(t, h.Compile, CompileRequest{GoldenPath: "no_such_path"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "unknown_golden_path", body["error"])
}

func TestTableSpecHandler_Validate(t *testing.T) {
	h := NewTableSpecHandler(newTestTableSpecService(t), zap.NewNop())

	rec := postJSON(t, h.Validate, ValidateRequest{Spec: models.TableSpec{
		RowGrain: models.GrainAsset,
		Signals:  []string{"not_allowed"},
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	var res ValidateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "signal_not_allowed")
}

func TestTableSpecHandler_EnforceStripsPremium(t *testing.T) {
	h := NewTableSpecHandler(newTestTableSpecService(t), zap.NewNop())

	rec := postJSON(t, h.Enforce, EnforceRequest{
		Spec: models.TableSpec{
			RowGrain: models.GrainAsset,
			Signals:  []string{"asset_id", "yield_net"},
		},
		Tier: models.TierFree,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res EnforceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, []string{"asset_id"}, res.Spec.Signals)
	assert.NotEmpty(t, res.Warnings)
}

func TestTableSpecHandler_EnforceEntitlementViolation(t *testing.T) {
	h := NewTableSpecHandler(newTestTableSpecService(t), zap.NewNop())

	// Every requested signal is premium: narrowing would leave zero.
	rec := postJSON(t, h.Enforce, EnforceRequest{
		Spec: models.TableSpec{
			RowGrain: models.GrainAsset,
			Signals:  []string{"yield_net", "transaction_volume"},
		},
		Tier: models.TierFree,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "entitlement_violation", body["error"])
}

func TestTableSpecHandler_InvalidJSON(t *testing.T) {
	h := NewTableSpecHandler(newTestTableSpecService(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Compile(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
