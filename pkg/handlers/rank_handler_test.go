package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/scoring"
	"github.com/ezz-ae/entrestate-engine/pkg/services"
)

func newTestRankHandler(t *testing.T) *RankHandler {
	t.Helper()
	logger := zap.NewNop()
	ranking := services.NewRankingService(newTestTimeTableService(), scoring.NewScorer(0.65, 2026), logger)
	return NewRankHandler(newTestTableSpecService(t), ranking, nil, logger)
}

func TestRankHandler_Rank(t *testing.T) {
	h := newTestRankHandler(t)

	beds := 2
	rec := postJSON(t, h.Rank, RankRequest{
		Spec: models.TableSpec{
			RowGrain: models.GrainAsset,
			Scope:    models.Scope{Areas: []string{"JVC"}},
			Signals:  []string{"asset_id", "area", "price_aed", "beds"},
		},
		Tier: models.TierPro,
		Profile: models.InvestorProfile{
			RiskAppetite:   models.RiskBalanced,
			PreferredAreas: []string{"JVC"},
			BudgetAED:      1_600_000,
			Beds:           &beds,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result services.RankingResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Len(t, result.Rows, 2)
	assert.GreaterOrEqual(t, result.Rows[0].TotalScore, result.Rows[1].TotalScore)
	assert.NotEmpty(t, result.Metadata.Hash)
}

func TestRankHandler_RejectsInvalidSpec(t *testing.T) {
	h := newTestRankHandler(t)

	rec := postJSON(t, h.Rank, RankRequest{
		Spec: models.TableSpec{RowGrain: "parcel", Signals: []string{"asset_id"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankHandler_TopRankedWithoutView(t *testing.T) {
	h := newTestRankHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/rank/top?limit=5", nil)
	rec := httptest.NewRecorder()
	h.TopRanked(rec, req)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
