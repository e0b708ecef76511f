package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/adapters/inventory"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/timetable"
)

func newTestTimeTableService() *timetable.Service {
	src := inventory.NewMemorySource(map[string][]models.Row{
		inventory.RelationAssets: {
			{"asset_id": "A-001", "area": "JVC", "price_aed": float64(1_500_000), "beds": int64(2)},
			{"asset_id": "A-002", "area": "JVC", "price_aed": float64(1_900_000), "beds": int64(2)},
		},
	})
	logger := zap.NewNop()
	return timetable.NewService(timetable.NewMaterializer(src, time.Second, logger), nil, time.Minute, logger)
}

func materializeRequest() MaterializeRequest {
	return MaterializeRequest{
		Spec: models.TableSpec{
			RowGrain: models.GrainAsset,
			Scope:    models.Scope{Areas: []string{"JVC"}},
			Signals:  []string{"asset_id", "price_aed", "beds"},
		},
		Tier: models.TierPro,
	}
}

func TestTimeTableHandler_Materialize(t *testing.T) {
	h := NewTimeTableHandler(newTestTableSpecService(t), newTestTimeTableService(), zap.NewNop())

	rec := postJSON(t, h.Materialize, materializeRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	var table models.TimeTable
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&table))
	assert.Len(t, table.Rows, 2)
	assert.NotEmpty(t, table.Hash)
	assert.Equal(t, 2, table.Metadata.RowCount)
	// Enforcement attached the tier ceiling before materialization.
	assert.Equal(t, models.ProEntitlements().RowCeiling, table.Spec.RowCeiling)
}

func TestTimeTableHandler_Preview(t *testing.T) {
	h := NewTimeTableHandler(newTestTableSpecService(t), newTestTimeTableService(), zap.NewNop())

	req := materializeRequest()
	req.Preview = true
	req.PreviewLimit = 1

	rec := postJSON(t, h.Materialize, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var preview models.Preview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Len(t, preview.Rows, 1)
	assert.Equal(t, 2, preview.Metadata.RowCount)
}

func TestTimeTableHandler_RejectsInvalidSpec(t *testing.T) {
	h := NewTimeTableHandler(newTestTableSpecService(t), newTestTimeTableService(), zap.NewNop())

	req := materializeRequest()
	req.Spec.Signals = []string{"not_allowed"}

	rec := postJSON(t, h.Materialize, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
