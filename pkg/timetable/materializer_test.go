package timetable

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/adapters/inventory"
	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

func jvcSpec() models.TableSpec {
	return models.TableSpec{
		Intent:   "Find 2BR in JVC under 2m AED",
		RowGrain: models.GrainAsset,
		Scope:    models.Scope{Areas: []string{"JVC"}},
		Signals:  []string{"asset_id", "price_aed", "beds"},
		Filters: []models.Filter{
			{Field: "price_aed", Op: models.OpLte, Value: int64(2_000_000)},
			{Field: "beds", Op: models.OpEq, Value: 2},
		},
		RowCeiling: 500,
	}
}

func jvcSource() inventory.Source {
	return inventory.NewMemorySource(map[string][]models.Row{
		inventory.RelationAssets: {
			{"asset_id": "A-001", "area": "JVC", "price_aed": float64(1_200_000), "beds": int64(2)},
			{"asset_id": "A-002", "area": "JVC", "price_aed": float64(1_850_000), "beds": int64(2)},
			{"asset_id": "A-003", "area": "Dubai Marina", "price_aed": float64(1_700_000), "beds": int64(2)},
			{"asset_id": "A-004", "area": "JVC", "price_aed": float64(1_500_000), "beds": int64(1)},
		},
	})
}

func newMaterializer(src inventory.Source) *Materializer {
	return NewMaterializer(src, time.Second, zap.NewNop())
}

func TestMaterialize(t *testing.T) {
	m := newMaterializer(jvcSource())

	table, err := m.Materialize(context.Background(), jvcSpec())
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "A-001", table.Rows[0].String("asset_id"))
	assert.Equal(t, "A-002", table.Rows[1].String("asset_id"))
	assert.NotEmpty(t, table.Hash)
	assert.Equal(t, table.Hash, table.Metadata.Hash)
	assert.Equal(t, 2, table.Metadata.RowCount)
	assert.Equal(t, models.GrainAsset, table.Metadata.RowGrain)
	assert.False(t, table.Metadata.CreatedAt.IsZero())
}

func TestMaterialize_HashIsReproducible(t *testing.T) {
	m := newMaterializer(jvcSource())

	first, err := m.Materialize(context.Background(), jvcSpec())
	require.NoError(t, err)
	second, err := m.Materialize(context.Background(), jvcSpec())
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
	assert.NotEqual(t, first.Metadata.ID, second.Metadata.ID)
}

func TestMaterialize_HashChangesWithSpec(t *testing.T) {
	m := newMaterializer(jvcSource())

	base, err := m.Materialize(context.Background(), jvcSpec())
	require.NoError(t, err)

	widened := jvcSpec()
	widened.Filters = widened.Filters[:1]
	other, err := m.Materialize(context.Background(), widened)
	require.NoError(t, err)

	assert.NotEqual(t, base.Hash, other.Hash)
}

func TestMaterialize_EmptyResultIsValid(t *testing.T) {
	m := newMaterializer(jvcSource())

	spec := jvcSpec()
	spec.Filters = []models.Filter{{Field: "price_aed", Op: models.OpLte, Value: int64(1)}}
	table, err := m.Materialize(context.Background(), spec)
	require.NoError(t, err)

	assert.Empty(t, table.Rows)
	assert.NotEmpty(t, table.Hash)
	assert.Equal(t, 0, table.Metadata.RowCount)
}

func TestMaterialize_RowCeilingApplied(t *testing.T) {
	m := newMaterializer(jvcSource())

	spec := jvcSpec()
	spec.RowCeiling = 1
	table, err := m.Materialize(context.Background(), spec)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

type failingSource struct{}

func (failingSource) Query(context.Context, inventory.Query) ([]models.Row, error) {
	return nil, errors.New("connection reset")
}
func (failingSource) Close() error { return nil }

func TestMaterialize_SourceFailureIsUnavailable(t *testing.T) {
	m := newMaterializer(failingSource{})

	_, err := m.Materialize(context.Background(), jvcSpec())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestPreviewOf(t *testing.T) {
	m := newMaterializer(jvcSource())
	table, err := m.Materialize(context.Background(), jvcSpec())
	require.NoError(t, err)

	preview := PreviewOf(table, 1)
	assert.Len(t, preview.Rows, 1)
	// Metadata still describes the full set.
	assert.Equal(t, 2, preview.Metadata.RowCount)
	assert.Equal(t, table.Hash, preview.Metadata.Hash)

	clamped := PreviewOf(table, MaxPreviewRows+50)
	assert.Len(t, clamped.Rows, 2)

	defaulted := PreviewOf(table, 0)
	assert.Len(t, defaulted.Rows, 2)
}
