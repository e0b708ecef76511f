package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/adapters/inventory"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/scoring"
	"github.com/ezz-ae/entrestate-engine/pkg/timetable"
)

func newRankingService(t *testing.T) RankingService {
	t.Helper()
	src := inventory.NewMemorySource(map[string][]models.Row{
		inventory.RelationAssets: {
			{"asset_id": "A-001", "area": "JVC", "price_aed": float64(1_700_000), "beds": int64(2),
				"yield_net": 7.0, "safety_band": "B", "liquidity_band": "B", "delivery_year": int64(2028)},
			{"asset_id": "A-002", "area": "JVC", "price_aed": float64(2_900_000), "beds": int64(3),
				"yield_net": 4.5, "safety_band": "A", "liquidity_band": "A", "delivery_year": int64(2027)},
		},
	})
	logger := zap.NewNop()
	materializer := timetable.NewMaterializer(src, time.Second, logger)
	timetables := timetable.NewService(materializer, nil, time.Minute, logger)
	return NewRankingService(timetables, scoring.NewScorer(0.65, 2026), logger)
}

func rankSpec() models.TableSpec {
	return models.TableSpec{
		RowGrain:   models.GrainAsset,
		Scope:      models.Scope{Areas: []string{"JVC"}},
		Signals:    []string{"asset_id", "area", "price_aed", "beds", "safety_band", "liquidity_band", "delivery_year"},
		RowCeiling: 50,
	}
}

func TestRankingService_Rank(t *testing.T) {
	svc := newRankingService(t)
	beds := 2
	profile := models.InvestorProfile{
		RiskAppetite:   models.RiskBalanced,
		Horizon:        models.HorizonMedium,
		PreferredAreas: []string{"JVC"},
		BudgetAED:      1_800_000,
		Beds:           &beds,
	}

	result, err := svc.Rank(context.Background(), rankSpec(), profile, nil)
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.GreaterOrEqual(t, result.Rows[0].TotalScore, result.Rows[1].TotalScore)
	assert.NotEmpty(t, result.Metadata.Hash)
	assert.Equal(t, 2, result.Metadata.RowCount)
}

func TestRankingService_EmptyTableRanksEmpty(t *testing.T) {
	svc := newRankingService(t)

	spec := rankSpec()
	spec.Scope.Areas = []string{"Meydan"}
	result, err := svc.Rank(context.Background(), spec, models.InvestorProfile{}, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.NotEmpty(t, result.Metadata.Hash)
}

type fakeProberRow struct {
	value *string
	err   error
}

func (r fakeProberRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(**string)) = r.value
	return nil
}

type fakeProber struct {
	existing map[string]bool
}

func (p fakeProber) QueryRow(_ context.Context, _ string, args ...any) interface{ Scan(dest ...any) error } {
	name := args[0].(string)
	if p.existing[name] {
		return fakeProberRow{value: &name}
	}
	return fakeProberRow{value: nil}
}

func TestResolveRankingView(t *testing.T) {
	logger := zap.NewNop()

	view, err := resolveRankingView(context.Background(),
		fakeProber{existing: map[string]bool{RankingViewAutomation: true, RankingViewAgent: true}}, logger)
	require.NoError(t, err)
	assert.Equal(t, RankingViewAutomation, view)

	view, err = resolveRankingView(context.Background(),
		fakeProber{existing: map[string]bool{RankingViewAgent: true}}, logger)
	require.NoError(t, err)
	assert.Equal(t, RankingViewAgent, view)

	_, err = resolveRankingView(context.Background(), fakeProber{}, logger)
	assert.ErrorContains(t, err, "no ranked inventory view")
}

func TestRoutedRankingSQLSharesBlend(t *testing.T) {
	svc := &routedRankingService{view: RankingViewAutomation, marketBlend: 0.65, logger: zap.NewNop()}

	sql, args := svc.buildSQL("JVC", 10)
	assert.Contains(t, sql, "0.6500 * market_score")
	assert.Contains(t, sql, "0.3500 * match_score")
	assert.Contains(t, sql, `FROM "ranked_inventory_automation" WHERE area = $2`)
	assert.Equal(t, []any{10, "JVC"}, args)

	sql, args = svc.buildSQL("", 5)
	assert.NotContains(t, sql, "WHERE")
	assert.Equal(t, []any{5}, args)
}
