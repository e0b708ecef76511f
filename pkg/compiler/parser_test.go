package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/registry"
)

func newParser(t *testing.T) *parser {
	t.Helper()
	return &parser{registry: registry.MustLoad()}
}

func TestParseIntent_CanonicalExample(t *testing.T) {
	p := newParser(t)

	spec := p.parseIntent("Find 2BR in JVC under 2m AED")

	assert.Equal(t, models.GrainAsset, spec.RowGrain)
	assert.Equal(t, []string{"JVC"}, spec.Scope.Areas)
	assert.Contains(t, spec.Filters, models.Filter{Field: "price_aed", Op: models.OpLte, Value: int64(2_000_000)})
	assert.Contains(t, spec.Filters, models.Filter{Field: "beds", Op: models.OpEq, Value: 2})
}

func TestParseIntent_Deterministic(t *testing.T) {
	p := newParser(t)

	first := p.parseIntent("Find 2BR in JVC under 2m AED")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, p.parseIntent("Find 2BR in JVC under 2m AED"))
	}
}

func TestParseIntent_GrainInference(t *testing.T) {
	p := newParser(t)

	tests := []struct {
		intent string
		want   models.RowGrain
	}{
		{"Find 2BR in JVC under 2m AED", models.GrainAsset},
		{"apartments in marina", models.GrainAsset},
		{"studio near downtown", models.GrainAsset},
		{"3 bedroom villas in dubai hills", models.GrainAsset},
		{"developments in JVC", models.GrainProject},
		{"compare areas by yield", models.GrainProject},
		{"", models.GrainProject},
	}

	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			assert.Equal(t, tt.want, p.parseIntent(tt.intent).RowGrain)
		})
	}
}

func TestParseIntent_AreaExtraction(t *testing.T) {
	p := newParser(t)

	tests := []struct {
		name   string
		intent string
		want   []string
	}{
		{"alias", "units in jvc", []string{"JVC"}},
		{"multi-word alias", "projects in dubai marina", []string{"Dubai Marina"}},
		{"first-seen order", "compare JVC with downtown and jlt", []string{"JVC", "Downtown Dubai", "JLT"}},
		{"deduplicated", "jvc vs jvc", []string{"JVC"}},
		{"unknown tokens ignored", "units in atlantis", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.parseIntent(tt.intent).Scope.Areas)
		})
	}
}

func TestParseIntent_LongestAliasWins(t *testing.T) {
	p := newParser(t)

	// "dubai marina" must resolve as one area, not as the city "dubai"
	// plus an unmatched token.
	spec := p.parseIntent("apartments in dubai marina")
	assert.Equal(t, []string{"Dubai Marina"}, spec.Scope.Areas)
	assert.Empty(t, spec.Scope.Cities)
}

func TestParseIntent_CityExtraction(t *testing.T) {
	p := newParser(t)

	spec := p.parseIntent("projects in dubai")
	assert.Equal(t, []string{"Dubai"}, spec.Scope.Cities)
	assert.Empty(t, spec.Scope.Areas)
}

func TestParseIntent_PriceFilters(t *testing.T) {
	p := newParser(t)

	tests := []struct {
		name   string
		intent string
		want   []models.Filter
	}{
		{
			name:   "under with suffix",
			intent: "units under 2m",
			want:   []models.Filter{{Field: "price_aed", Op: models.OpLte, Value: int64(2_000_000)}},
		},
		{
			name:   "below with commas",
			intent: "units below 2,000,000",
			want:   []models.Filter{{Field: "price_aed", Op: models.OpLte, Value: int64(2_000_000)}},
		},
		{
			name:   "spelled-out million",
			intent: "units under 2 million",
			want:   []models.Filter{{Field: "price_aed", Op: models.OpLte, Value: int64(2_000_000)}},
		},
		{
			name:   "decimal suffix",
			intent: "units under 2.5m",
			want:   []models.Filter{{Field: "price_aed", Op: models.OpLte, Value: int64(2_500_000)}},
		},
		{
			name:   "lower bound",
			intent: "units over 1m",
			want:   []models.Filter{{Field: "price_aed", Op: models.OpGte, Value: int64(1_000_000)}},
		},
		{
			name:   "range",
			intent: "units 1-2m",
			want: []models.Filter{
				{Field: "price_aed", Op: models.OpGte, Value: int64(1_000_000)},
				{Field: "price_aed", Op: models.OpLte, Value: int64(2_000_000)},
			},
		},
		{
			name:   "project grain uses avg price",
			intent: "developments under 5m",
			want:   []models.Filter{{Field: "avg_price_aed", Op: models.OpLte, Value: int64(5_000_000)}},
		},
		{
			name:   "bare amount is not a constraint",
			intent: "units around 2m somewhere",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.parseIntent(tt.intent).Filters)
		})
	}
}

func TestParseIntent_Beds(t *testing.T) {
	p := newParser(t)

	tests := []struct {
		intent string
		want   int
	}{
		{"2BR in jvc", 2},
		{"2-bed in jvc", 2},
		{"2 bedroom in jvc", 2},
		{"3 bedrooms in jvc", 3},
		{"studio in jvc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			spec := p.parseIntent(tt.intent)
			require.Equal(t, models.GrainAsset, spec.RowGrain)
			assert.Contains(t, spec.Filters, models.Filter{Field: "beds", Op: models.OpEq, Value: tt.want})
		})
	}
}

func TestParseIntent_DefaultSignals(t *testing.T) {
	p := newParser(t)
	reg := registry.MustLoad()

	asset := p.parseIntent("2BR in JVC")
	assert.Equal(t, reg.DefaultSignals(models.GrainAsset), asset.Signals)

	project := p.parseIntent("developments in JVC")
	assert.Equal(t, reg.DefaultSignals(models.GrainProject), project.Signals)
}

func TestParseIntent_ImpliedSignals(t *testing.T) {
	p := newParser(t)

	spec := p.parseIntent("compare yields across jvc and jlt")
	assert.Contains(t, spec.Signals, "yield_net")

	// Signals stay deduplicated even when the default bundle already
	// carries the implied signal.
	spec = p.parseIntent("delivery timeline for projects in jvc")
	count := 0
	for _, s := range spec.Signals {
		if s == "delivery_year" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Find 2BR, in (JVC) under 2,000,000 AED!")

	lowers := make([]string, len(tokens))
	for i, tok := range tokens {
		lowers[i] = tok.lower
	}
	assert.Equal(t, []string{"find", "2br", "in", "jvc", "under", "2,000,000", "aed"}, lowers)

	// Original casing survives for echoed labels.
	assert.Equal(t, "JVC", tokens[3].original)
}
