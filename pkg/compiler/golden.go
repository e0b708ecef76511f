package compiler

import (
	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// Golden path names. Each is a hand-curated TableSpec returned verbatim
// (after the usual validate+enforce pass, which curated specs always
// survive).
const (
	GoldenUnderwriteDevelopmentSite = "underwrite_development_site"
	GoldenCompareAreaYields         = "compare_area_yields"
	GoldenDraftSPAContract          = "draft_spa_contract"
)

// goldenPaths holds the curated template specs. Specs are returned by
// value, so callers can never mutate the templates.
var goldenPaths = map[string]models.TableSpec{
	GoldenUnderwriteDevelopmentSite: {
		Intent:   "Underwrite a development site",
		RowGrain: models.GrainProject,
		Signals: []string{
			"project_name", "developer", "area", "gfa_sqm", "plot_size_sqm",
			"far", "units_total", "avg_price_aed", "roi_band", "safety_band",
			"delivery_year",
		},
		Filters: []models.Filter{
			{Field: "safety_band", Op: models.OpIn, Value: []string{"A", "B"}},
		},
	},
	GoldenCompareAreaYields: {
		Intent:   "Compare yields across areas",
		RowGrain: models.GrainProject,
		Signals: []string{
			"area", "project_name", "avg_price_aed", "roi_band",
			"liquidity_band", "yield_net", "delivery_year",
		},
	},
	GoldenDraftSPAContract: {
		Intent:   "Draft an SPA contract evidence table",
		RowGrain: models.GrainAsset,
		Signals: []string{
			"asset_id", "project_name", "area", "beds", "size_sqm",
			"price_aed", "service_charge_aed", "handover_quarter",
		},
	},
}

// GoldenPathNames returns the known golden path names.
func GoldenPathNames() []string {
	return []string{
		GoldenUnderwriteDevelopmentSite,
		GoldenCompareAreaYields,
		GoldenDraftSPAContract,
	}
}

// goldenPath returns a copy of the named template.
func goldenPath(name string) (models.TableSpec, bool) {
	spec, ok := goldenPaths[name]
	if !ok {
		return models.TableSpec{}, false
	}
	return spec.Clone(), true
}
