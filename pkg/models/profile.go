package models

// RiskAppetite is an investor's tolerance for risk.
type RiskAppetite string

const (
	RiskConservative RiskAppetite = "conservative"
	RiskBalanced     RiskAppetite = "balanced"
	RiskAggressive   RiskAppetite = "aggressive"
)

// Horizon is an investor's intended holding period.
type Horizon string

const (
	HorizonShort  Horizon = "short"  // flip within ~2 years
	HorizonMedium Horizon = "medium" // 2-4 years
	HorizonLong   Horizon = "long"   // 5+ years
)

// InvestorProfile describes the investor a Time Table is ranked
// against. YieldBias and SafetyBias are independent weights in [0,1];
// they need not sum to 1, the scorer normalizes internally.
type InvestorProfile struct {
	RiskAppetite   RiskAppetite `json:"risk_appetite"`
	Horizon        Horizon      `json:"horizon"`
	YieldBias      float64      `json:"yield_bias"`
	SafetyBias     float64      `json:"safety_bias"`
	PreferredAreas []string     `json:"preferred_areas,omitempty"`
	BudgetAED      float64      `json:"budget_aed,omitempty"`
	Beds           *int         `json:"beds,omitempty"`
}

// MarketWeights weight the four market sub-scores. All in [0,1]; the
// scorer divides by the weight sum, or falls back to a neutral midpoint
// when the sum is zero.
type MarketWeights struct {
	Yield     float64 `json:"yield"`
	Risk      float64 `json:"risk"`
	Liquidity float64 `json:"liquidity"`
	Price     float64 `json:"price"`
}

// MatchWeights weight the five profile-fit sub-scores.
type MatchWeights struct {
	Area    float64 `json:"area"`
	Budget  float64 `json:"budget"`
	Beds    float64 `json:"beds"`
	Risk    float64 `json:"risk"`
	Horizon float64 `json:"horizon"`
}

// ScoreWeights bundles both weight vectors. Pure input to the scoring
// engine; defaults come from DefaultScoreWeights and callers may
// override per request.
type ScoreWeights struct {
	Market MarketWeights `json:"market"`
	Match  MatchWeights  `json:"match"`
}

// DefaultScoreWeights returns the weight vectors used when a caller
// does not override them.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Market: MarketWeights{Yield: 0.35, Risk: 0.25, Liquidity: 0.2, Price: 0.2},
		Match:  MatchWeights{Area: 0.3, Budget: 0.25, Beds: 0.15, Risk: 0.15, Horizon: 0.15},
	}
}

// ScoredRow is a Time Table row augmented with its scores. InputIndex
// preserves the row's position in the materialized set and is the final
// tie-break, guaranteeing a total order.
type ScoredRow struct {
	Row         Row     `json:"row"`
	MarketScore float64 `json:"market_score"`
	MatchScore  float64 `json:"match_score"`
	TotalScore  float64 `json:"total_score"`
	InputIndex  int     `json:"-"`
}
