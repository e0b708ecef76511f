// Package scoring ranks materialized Time Table rows against an
// investor profile. RankRows is a pure function of its inputs: no
// hidden state, no clock reads, so identical inputs always produce the
// identical ordering.
package scoring

import (
	"math"
	"sort"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

const (
	// neutralScore is the midpoint applied when a sub-score cannot be
	// computed (missing field, zero weight sum). Scoring is total over
	// any row shape the materializer can produce.
	neutralScore = 50.0

	// totalScoreTolerance bounds float comparison during ranking.
	totalScoreTolerance = 1e-9

	// referencePriceAED anchors the price-attractiveness decay.
	referencePriceAED = 5_000_000.0
)

// bandScores maps quality bands to their 0-100 ordinal sub-score.
var bandScores = map[string]float64{
	"A": 90,
	"B": 70,
	"C": 50,
	"D": 30,
}

// bandOrdinals orders bands for distance-based alignment scores.
var bandOrdinals = map[string]int{"A": 3, "B": 2, "C": 1, "D": 0}

// Scorer computes market, match, and blended total scores. The blend
// ratio is shared with the database-side ranking relation so both
// paths order comparably.
type Scorer struct {
	marketBlend float64

	// referenceYear anchors delivery-timeline alignment. Injected at
	// construction so a scorer instance stays deterministic.
	referenceYear int
}

// NewScorer creates a scorer with the given market/match blend (the
// match share is its complement) and reference year.
func NewScorer(marketBlend float64, referenceYear int) *Scorer {
	return &Scorer{marketBlend: marketBlend, referenceYear: referenceYear}
}

// RankRows scores every row against the profile and weights, then
// sorts descending by total score. Ties within tolerance break by
// market score descending, then by input order, so the result is a
// total order.
func (s *Scorer) RankRows(rows []models.Row, profile models.InvestorProfile, weights models.ScoreWeights) []models.ScoredRow {
	scored := make([]models.ScoredRow, len(rows))
	for i, row := range rows {
		market := s.marketScore(row, profile, weights.Market)
		match := s.matchScore(row, profile, weights.Match)
		scored[i] = models.ScoredRow{
			Row:         row,
			MarketScore: market,
			MatchScore:  match,
			TotalScore:  s.marketBlend*market + (1-s.marketBlend)*match,
			InputIndex:  i,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		di := scored[i].TotalScore - scored[j].TotalScore
		if math.Abs(di) > totalScoreTolerance {
			return di > 0
		}
		dm := scored[i].MarketScore - scored[j].MarketScore
		if math.Abs(dm) > totalScoreTolerance {
			return dm > 0
		}
		return scored[i].InputIndex < scored[j].InputIndex
	})
	return scored
}

// marketScore blends the four intrinsic sub-scores: yield, risk
// (safety banding, higher safety scores higher), liquidity, and price
// attractiveness. The profile's yield and safety biases tilt their
// weights before normalization; a zero bias leaves the weight as-is.
func (s *Scorer) marketScore(row models.Row, profile models.InvestorProfile, w models.MarketWeights) float64 {
	return combine(
		[]float64{yieldScore(row), bandScore(row, "safety_band"), bandScore(row, "liquidity_band"), priceScore(row)},
		[]float64{w.Yield * (1 + profile.YieldBias), w.Risk * (1 + profile.SafetyBias), w.Liquidity, w.Price},
	)
}

// matchScore blends the five profile-fit sub-scores.
func (s *Scorer) matchScore(row models.Row, profile models.InvestorProfile, w models.MatchWeights) float64 {
	return combine(
		[]float64{
			areaScore(row, profile),
			budgetScore(row, profile),
			bedsScore(row, profile),
			riskAlignment(row, profile),
			s.horizonAlignment(row, profile),
		},
		[]float64{w.Area, w.Budget, w.Beds, w.Risk, w.Horizon},
	)
}

// combine is the normalize-or-neutral rule: Σ(w·s)/Σw, or the neutral
// midpoint when every weight is zero.
func combine(scores, weights []float64) float64 {
	var sum, weightSum float64
	for i, w := range weights {
		sum += w * scores[i]
		weightSum += w
	}
	if weightSum == 0 {
		return neutralScore
	}
	return sum / weightSum
}

// yieldScore maps net yield percent onto 0-100 (10% and above caps at
// 100), falling back to the roi banding when no numeric yield exists.
func yieldScore(row models.Row) float64 {
	if y, ok := row.Float("yield_net"); ok {
		return clamp(y*10, 0, 100)
	}
	return bandScore(row, "roi_band")
}

func bandScore(row models.Row, field string) float64 {
	if score, ok := bandScores[row.String(field)]; ok {
		return score
	}
	return neutralScore
}

// priceScore rewards affordability with a bounded decay anchored at
// the reference price: free is 100, the reference price is 50, and the
// score approaches zero without ever going negative.
func priceScore(row models.Row) float64 {
	price, ok := rowPrice(row)
	if !ok {
		return neutralScore
	}
	return 100 / (1 + price/referencePriceAED)
}

// rowPrice reads the grain-appropriate price field.
func rowPrice(row models.Row) (float64, bool) {
	if p, ok := row.Float("price_aed"); ok {
		return p, true
	}
	return row.Float("avg_price_aed")
}

func areaScore(row models.Row, profile models.InvestorProfile) float64 {
	if len(profile.PreferredAreas) == 0 {
		return neutralScore
	}
	area := row.String("area")
	if area == "" {
		return neutralScore
	}
	for _, preferred := range profile.PreferredAreas {
		if preferred == area {
			return 100
		}
	}
	return 0
}

// budgetScore decays with relative distance from the budget: on-budget
// is 100, double or half the budget is 50, never negative.
func budgetScore(row models.Row, profile models.InvestorProfile) float64 {
	if profile.BudgetAED <= 0 {
		return neutralScore
	}
	price, ok := rowPrice(row)
	if !ok {
		return neutralScore
	}
	return 100 / (1 + math.Abs(price-profile.BudgetAED)/profile.BudgetAED)
}

// bedsScore grades by distance from the requested count: exact is 100,
// each bedroom of distance costs 30 points.
func bedsScore(row models.Row, profile models.InvestorProfile) float64 {
	if profile.Beds == nil {
		return neutralScore
	}
	beds, ok := row.Float("beds")
	if !ok {
		return neutralScore
	}
	distance := math.Abs(beds - float64(*profile.Beds))
	return clamp(100-30*distance, 0, 100)
}

// riskAlignment compares the row's safety banding to the band the
// appetite targets: conservative wants A, balanced B, aggressive C.
func riskAlignment(row models.Row, profile models.InvestorProfile) float64 {
	ordinal, ok := bandOrdinals[row.String("safety_band")]
	if !ok {
		return neutralScore
	}

	var target int
	switch profile.RiskAppetite {
	case models.RiskConservative:
		target = bandOrdinals["A"]
	case models.RiskBalanced:
		target = bandOrdinals["B"]
	case models.RiskAggressive:
		target = bandOrdinals["C"]
	default:
		return neutralScore
	}

	distance := math.Abs(float64(ordinal - target))
	return clamp(100-distance*100/3, 0, 100)
}

// horizonAlignment compares the row's delivery year against the
// holding period: short wants delivery within a year, medium within
// two to four, long five or more. Each year outside the window costs
// 30 points.
func (s *Scorer) horizonAlignment(row models.Row, profile models.InvestorProfile) float64 {
	year, ok := row.Float("delivery_year")
	if !ok {
		return neutralScore
	}
	yearsOut := math.Max(0, year-float64(s.referenceYear))

	var lo, hi float64
	switch profile.Horizon {
	case models.HorizonShort:
		lo, hi = 0, 1
	case models.HorizonMedium:
		lo, hi = 2, 4
	case models.HorizonLong:
		lo, hi = 5, math.Inf(1)
	default:
		return neutralScore
	}

	if yearsOut >= lo && yearsOut <= hi {
		return 100
	}
	var distance float64
	if yearsOut < lo {
		distance = lo - yearsOut
	} else {
		distance = yearsOut - hi
	}
	return clamp(100-30*distance, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
