package compiler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/registry"
	"github.com/ezz-ae/entrestate-engine/pkg/tablespec"
)

// bedsPattern matches compact bedroom tokens: "2br", "2-br", "2bed",
// "2-bed". Spelled-out forms ("2 bedroom") are handled pairwise.
var bedsPattern = regexp.MustCompile(`^(\d+)-?(?:br|bed|beds|bedroom|bedrooms)$`)

// bedroomWords are the spelled-out forms following a bare number.
var bedroomWords = map[string]bool{
	"br": true, "bed": true, "bedroom": true,
}

// unitWords imply asset grain even without a bedroom count. Tokens are
// singularized before lookup, so "apartments" matches "apartment".
var unitWords = map[string]bool{
	"unit": true, "apartment": true, "flat": true, "studio": true,
	"penthouse": true, "townhouse": true, "villa": true, "duplex": true,
}

// impliedSignalWords map intent vocabulary to signals beyond the
// default bundle. Premium signals still pass through enforcement.
var impliedSignalWords = map[string]string{
	"yield":      "yield_net",
	"gfa":        "gfa_sqm",
	"handover":   "delivery_year",
	"delivery":   "delivery_year",
	"absorption": "absorption_rate",
}

// parser is the deterministic rule-based intent parser. It is pure: the
// same intent text always produces the same raw spec.
type parser struct {
	registry *registry.Registry
}

// token pairs a lower-cased matching form with the original casing, so
// echoed labels keep the user's spelling.
type token struct {
	lower    string
	original string
}

// tokenize splits intent text on whitespace and trims surrounding
// punctuation. Commas inside numbers ("2,000,000") survive; trailing
// list commas do not.
func tokenize(intent string) []token {
	fields := strings.Fields(intent)
	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		trimmed := strings.Trim(f, ".,!?;:()\"'")
		if trimmed == "" {
			continue
		}
		tokens = append(tokens, token{lower: strings.ToLower(trimmed), original: trimmed})
	}
	return tokens
}

// parseIntent runs the rule-based parsing algorithm:
//
//  1. tokenize, lower-cased for matching
//  2. infer row grain from unit-level qualifiers
//  3. extract areas/cities via the registry alias tables, first-seen
//     order, deduplicated
//  4. extract numeric filters (bounded prices, bedroom counts)
//  5. apply the grain's default signal bundle plus implied signals
//
// The result has NOT passed validation or enforcement yet.
func (p *parser) parseIntent(intent string) models.TableSpec {
	tokens := tokenize(intent)

	beds, hasBeds := extractBeds(tokens)
	grain := inferGrain(tokens, hasBeds)
	areas, cities := p.extractScope(tokens)
	filters := p.extractPriceFilters(tokens, grain)

	if hasBeds {
		filters = append(filters, models.Filter{
			Field: "beds", Op: models.OpEq, Value: beds,
		})
	}

	signals := p.registry.DefaultSignals(grain)
	for _, t := range tokens {
		if sig, ok := impliedSignalWords[inflection.Singular(t.lower)]; ok {
			if p.registry.ExistsAtGrain(sig, grain) {
				signals = append(signals, sig)
			}
		}
	}

	return models.TableSpec{
		Intent:   intent,
		RowGrain: grain,
		Scope:    models.Scope{Areas: areas, Cities: cities},
		Signals:  tablespec.DedupSignals(signals),
		Filters:  filters,
	}
}

// inferGrain returns asset grain when the intent mentions unit-level
// qualifiers, otherwise the project default.
func inferGrain(tokens []token, hasBeds bool) models.RowGrain {
	if hasBeds {
		return models.GrainAsset
	}
	for _, t := range tokens {
		if unitWords[inflection.Singular(t.lower)] {
			return models.GrainAsset
		}
	}
	return models.GrainProject
}

// extractBeds finds a bedroom count: "2br", "2-bed", "2 bedrooms", or
// "studio" (zero bedrooms). First match wins.
func extractBeds(tokens []token) (int, bool) {
	for i, t := range tokens {
		if t.lower == "studio" {
			return 0, true
		}
		if m := bedsPattern.FindStringSubmatch(t.lower); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n, true
			}
		}
		// "2 bedroom" / "3 beds" as a number-word pair
		if i+1 < len(tokens) {
			if n, err := strconv.Atoi(t.lower); err == nil {
				next := inflection.Singular(tokens[i+1].lower)
				if bedroomWords[next] {
					return n, true
				}
			}
		}
	}
	return 0, false
}

// extractScope scans token n-grams against the registry alias tables.
// Longer phrases win over their prefixes ("dubai marina" resolves as
// one area, not the city "dubai" plus a stray token). Matches keep
// first-seen order and are deduplicated.
func (p *parser) extractScope(tokens []token) (areas, cities []string) {
	window := p.registry.MaxAliasWords()
	seenArea := make(map[string]bool)
	seenCity := make(map[string]bool)

	for i := 0; i < len(tokens); {
		matched := 0
		for n := window; n >= 1; n-- {
			if i+n > len(tokens) {
				continue
			}
			parts := make([]string, n)
			for j := 0; j < n; j++ {
				parts[j] = tokens[i+j].lower
			}
			phrase := strings.Join(parts, " ")

			if canonical := p.registry.ResolveArea(phrase); canonical != "" {
				if !seenArea[canonical] {
					seenArea[canonical] = true
					areas = append(areas, canonical)
				}
				matched = n
				break
			}
			if canonical := p.registry.ResolveCity(phrase); canonical != "" {
				if !seenCity[canonical] {
					seenCity[canonical] = true
					cities = append(cities, canonical)
				}
				matched = n
				break
			}
		}
		if matched > 0 {
			i += matched
		} else {
			i++
		}
	}
	return areas, cities
}

// priceField returns the price signal appropriate for the grain.
func priceField(grain models.RowGrain) string {
	if grain == models.GrainAsset {
		return "price_aed"
	}
	return "avg_price_aed"
}

// extractPriceFilters recognizes bounded-price phrases. A bound word
// followed by an amount ("under 2m", "over 1,500,000", "below 2
// million") produces a single comparison; a range token ("1-2m")
// produces a gte/lte pair. Amount tokens with no bound word are
// ignored: a bare number is not a price constraint.
func (p *parser) extractPriceFilters(tokens []token, grain models.RowGrain) []models.Filter {
	field := priceField(grain)
	var filters []models.Filter

	for i, t := range tokens {
		if low, high, ok := parseAmountRange(t.lower); ok {
			filters = append(filters,
				models.Filter{Field: field, Op: models.OpGte, Value: low},
				models.Filter{Field: field, Op: models.OpLte, Value: high},
			)
			continue
		}

		isUpper := upperBoundWords[t.lower]
		isLower := lowerBoundWords[t.lower]
		if !isUpper && !isLower {
			continue
		}

		value, ok := p.amountAfter(tokens, i+1)
		if !ok {
			continue
		}

		op := models.OpLte
		if isLower {
			op = models.OpGte
		}
		filters = append(filters, models.Filter{Field: field, Op: op, Value: value})
	}

	return filters
}

// amountAfter reads an amount starting at index start, joining a bare
// number with a following suffix word ("2 million").
func (p *parser) amountAfter(tokens []token, start int) (int64, bool) {
	if start >= len(tokens) {
		return 0, false
	}

	// Two-token form: "2 million", "950 thousand"
	if start+1 < len(tokens) {
		joined := tokens[start].lower + tokens[start+1].lower
		if v, ok := parseAmount(joined); ok {
			return v, true
		}
		// "under 2 bedroom" is a bedroom phrase, not a price bound.
		if bedroomWords[inflection.Singular(tokens[start+1].lower)] {
			return 0, false
		}
	}

	if v, ok := parseAmount(tokens[start].lower); ok {
		return v, true
	}
	return 0, false
}
