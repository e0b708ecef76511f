package compiler

import (
	"regexp"
	"strconv"
	"strings"
)

// The amount grammar, instead of ad hoc heuristics:
//
//	amount   := number suffix?
//	number   := digits | digits "." digits | digits ("," digits{3})+
//	suffix   := "m" | "million" | "k" | "thousand"
//	range    := amount "-" amount        (a bare first amount inherits
//	                                      the second amount's suffix)
//	bound    := lowerWord amount | upperWord amount | range
//
// "2m" is 2,000,000; "2.5m" is 2,500,000; "950k" is 950,000;
// "2,000,000" has its commas stripped. Results are normalized integers.
var (
	amountPattern = regexp.MustCompile(`^(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)(m|million|k|thousand)?$`)
	rangePattern  = regexp.MustCompile(`^(\d+(?:\.\d+)?)(m|k)?-(\d+(?:\.\d+)?)(m|k)$`)
)

// upper-bound words: "under 2m" means price_aed <= 2,000,000
var upperBoundWords = map[string]bool{
	"under": true, "below": true, "max": true, "upto": true, "within": true,
}

// lower-bound words: "over 1m" means price_aed >= 1,000,000
var lowerBoundWords = map[string]bool{
	"over": true, "above": true, "from": true, "min": true,
}

func suffixMultiplier(suffix string) (int64, bool) {
	switch suffix {
	case "m", "million":
		return 1_000_000, true
	case "k", "thousand":
		return 1_000, true
	case "":
		return 1, true
	default:
		return 0, false
	}
}

// parseAmount parses a single amount token ("2m", "2.5m", "950k",
// "2,000,000") into a normalized integer value.
func parseAmount(token string) (int64, bool) {
	m := amountPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}

	numStr := strings.ReplaceAll(m[1], ",", "")
	mult, ok := suffixMultiplier(m[2])
	if !ok {
		return 0, false
	}

	if strings.Contains(numStr, ".") {
		f, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, false
		}
		return int64(f * float64(mult)), true
	}

	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return n * mult, true
}

// parseAmountRange parses a bounded range token ("1-2m", "1.5m-2m",
// "800k-1.2m"). When the first amount has no suffix it inherits the
// second's, so "1-2m" reads as 1m to 2m.
func parseAmountRange(token string) (low, high int64, ok bool) {
	m := rangePattern.FindStringSubmatch(token)
	if m == nil {
		return 0, 0, false
	}

	lowSuffix := m[2]
	if lowSuffix == "" {
		lowSuffix = m[4]
	}

	lowMult, ok := suffixMultiplier(lowSuffix)
	if !ok {
		return 0, 0, false
	}
	highMult, ok := suffixMultiplier(m[4])
	if !ok {
		return 0, 0, false
	}

	lowF, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	highF, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, 0, false
	}

	low = int64(lowF * float64(lowMult))
	high = int64(highF * float64(highMult))
	if low > high {
		return 0, 0, false
	}
	return low, high, true
}
