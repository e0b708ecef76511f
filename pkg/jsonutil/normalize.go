// Package jsonutil normalizes loosely-typed JSON values at the
// untrusted boundaries: LLM output and datasource rows. LLMs emit
// whatever numeric shape they like; the boundary reduces values to the
// canonical filter types instead of failing the whole parse.
package jsonutil

// NormalizeValue reduces a decoded JSON value to the canonical filter
// value types: integer-valued floats become int64 (amounts are
// normalized integers), and []any of strings becomes []string for
// membership predicates. Everything else passes through.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	case []any:
		strs := make([]string, 0, len(val))
		for _, elem := range val {
			s, ok := elem.(string)
			if !ok {
				// Mixed arrays stay as-is.
				return val
			}
			strs = append(strs, s)
		}
		return strs
	default:
		return v
	}
}
