package inventory

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// MemorySource is an in-memory Source for tests and local development.
// Rows are returned sorted by the relation's stable key, matching the
// database adapter's ordering contract.
type MemorySource struct {
	tables map[string][]models.Row
}

// NewMemorySource creates a source over fixed relation data.
func NewMemorySource(tables map[string][]models.Row) *MemorySource {
	return &MemorySource{tables: tables}
}

// Query implements Source.
func (s *MemorySource) Query(_ context.Context, q Query) ([]models.Row, error) {
	table, ok := s.tables[q.Relation]
	if !ok {
		return nil, fmt.Errorf("unknown relation %q", q.Relation)
	}

	matched := make([]models.Row, 0)
	for _, row := range table {
		match, err := matchAll(row, q.Predicates)
		if err != nil {
			return nil, err
		}
		if match {
			matched = append(matched, row)
		}
	}

	// Order by the stable key before projecting, as the database
	// adapter does; the key need not be among the projected columns.
	key := orderColumn(q.Relation)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].String(key) < matched[j].String(key)
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]models.Row, 0, len(matched))
	for _, row := range matched {
		out = append(out, projectRow(row, q.Columns))
	}
	return out, nil
}

// Close implements Source.
func (s *MemorySource) Close() error { return nil }

func projectRow(row models.Row, columns []string) models.Row {
	out := make(models.Row, len(columns))
	for _, col := range columns {
		if v, ok := row[col]; ok {
			out[col] = v
		}
	}
	return out
}

func matchAll(row models.Row, predicates []Predicate) (bool, error) {
	for _, p := range predicates {
		ok, err := matchPredicate(row, p)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchPredicate(row models.Row, p Predicate) (bool, error) {
	actual, present := row[p.Field]
	if !present {
		return false, nil
	}

	switch p.Op {
	case models.OpEq:
		return valuesEqual(actual, p.Value), nil
	case models.OpNeq:
		return !valuesEqual(actual, p.Value), nil
	case models.OpLt, models.OpLte, models.OpGt, models.OpGte:
		a, aok := asFloat(actual)
		b, bok := asFloat(p.Value)
		if !aok || !bok {
			return false, fmt.Errorf("predicate on %s: non-numeric comparison", p.Field)
		}
		switch p.Op {
		case models.OpLt:
			return a < b, nil
		case models.OpLte:
			return a <= b, nil
		case models.OpGt:
			return a > b, nil
		default:
			return a >= b, nil
		}
	case models.OpIn:
		members, err := inMembers(p.Value)
		if err != nil {
			return false, fmt.Errorf("predicate on %s: %w", p.Field, err)
		}
		for _, m := range members {
			if valuesEqual(actual, m) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("predicate on %s: unsupported operator %q", p.Field, p.Op)
	}
}

func valuesEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
