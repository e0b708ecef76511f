package inventory

import (
	"fmt"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// PlanQuery translates a validated, enforced TableSpec into a backend
// query. The spec has already passed the validate+enforce gate, so
// every signal and filter field here is registry-vetted.
func PlanQuery(spec models.TableSpec) (Query, error) {
	relation, err := relationFor(spec.RowGrain)
	if err != nil {
		return Query{}, err
	}

	q := Query{
		Relation: relation,
		Columns:  append([]string(nil), spec.Signals...),
		Limit:    spec.RowCeiling,
	}

	if len(spec.Scope.Areas) > 0 {
		q.Predicates = append(q.Predicates, Predicate{
			Field: "area",
			Op:    models.OpIn,
			Value: append([]string(nil), spec.Scope.Areas...),
		})
	}
	if len(spec.Scope.Cities) > 0 {
		q.Predicates = append(q.Predicates, Predicate{
			Field: "city",
			Op:    models.OpIn,
			Value: append([]string(nil), spec.Scope.Cities...),
		})
	}

	for _, f := range spec.Filters {
		q.Predicates = append(q.Predicates, Predicate{
			Field: f.Field,
			Op:    f.Op,
			Value: f.Value,
		})
	}

	return q, nil
}

func relationFor(grain models.RowGrain) (string, error) {
	switch grain {
	case models.GrainProject:
		return RelationProjects, nil
	case models.GrainAsset:
		return RelationAssets, nil
	default:
		return "", fmt.Errorf("no relation for row grain %q", grain)
	}
}

// orderColumn is the stable sort key per relation. Materialization
// hashes row content, so row order must not depend on planner luck.
func orderColumn(relation string) string {
	if relation == RelationAssets {
		return "asset_id"
	}
	return "project_id"
}
