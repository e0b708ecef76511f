// Package inventory adapts the real-estate inventory store to the Time
// Table materializer. A Source executes planned queries; the planner
// translates a validated TableSpec into one. All field and relation
// names entering a query come from the signal registry, never from
// caller input.
package inventory

import (
	"context"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// Relations backing each row grain.
const (
	RelationProjects = "projects"
	RelationAssets   = "assets"
)

// Predicate is a single planned WHERE condition.
type Predicate struct {
	Field string
	Op    models.FilterOp
	Value any
}

// Query is a planned inventory read: which relation, which columns,
// which predicates, and the row ceiling to apply.
type Query struct {
	Relation   string
	Columns    []string
	Predicates []Predicate
	Limit      int
}

// Source executes planned queries against an inventory backend.
type Source interface {
	// Query returns normalized rows for the planned query, in the
	// backend's stable order. A query matching nothing returns an
	// empty slice and no error.
	Query(ctx context.Context, q Query) ([]models.Row, error)

	// Close releases the backend connection.
	Close() error
}
