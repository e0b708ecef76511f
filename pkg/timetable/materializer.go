// Package timetable materializes enforced TableSpecs into Time Tables:
// hash-identified row sets the rest of the system cites as evidence.
// Materialization is pure given unchanged inventory data, so the
// content hash doubles as a cache key.
package timetable

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/adapters/inventory"
	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
	"github.com/ezz-ae/entrestate-engine/pkg/hashing"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// MaxPreviewRows caps how many rows a preview may return. The hash and
// metadata always describe the full set regardless of the preview size.
const MaxPreviewRows = 100

// Materializer executes enforced specs against an inventory source and
// assembles the resulting Time Table.
type Materializer struct {
	source  inventory.Source
	timeout time.Duration
	logger  *zap.Logger
}

// NewMaterializer creates a materializer. The timeout bounds each
// inventory query; zero means no bound beyond the caller's context.
func NewMaterializer(source inventory.Source, timeout time.Duration, logger *zap.Logger) *Materializer {
	return &Materializer{
		source:  source,
		timeout: timeout,
		logger:  logger.Named("materializer"),
	}
}

// Materialize executes the spec and returns the full Time Table. An
// empty result set is a valid Time Table with its own stable hash, not
// an error. Inventory failures surface as retryable unavailability.
func (m *Materializer) Materialize(ctx context.Context, spec models.TableSpec) (*models.TimeTable, error) {
	query, err := inventory.PlanQuery(spec)
	if err != nil {
		return nil, fmt.Errorf("plan query: %w", err)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	rows, err := m.source.Query(ctx, query)
	if err != nil {
		return nil, apperrors.Unavailable("inventory", err)
	}

	// The hash covers the spec and every materialized row, so a table
	// can always be re-derived and verified from its citation.
	hash, err := hashing.HashSpecAndRows(spec, rows)
	if err != nil {
		return nil, fmt.Errorf("hash time table: %w", err)
	}

	table := &models.TimeTable{
		Spec: spec,
		Rows: rows,
		Hash: hash,
		Metadata: models.TimeTableMetadata{
			ID:        uuid.New(),
			Hash:      hash,
			RowCount:  len(rows),
			RowGrain:  spec.RowGrain,
			CreatedAt: time.Now().UTC(),
		},
	}

	m.logger.Info("materialized time table",
		zap.String("hash", hash),
		zap.String("row_grain", spec.RowGrain.String()),
		zap.Int("rows", len(rows)))
	return table, nil
}

// PreviewOf truncates a materialized table to at most limit rows. A
// non-positive or oversized limit clamps to MaxPreviewRows.
func PreviewOf(table *models.TimeTable, limit int) *models.Preview {
	if limit <= 0 || limit > MaxPreviewRows {
		limit = MaxPreviewRows
	}
	rows := table.Rows
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return &models.Preview{
		Rows:     rows,
		Metadata: table.Metadata,
	}
}
