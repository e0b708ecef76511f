package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// RoutedRankingService reads pre-scored rows from the database-side
// ranked inventory view. It must blend market and match with the same
// ratio as the in-process scorer so both paths order comparably.
type RoutedRankingService interface {
	// TopRanked returns up to limit rows ordered by blended score,
	// optionally restricted to one area.
	TopRanked(ctx context.Context, area string, limit int) ([]models.Row, error)
}

type routedRankingService struct {
	pool        *pgxpool.Pool
	view        string
	marketBlend float64
	logger      *zap.Logger
}

// NewRoutedRankingService creates the routed ranker over the view
// resolved at startup by ResolveRankingView.
func NewRoutedRankingService(pool *pgxpool.Pool, view string, marketBlend float64, logger *zap.Logger) RoutedRankingService {
	return &routedRankingService{
		pool:        pool,
		view:        view,
		marketBlend: marketBlend,
		logger:      logger.Named("routed-ranking"),
	}
}

func (s *routedRankingService) TopRanked(ctx context.Context, area string, limit int) ([]models.Row, error) {
	sql, args := s.buildSQL(area, limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.Unavailable("ranked inventory view", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	out := make([]models.Row, 0, limit)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read ranked row: %w", err)
		}
		row := make(models.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranked rows: %w", err)
	}
	return out, nil
}

// buildSQL renders the routed ranking query. The blend expression here
// and the in-process scorer share one configured ratio.
func (s *routedRankingService) buildSQL(area string, limit int) (string, []any) {
	blend := fmt.Sprintf("(%.4f * market_score + %.4f * match_score)", s.marketBlend, 1-s.marketBlend)

	args := []any{limit}
	where := ""
	if area != "" {
		args = append(args, area)
		where = " WHERE area = $2"
	}

	sql := fmt.Sprintf(`SELECT *, %s AS total_score FROM %q%s ORDER BY total_score DESC, market_score DESC LIMIT $1`,
		blend, s.view, where)
	return sql, args
}
