package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// The database may carry either deployment flavor of the ranked
// inventory view. Which one exists is probed once at startup; the rest
// of the engine only ever sees the resolved name.
const (
	RankingViewAutomation = "ranked_inventory_automation"
	RankingViewAgent      = "ranked_inventory_agent"
)

// rankingProber checks view existence. Satisfied by *pgxpool.Pool.
type rankingProber interface {
	QueryRow(ctx context.Context, sql string, args ...any) interface{ Scan(dest ...any) error }
}

// poolProber adapts a pgxpool.Pool to rankingProber.
type poolProber struct{ pool *pgxpool.Pool }

func (p poolProber) QueryRow(ctx context.Context, sql string, args ...any) interface{ Scan(dest ...any) error } {
	return p.pool.QueryRow(ctx, sql, args...)
}

// ResolveRankingView returns the ranked-inventory view present in this
// database, preferring the automation flavor. Resolved once at
// startup; missing both is a deployment fault.
func ResolveRankingView(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (string, error) {
	return resolveRankingView(ctx, poolProber{pool: pool}, logger)
}

func resolveRankingView(ctx context.Context, db rankingProber, logger *zap.Logger) (string, error) {
	for _, view := range []string{RankingViewAutomation, RankingViewAgent} {
		exists, err := viewExists(ctx, db, view)
		if err != nil {
			return "", fmt.Errorf("probe ranking view %s: %w", view, err)
		}
		if exists {
			logger.Info("resolved ranking view", zap.String("view", view))
			return view, nil
		}
	}
	return "", fmt.Errorf("no ranked inventory view present (tried %s, %s)",
		RankingViewAutomation, RankingViewAgent)
}

func viewExists(ctx context.Context, db rankingProber, name string) (bool, error) {
	var regclass *string
	err := db.QueryRow(ctx, "SELECT to_regclass($1)::text", name).Scan(&regclass)
	if err != nil {
		return false, err
	}
	return regclass != nil, nil
}
