package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/metrics"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/scoring"
	"github.com/ezz-ae/entrestate-engine/pkg/timetable"
)

// RankingResult pairs the ranked rows with the Time Table metadata
// they were derived from. Callers cite {spec, hash} as the evidence
// trail for any downstream artifact.
type RankingResult struct {
	Rows     []models.ScoredRow       `json:"rows"`
	Metadata models.TimeTableMetadata `json:"metadata"`
}

// RankingService materializes a spec and ranks the result against an
// investor profile.
type RankingService interface {
	// Rank materializes the spec and scores every row. Zero rows is a
	// valid empty ranking, not an error.
	Rank(ctx context.Context, spec models.TableSpec, profile models.InvestorProfile, weights *models.ScoreWeights) (*RankingResult, error)
}

type rankingService struct {
	timetables *timetable.Service
	scorer     *scoring.Scorer
	logger     *zap.Logger
}

// NewRankingService creates the ranking service.
func NewRankingService(timetables *timetable.Service, scorer *scoring.Scorer, logger *zap.Logger) RankingService {
	return &rankingService{
		timetables: timetables,
		scorer:     scorer,
		logger:     logger.Named("ranking-service"),
	}
}

func (s *rankingService) Rank(ctx context.Context, spec models.TableSpec, profile models.InvestorProfile, weights *models.ScoreWeights) (*RankingResult, error) {
	table, err := s.timetables.Materialize(ctx, spec)
	if err != nil {
		metrics.RankingsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	w := models.DefaultScoreWeights()
	if weights != nil {
		w = *weights
	}

	ranked := s.scorer.RankRows(table.Rows, profile, w)
	metrics.RankingsTotal.WithLabelValues("ok").Inc()

	s.logger.Debug("ranked time table",
		zap.String("hash", table.Hash),
		zap.Int("rows", len(ranked)))
	return &RankingResult{Rows: ranked, Metadata: table.Metadata}, nil
}
