package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/services"
)

// RankRequest for POST /api/rank.
type RankRequest struct {
	Spec    models.TableSpec       `json:"spec"`
	Tier    models.Tier            `json:"tier,omitempty"`
	Profile models.InvestorProfile `json:"profile"`
	Weights *models.ScoreWeights   `json:"weights,omitempty"`
}

// RankHandler handles scoring and ranking HTTP requests.
type RankHandler struct {
	tableSpecService services.TableSpecService
	rankingService   services.RankingService
	routedRanking    services.RoutedRankingService // nil when no ranked view resolved
	logger           *zap.Logger
}

// NewRankHandler creates a new ranking handler.
func NewRankHandler(
	tableSpecService services.TableSpecService,
	rankingService services.RankingService,
	routedRanking services.RoutedRankingService,
	logger *zap.Logger,
) *RankHandler {
	return &RankHandler{
		tableSpecService: tableSpecService,
		rankingService:   rankingService,
		routedRanking:    routedRanking,
		logger:           logger,
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *RankHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/rank", h.Rank)
	mux.HandleFunc("GET /api/rank/top", h.TopRanked)
}

// Rank handles POST /api/rank: gate the spec, materialize, score.
func (h *RankHandler) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	spec, _, err := h.tableSpecService.Enforce(r.Context(), req.Spec, req.Tier)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	result, err := h.rankingService.Rank(r.Context(), spec, req.Profile, req.Weights)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode rank response", zap.Error(err))
	}
}

// TopRanked handles GET /api/rank/top, served by the database-side
// ranked inventory view.
func (h *RankHandler) TopRanked(w http.ResponseWriter, r *http.Request) {
	if h.routedRanking == nil {
		_ = ErrorResponse(w, http.StatusNotImplemented, "not_available", "no ranked inventory view in this deployment")
		return
	}

	limit := parseLimit(r, 20)
	rows, err := h.routedRanking.TopRanked(r.Context(), r.URL.Query().Get("area"), limit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"rows": rows, "total": len(rows)}); err != nil {
		h.logger.Error("Failed to encode top-ranked response", zap.Error(err))
	}
}
