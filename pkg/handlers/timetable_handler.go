package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/services"
	"github.com/ezz-ae/entrestate-engine/pkg/timetable"
)

// MaterializeRequest for POST /api/timetables. The spec passes the
// validate+enforce gate here before it reaches the materializer, the
// same gate every compilation path ends in.
type MaterializeRequest struct {
	Spec models.TableSpec `json:"spec"`
	Tier models.Tier      `json:"tier,omitempty"`

	// Preview truncates the response rows; hash and metadata always
	// describe the full materialized set.
	Preview      bool `json:"preview,omitempty"`
	PreviewLimit int  `json:"preview_limit,omitempty"`
}

// TimeTableHandler handles Time Table materialization HTTP requests.
type TimeTableHandler struct {
	tableSpecService services.TableSpecService
	timetables       *timetable.Service
	logger           *zap.Logger
}

// NewTimeTableHandler creates a new Time Table handler.
func NewTimeTableHandler(tableSpecService services.TableSpecService, timetables *timetable.Service, logger *zap.Logger) *TimeTableHandler {
	return &TimeTableHandler{
		tableSpecService: tableSpecService,
		timetables:       timetables,
		logger:           logger,
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *TimeTableHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/timetables", h.Materialize)
}

// Materialize handles POST /api/timetables.
func (h *TimeTableHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	var req MaterializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	spec, _, err := h.tableSpecService.Enforce(r.Context(), req.Spec, req.Tier)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if req.Preview {
		preview, err := h.timetables.Preview(r.Context(), spec, req.PreviewLimit)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		if err := WriteJSON(w, http.StatusOK, preview); err != nil {
			h.logger.Error("Failed to encode preview response", zap.Error(err))
		}
		return
	}

	table, err := h.timetables.Materialize(r.Context(), spec)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := WriteJSON(w, http.StatusOK, table); err != nil {
		h.logger.Error("Failed to encode time table response", zap.Error(err))
	}
}

// parseLimit reads a limit query parameter, defaulting when absent.
func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
