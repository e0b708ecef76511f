package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
	"github.com/ezz-ae/entrestate-engine/pkg/compiler"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/services"
)

// CompileRequest for POST /api/tablespec/compile.
type CompileRequest struct {
	Intent     string      `json:"intent,omitempty"`
	GoldenPath string      `json:"golden_path,omitempty"`
	Tier       models.Tier `json:"tier,omitempty"`
	UseLLM     bool        `json:"use_llm,omitempty"`
}

// ValidateRequest for POST /api/tablespec/validate.
type ValidateRequest struct {
	Spec models.TableSpec `json:"spec"`
}

// ValidateResponse echoes the validator's verdict.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// EnforceRequest for POST /api/tablespec/enforce. Used by elevated
// callers that construct specs directly instead of compiling them.
type EnforceRequest struct {
	Spec models.TableSpec `json:"spec"`
	Tier models.Tier      `json:"tier,omitempty"`
}

// EnforceResponse carries the narrowed spec plus narrowing warnings.
type EnforceResponse struct {
	Spec     models.TableSpec `json:"spec"`
	Warnings []string         `json:"warnings,omitempty"`
}

// TableSpecHandler handles TableSpec compilation HTTP requests.
type TableSpecHandler struct {
	tableSpecService services.TableSpecService
	logger           *zap.Logger
}

// NewTableSpecHandler creates a new TableSpec handler.
func NewTableSpecHandler(tableSpecService services.TableSpecService, logger *zap.Logger) *TableSpecHandler {
	return &TableSpecHandler{
		tableSpecService: tableSpecService,
		logger:           logger,
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *TableSpecHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tablespec/compile", h.Compile)
	mux.HandleFunc("POST /api/tablespec/validate", h.Validate)
	mux.HandleFunc("POST /api/tablespec/enforce", h.Enforce)
}

// Compile handles POST /api/tablespec/compile.
func (h *TableSpecHandler) Compile(w http.ResponseWriter, r *http.Request) {
	var req CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	input := compiler.Input{Intent: req.Intent, GoldenPath: req.GoldenPath}

	var result *models.CompilationResult
	var err error
	if req.UseLLM {
		result, err = h.tableSpecService.CompileWithLLM(r.Context(), input, req.Tier)
	} else {
		result, err = h.tableSpecService.Compile(r.Context(), input, req.Tier)
	}
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmptyCompileInput):
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "intent or golden_path is required")
		case errors.Is(err, apperrors.ErrUnknownGoldenPath):
			_ = ErrorResponse(w, http.StatusBadRequest, "unknown_golden_path", err.Error())
		default:
			writeServiceError(w, h.logger, err)
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode compile response", zap.Error(err))
	}
}

// Validate handles POST /api/tablespec/validate.
func (h *TableSpecHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res := h.tableSpecService.Validate(req.Spec)
	if err := WriteJSON(w, http.StatusOK, ValidateResponse{Valid: res.Valid, Errors: res.Errors}); err != nil {
		h.logger.Error("Failed to encode validate response", zap.Error(err))
	}
}

// Enforce handles POST /api/tablespec/enforce.
func (h *TableSpecHandler) Enforce(w http.ResponseWriter, r *http.Request) {
	var req EnforceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	spec, warnings, err := h.tableSpecService.Enforce(r.Context(), req.Spec, req.Tier)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, EnforceResponse{Spec: spec, Warnings: warnings}); err != nil {
		h.logger.Error("Failed to encode enforce response", zap.Error(err))
	}
}
