package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
	"github.com/ezz-ae/entrestate-engine/pkg/compiler"
	"github.com/ezz-ae/entrestate-engine/pkg/metrics"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/tablespec"
)

// TableSpecService is the compilation entry point for handlers. Every
// path through it ends in the same validate+enforce gate.
type TableSpecService interface {
	// Compile produces a spec synchronously: golden path or rule-based.
	Compile(ctx context.Context, input compiler.Input, tier models.Tier) (*models.CompilationResult, error)

	// CompileWithLLM prefers the assisted strategy and always falls
	// back to Compile semantics on any provider issue.
	CompileWithLLM(ctx context.Context, input compiler.Input, tier models.Tier) (*models.CompilationResult, error)

	// Validate runs structural validation only.
	Validate(spec models.TableSpec) tablespec.Result

	// Enforce narrows a pre-built spec against the tier's entitlements.
	// Used by elevated callers that construct specs directly.
	Enforce(ctx context.Context, spec models.TableSpec, tier models.Tier) (models.TableSpec, []string, error)
}

type tableSpecService struct {
	compiler     *compiler.Compiler
	assisted     *compiler.AssistedCompiler
	validator    *tablespec.Validator
	enforcer     *tablespec.Enforcer
	entitlements EntitlementsProvider
	logger       *zap.Logger
}

// NewTableSpecService creates the compilation service.
func NewTableSpecService(
	base *compiler.Compiler,
	assisted *compiler.AssistedCompiler,
	validator *tablespec.Validator,
	enforcer *tablespec.Enforcer,
	entitlements EntitlementsProvider,
	logger *zap.Logger,
) TableSpecService {
	return &tableSpecService{
		compiler:     base,
		assisted:     assisted,
		validator:    validator,
		enforcer:     enforcer,
		entitlements: entitlements,
		logger:       logger.Named("tablespec-service"),
	}
}

func (s *tableSpecService) Compile(ctx context.Context, input compiler.Input, tier models.Tier) (*models.CompilationResult, error) {
	ent, err := s.entitlements.EntitlementsFor(ctx, tier)
	if err != nil {
		return nil, err
	}

	result, err := s.compiler.Compile(input, ent)
	s.observe(result, err)
	return result, err
}

func (s *tableSpecService) CompileWithLLM(ctx context.Context, input compiler.Input, tier models.Tier) (*models.CompilationResult, error) {
	ent, err := s.entitlements.EntitlementsFor(ctx, tier)
	if err != nil {
		return nil, err
	}

	result, err := s.assisted.Compile(ctx, input, ent)
	s.observe(result, err)
	return result, err
}

func (s *tableSpecService) Validate(spec models.TableSpec) tablespec.Result {
	return s.validator.Validate(spec)
}

func (s *tableSpecService) Enforce(ctx context.Context, spec models.TableSpec, tier models.Tier) (models.TableSpec, []string, error) {
	if res := s.validator.Validate(spec); !res.Valid {
		return models.TableSpec{}, nil, apperrors.NewValidationError(res.Errors)
	}

	ent, err := s.entitlements.EntitlementsFor(ctx, tier)
	if err != nil {
		return models.TableSpec{}, nil, err
	}
	return s.enforcer.Enforce(spec, ent)
}

func (s *tableSpecService) observe(result *models.CompilationResult, err error) {
	if err != nil {
		metrics.CompilationsTotal.WithLabelValues("none", "error").Inc()
		return
	}
	metrics.CompilationsTotal.WithLabelValues(string(result.Source), "ok").Inc()
}
