// Package compiler turns compile inputs (golden path names, free-text
// intents) into validated, entitlement-checked TableSpecs. Two
// strategies exist: the deterministic rule-based parser here, and the
// LLM-assisted parser in assisted.go. Both converge on the same schema
// and both end in the identical validate+enforce gate, so no spec
// reaches the materializer unchecked.
package compiler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
	"github.com/ezz-ae/entrestate-engine/pkg/logging"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/registry"
	"github.com/ezz-ae/entrestate-engine/pkg/tablespec"
)

// Input is a single compilation request. Exactly one of GoldenPath or
// Intent must be set; GoldenPath wins when both are present.
type Input struct {
	Intent     string `json:"intent,omitempty"`
	GoldenPath string `json:"golden_path,omitempty"`
}

// Compiler is the synchronous compiler: golden paths and the
// deterministic rule-based parser.
type Compiler struct {
	registry  *registry.Registry
	validator *tablespec.Validator
	enforcer  *tablespec.Enforcer
	parser    *parser
	logger    *zap.Logger
}

// New creates a compiler over the given registry.
func New(reg *registry.Registry, logger *zap.Logger) *Compiler {
	return &Compiler{
		registry:  reg,
		validator: tablespec.NewValidator(reg),
		enforcer:  tablespec.NewEnforcer(reg),
		parser:    &parser{registry: reg},
		logger:    logger.Named("compiler"),
	}
}

// Compile produces a CompilationResult from a golden path or a
// rule-based parse of the intent, validated and enforced against the
// caller's entitlements.
func (c *Compiler) Compile(input Input, ent models.Entitlements) (*models.CompilationResult, error) {
	switch {
	case input.GoldenPath != "":
		return c.compileGoldenPath(input.GoldenPath, ent)
	case input.Intent != "":
		return c.compileRuleBased(input.Intent, ent)
	default:
		return nil, apperrors.ErrEmptyCompileInput
	}
}

func (c *Compiler) compileGoldenPath(name string, ent models.Entitlements) (*models.CompilationResult, error) {
	spec, ok := goldenPath(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownGoldenPath, name)
	}

	result, err := c.gate(spec, ent, models.SourceGoldenPath, nil)
	if err != nil {
		return nil, fmt.Errorf("golden path %s: %w", name, err)
	}
	return result, nil
}

func (c *Compiler) compileRuleBased(intent string, ent models.Entitlements) (*models.CompilationResult, error) {
	spec := c.parser.parseIntent(intent)

	c.logger.Debug("rule-based parse",
		zap.String("intent", logging.TruncateIntent(intent)),
		zap.String("row_grain", spec.RowGrain.String()),
		zap.Strings("areas", spec.Scope.Areas),
		zap.Int("filters", len(spec.Filters)))

	result, err := c.gate(spec, ent, models.SourceRuleBased, nil)
	if err != nil {
		return nil, fmt.Errorf("compile intent: %w", err)
	}
	return result, nil
}

// gate runs the spec through validate+enforce and assembles the result.
// Every compilation path ends here.
func (c *Compiler) gate(spec models.TableSpec, ent models.Entitlements, source models.CompilationSource, warnings []string) (*models.CompilationResult, error) {
	if res := c.validator.Validate(spec); !res.Valid {
		return nil, apperrors.NewValidationError(res.Errors)
	}

	enforced, enfWarnings, err := c.enforcer.Enforce(spec, ent)
	if err != nil {
		return nil, err
	}

	return &models.CompilationResult{
		Spec:     enforced,
		Source:   source,
		Warnings: append(warnings, enfWarnings...),
	}, nil
}
