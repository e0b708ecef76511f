package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ezz-ae/entrestate-engine/pkg/jsonutil"
	"github.com/ezz-ae/entrestate-engine/pkg/llm"
	"github.com/ezz-ae/entrestate-engine/pkg/logging"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/prompts"
)

// AssistedCompiler wraps the deterministic compiler with an LLM
// strategy. The contract is that compilation always succeeds for a
// parseable input: any provider failure, parse failure, or validation
// failure of the LLM output falls through to the rule-based path with a
// warning attached. The fallback is mandatory, not best-effort.
type AssistedCompiler struct {
	base      *Compiler
	completer llm.TextCompleter // nil means the feature flag is off
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAssisted creates an assisted compiler. Pass a nil completer when
// TABLESPEC_LLM_ENABLED is false; every call then degrades immediately.
func NewAssisted(base *Compiler, completer llm.TextCompleter, timeout time.Duration, logger *zap.Logger) *AssistedCompiler {
	return &AssistedCompiler{
		base:      base,
		completer: completer,
		timeout:   timeout,
		logger:    logger.Named("assisted-compiler"),
	}
}

// llmSpec is the wire shape the model is asked to emit. Filter values
// arrive as raw JSON and are normalized before entering the spec.
type llmSpec struct {
	Intent   string    `json:"intent"`
	RowGrain string    `json:"row_grain"`
	Scope    llmScope  `json:"scope"`
	Signals  []string  `json:"signals"`
	Filters  []llmFilt `json:"filters"`
}

type llmScope struct {
	Areas  []string `json:"areas"`
	Cities []string `json:"cities"`
}

type llmFilt struct {
	Field string          `json:"field"`
	Op    string          `json:"op"`
	Value json.RawMessage `json:"value"`
}

// Compile produces a CompilationResult, preferring the LLM strategy
// and falling back to the deterministic one. Golden paths never touch
// the LLM.
func (c *AssistedCompiler) Compile(ctx context.Context, input Input, ent models.Entitlements) (*models.CompilationResult, error) {
	if input.GoldenPath != "" || input.Intent == "" {
		return c.base.Compile(input, ent)
	}

	if c.completer == nil {
		return c.fallback(input, ent, models.WarnLLMDisabled)
	}

	result, warning := c.tryLLM(ctx, input.Intent, ent)
	if result != nil {
		return result, nil
	}
	return c.fallback(input, ent, warning)
}

// tryLLM attempts the assisted strategy. On success it returns the
// gated result; on any failure it returns nil plus the warning code the
// fallback should carry.
func (c *AssistedCompiler) tryLLM(ctx context.Context, intent string, ent models.Entitlements) (*models.CompilationResult, string) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completion, err := c.completer.Complete(ctx, llm.CompletionRequest{
		Prompt: prompts.BuildTableSpecPrompt(intent, c.base.registry),
		System: prompts.TableSpecSystemMessage,
	})
	if err != nil {
		c.logger.Warn("completion failed, falling back to rule-based parse",
			zap.String("intent", logging.TruncateIntent(intent)),
			zap.String("error_type", string(llm.GetErrorType(err))),
			zap.String("error", logging.SanitizeError(err)))
		return nil, models.WarnLLMUnavailable
	}

	parsed, err := llm.ParseJSONResponse[llmSpec](completion.Text)
	if err != nil {
		c.logger.Warn("completion was not a parseable spec",
			zap.String("intent", logging.TruncateIntent(intent)),
			zap.Error(err))
		return nil, models.WarnLLMParseFailed
	}

	spec, err := c.toSpec(intent, parsed)
	if err != nil {
		c.logger.Warn("llm spec rejected",
			zap.String("intent", logging.TruncateIntent(intent)),
			zap.Error(err))
		return nil, models.WarnLLMInvalidSpec
	}

	result, err := c.base.gate(spec, ent, models.SourceLLM, nil)
	if err != nil {
		// LLM output is never trusted blindly: a spec that fails the
		// same validator every other path uses is discarded.
		c.logger.Warn("llm spec failed validation",
			zap.String("intent", logging.TruncateIntent(intent)),
			zap.Error(err))
		return nil, models.WarnLLMInvalidSpec
	}
	return result, ""
}

// fallback compiles the deterministic way and appends the degradation
// warning. No error from the LLM path ever surfaces as a hard failure.
func (c *AssistedCompiler) fallback(input Input, ent models.Entitlements, warning string) (*models.CompilationResult, error) {
	result, err := c.base.Compile(input, ent)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, warning)
	return result, nil
}

// toSpec converts the wire shape into a TableSpec: values normalized,
// string values screened for injection patterns, areas resolved to
// canonical form where possible.
func (c *AssistedCompiler) toSpec(intent string, parsed llmSpec) (models.TableSpec, error) {
	spec := models.TableSpec{
		Intent:   intent,
		RowGrain: models.RowGrain(parsed.RowGrain),
		Signals:  parsed.Signals,
	}

	for _, area := range parsed.Scope.Areas {
		if canonical := c.base.registry.ResolveArea(area); canonical != "" {
			spec.Scope.Areas = append(spec.Scope.Areas, canonical)
		} else {
			spec.Scope.Areas = append(spec.Scope.Areas, area)
		}
	}
	for _, city := range parsed.Scope.Cities {
		if canonical := c.base.registry.ResolveCity(city); canonical != "" {
			spec.Scope.Cities = append(spec.Scope.Cities, canonical)
		} else {
			spec.Scope.Cities = append(spec.Scope.Cities, city)
		}
	}

	for _, f := range parsed.Filters {
		var raw any
		if len(f.Value) > 0 {
			if err := json.Unmarshal(f.Value, &raw); err != nil {
				return models.TableSpec{}, fmt.Errorf("filter %s: undecodable value: %w", f.Field, err)
			}
		}
		spec.Filters = append(spec.Filters, models.Filter{
			Field: f.Field,
			Op:    models.FilterOp(f.Op),
			Value: jsonutil.NormalizeValue(raw),
		})
	}

	if err := screenSpecValues(spec); err != nil {
		return models.TableSpec{}, err
	}
	return spec, nil
}
