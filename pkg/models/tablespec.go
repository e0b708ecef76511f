// Package models contains domain types for entrestate-engine.
package models

// RowGrain determines whether Time Table rows represent developments
// (project grain) or individual units (asset grain).
type RowGrain string

const (
	GrainProject RowGrain = "project"
	GrainAsset   RowGrain = "asset"
)

// String returns the string representation of a RowGrain.
func (g RowGrain) String() string {
	return string(g)
}

// IsValid returns true if the grain is one of the two enumerated values.
func (g RowGrain) IsValid() bool {
	switch g {
	case GrainProject, GrainAsset:
		return true
	default:
		return false
	}
}

// FilterOp is a comparison operator permitted by the signal registry.
type FilterOp string

const (
	OpEq  FilterOp = "eq"
	OpNeq FilterOp = "neq"
	OpLt  FilterOp = "lt"
	OpLte FilterOp = "lte"
	OpGt  FilterOp = "gt"
	OpGte FilterOp = "gte"
	OpIn  FilterOp = "in"
)

// Filter is a single {field, op, value} predicate in a TableSpec.
type Filter struct {
	Field string   `json:"field" yaml:"field"`
	Op    FilterOp `json:"op" yaml:"op"`
	Value any      `json:"value" yaml:"value"`
}

// Scope holds the structured geographic filters of a TableSpec.
// Areas are canonical registry names, in first-seen order, deduplicated.
type Scope struct {
	Areas  []string `json:"areas,omitempty" yaml:"areas,omitempty"`
	Cities []string `json:"cities,omitempty" yaml:"cities,omitempty"`
}

// LLMParams carries optional generation parameters for the assisted
// compilation path. Zero value means provider defaults.
type LLMParams struct {
	Model       string  `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// TableSpec is the canonical declarative query executed by the Time
// Table materializer. A spec is immutable once validated: enforcement
// and any other rewrite produce a copy, never mutate in place.
type TableSpec struct {
	Intent   string     `json:"intent" yaml:"intent"`
	RowGrain RowGrain   `json:"row_grain" yaml:"row_grain"`
	Scope    Scope      `json:"scope" yaml:"scope"`
	Signals  []string   `json:"signals" yaml:"signals"`
	Filters  []Filter   `json:"filters,omitempty" yaml:"filters,omitempty"`
	LLM      *LLMParams `json:"llm,omitempty" yaml:"llm,omitempty"`

	// RowCeiling is the maximum row count the caller's tier permits.
	// Attached by enforcement, applied at materialization.
	RowCeiling int `json:"row_ceiling,omitempty" yaml:"row_ceiling,omitempty"`
}

// Clone returns a deep copy of the spec. Enforcement narrows the copy
// so the caller's spec is never mutated.
func (s TableSpec) Clone() TableSpec {
	out := s
	out.Signals = append([]string(nil), s.Signals...)
	out.Filters = append([]Filter(nil), s.Filters...)
	out.Scope.Areas = append([]string(nil), s.Scope.Areas...)
	out.Scope.Cities = append([]string(nil), s.Scope.Cities...)
	if s.LLM != nil {
		llm := *s.LLM
		out.LLM = &llm
	}
	return out
}

// HasSignal reports whether the spec projects the named signal.
func (s TableSpec) HasSignal(name string) bool {
	for _, sig := range s.Signals {
		if sig == name {
			return true
		}
	}
	return false
}

// CompilationSource records how a CompilationResult's spec was derived.
type CompilationSource string

const (
	SourceGoldenPath CompilationSource = "golden_path"
	SourceRuleBased  CompilationSource = "rule_based"
	SourceLLM        CompilationSource = "llm"
)

// Compilation warning codes appended when the assisted path degrades.
const (
	WarnLLMDisabled    = "llm_disabled"
	WarnLLMParseFailed = "llm_parse_failed"
	WarnLLMInvalidSpec = "llm_invalid_spec"
	WarnLLMUnavailable = "llm_unavailable"
	WarnSignalStripped = "premium_signal_stripped"
	WarnCeilingLowered = "row_ceiling_lowered"
)

// CompilationResult is the output of every compiler path. Golden-path
// results are trusted by construction; rule-based and LLM results have
// passed the identical validator before they get here.
type CompilationResult struct {
	Spec     TableSpec         `json:"spec"`
	Source   CompilationSource `json:"source"`
	Warnings []string          `json:"warnings"`
}
