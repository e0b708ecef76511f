// Package tablespec is the policy gate for declarative queries: every
// TableSpec passes through Validate and Enforce before it can reach the
// materializer, whether it arrived via golden path, rule-based compile,
// LLM compile, or direct caller construction.
package tablespec

import (
	"fmt"

	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/registry"
)

// Result is the outcome of structural validation. Errors holds every
// violation found in the first failing rule category.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validator checks TableSpecs against the signal registry.
type Validator struct {
	registry *registry.Registry
}

// NewValidator creates a validator over the given registry.
func NewValidator(reg *registry.Registry) *Validator {
	return &Validator{registry: reg}
}

// Validate runs the structural validation rules in order, short-
// circuiting on the first category of failure but collecting all errors
// within that category:
//
//  1. the signal set must be non-empty and every signal registry-known
//  2. every filter field must be registry-known and its operator in
//     that field's allowed set
//  3. row_grain must be one of the two enumerated values
//
// The empty-set rule holds here rather than in enforcement so that a
// zero-signal spec is a caller fault at the gate, no matter how the
// spec was constructed.
func (v *Validator) Validate(spec models.TableSpec) Result {
	if errs := v.validateSignals(spec); len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}
	if errs := v.validateFilters(spec); len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}
	if !spec.RowGrain.IsValid() {
		return Result{Valid: false, Errors: []string{
			fmt.Sprintf("%s: %q", apperrors.CodeInvalidRowGrain, spec.RowGrain),
		}}
	}
	return Result{Valid: true}
}

func (v *Validator) validateSignals(spec models.TableSpec) []string {
	if len(spec.Signals) == 0 {
		return []string{fmt.Sprintf("%s: a spec must project at least one signal", apperrors.CodeEmptySignalSet)}
	}
	var errs []string
	for _, sig := range spec.Signals {
		if !v.registry.IsAllowedSignal(sig) {
			errs = append(errs, fmt.Sprintf("%s: %s", apperrors.CodeSignalNotAllowed, sig))
		}
	}
	return errs
}

func (v *Validator) validateFilters(spec models.TableSpec) []string {
	var errs []string
	for _, f := range spec.Filters {
		if !v.registry.IsAllowedSignal(f.Field) {
			errs = append(errs, fmt.Sprintf("%s: %s", apperrors.CodeFieldNotAllowed, f.Field))
			continue
		}
		if !v.registry.IsOperatorAllowed(f.Field, f.Op) {
			errs = append(errs, fmt.Sprintf("%s: %s on %s", apperrors.CodeOperatorNotAllowed, f.Op, f.Field))
		}
	}
	return errs
}

// DedupSignals collapses duplicate signals preserving first-seen order.
// Used by spec construction; validation itself never mutates a spec.
func DedupSignals(signals []string) []string {
	seen := make(map[string]bool, len(signals))
	out := make([]string, 0, len(signals))
	for _, sig := range signals {
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, sig)
	}
	return out
}
