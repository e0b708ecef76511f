package tablespec

import (
	"fmt"

	"github.com/ezz-ae/entrestate-engine/pkg/apperrors"
	"github.com/ezz-ae/entrestate-engine/pkg/models"
	"github.com/ezz-ae/entrestate-engine/pkg/registry"
)

// Enforcer applies entitlement policy to structurally valid specs.
// Enforcement only ever narrows: it strips premium signals the tier
// does not cover and lowers the row ceiling, and it never adds a signal
// or expands scope. If narrowing would leave zero signals the spec is
// rejected with an entitlement violation, never silently emptied.
type Enforcer struct {
	registry *registry.Registry
}

// NewEnforcer creates an enforcer over the given registry.
func NewEnforcer(reg *registry.Registry) *Enforcer {
	return &Enforcer{registry: reg}
}

// Enforce returns a narrowed copy of spec permitted by the caller's
// entitlements, plus warnings describing what was narrowed. The input
// spec is never mutated.
func (e *Enforcer) Enforce(spec models.TableSpec, ent models.Entitlements) (models.TableSpec, []string, error) {
	out := spec.Clone()
	// Duplicate signals collapse here so the invariant holds for
	// every producer, not just the rule-based parser.
	out.Signals = DedupSignals(out.Signals)
	var warnings []string

	if !ent.PremiumSignals {
		kept := make([]string, 0, len(out.Signals))
		for _, sig := range out.Signals {
			if e.registry.IsPremiumSignal(sig) {
				warnings = append(warnings, fmt.Sprintf("%s: %s", models.WarnSignalStripped, sig))
				continue
			}
			kept = append(kept, sig)
		}
		if len(kept) == 0 && len(out.Signals) > 0 {
			return models.TableSpec{}, nil, &apperrors.EntitlementError{
				Tier:   string(ent.Tier),
				Reason: "no signals remain after premium gating",
			}
		}
		out.Signals = kept

		for _, f := range out.Filters {
			if e.registry.IsPremiumSignal(f.Field) {
				return models.TableSpec{}, nil, &apperrors.EntitlementError{
					Tier:   string(ent.Tier),
					Reason: fmt.Sprintf("filter on premium signal %s", f.Field),
				}
			}
		}
	}

	// Attach the tier's row ceiling; never raise one already present.
	if ent.RowCeiling > 0 {
		if out.RowCeiling == 0 || out.RowCeiling > ent.RowCeiling {
			if out.RowCeiling > ent.RowCeiling {
				warnings = append(warnings, fmt.Sprintf("%s: %d", models.WarnCeilingLowered, ent.RowCeiling))
			}
			out.RowCeiling = ent.RowCeiling
		}
	}

	return out, warnings, nil
}
