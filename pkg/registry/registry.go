// Package registry is the single source of truth for which signal
// names, filter fields, and operators are legal in a TableSpec, and for
// resolving informal area and city tokens to canonical scope values.
//
// Lookups never fail hard: unknown tokens resolve to false or the empty
// string and callers decide whether that is fatal.
package registry

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Signal describes one entry in the closed signal vocabulary.
type Signal struct {
	Name       string            `yaml:"name"`
	Grains     []models.RowGrain `yaml:"grains"`
	Operators  []models.FilterOp `yaml:"operators"`
	Premium    bool              `yaml:"premium"`
	DefaultFor []models.RowGrain `yaml:"default_for"`
}

type catalog struct {
	Signals     []Signal          `yaml:"signals"`
	AreaAliases map[string]string `yaml:"area_aliases"`
	CityAliases map[string]string `yaml:"city_aliases"`
}

// Registry exposes the signal vocabulary and alias tables. It is
// immutable after Load and safe for concurrent use.
type Registry struct {
	signals     map[string]Signal
	byGrain     map[models.RowGrain][]string
	defaults    map[models.RowGrain][]string
	areaAliases map[string]string
	cityAliases map[string]string
}

// Load parses the embedded catalog into a Registry.
func Load() (*Registry, error) {
	var cat catalog
	if err := yaml.Unmarshal(catalogYAML, &cat); err != nil {
		return nil, fmt.Errorf("parse signal catalog: %w", err)
	}

	r := &Registry{
		signals:     make(map[string]Signal, len(cat.Signals)),
		byGrain:     make(map[models.RowGrain][]string),
		defaults:    make(map[models.RowGrain][]string),
		areaAliases: make(map[string]string, len(cat.AreaAliases)),
		cityAliases: make(map[string]string, len(cat.CityAliases)),
	}

	for _, sig := range cat.Signals {
		if _, dup := r.signals[sig.Name]; dup {
			return nil, fmt.Errorf("duplicate signal %q in catalog", sig.Name)
		}
		r.signals[sig.Name] = sig
		// Catalog order defines the per-grain vocabulary order and
		// the default bundle order.
		for _, grain := range sig.Grains {
			r.byGrain[grain] = append(r.byGrain[grain], sig.Name)
		}
		for _, grain := range sig.DefaultFor {
			r.defaults[grain] = append(r.defaults[grain], sig.Name)
		}
	}

	for alias, canonical := range cat.AreaAliases {
		r.areaAliases[strings.ToLower(alias)] = canonical
	}
	for alias, canonical := range cat.CityAliases {
		r.cityAliases[strings.ToLower(alias)] = canonical
	}

	return r, nil
}

// MustLoad is Load for wiring paths where the embedded catalog is known
// good. Panics on parse failure.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(err)
	}
	return r
}

// IsAllowedSignal reports whether name is in the closed vocabulary.
func (r *Registry) IsAllowedSignal(name string) bool {
	_, ok := r.signals[name]
	return ok
}

// IsPremiumSignal reports whether the named signal is premium-gated.
// Unknown signals are not premium; they fail validation instead.
func (r *Registry) IsPremiumSignal(name string) bool {
	sig, ok := r.signals[name]
	return ok && sig.Premium
}

// AllowedOperatorsFor returns the operator set legal for the named
// field, or nil when the field is unknown.
func (r *Registry) AllowedOperatorsFor(field string) map[models.FilterOp]bool {
	sig, ok := r.signals[field]
	if !ok {
		return nil
	}
	ops := make(map[models.FilterOp]bool, len(sig.Operators))
	for _, op := range sig.Operators {
		ops[op] = true
	}
	return ops
}

// IsOperatorAllowed reports whether op is legal for field.
func (r *Registry) IsOperatorAllowed(field string, op models.FilterOp) bool {
	sig, ok := r.signals[field]
	if !ok {
		return false
	}
	for _, allowed := range sig.Operators {
		if allowed == op {
			return true
		}
	}
	return false
}

// ExistsAtGrain reports whether the signal exists at the given row
// grain (gfa_sqm is project-only, beds is asset-only).
func (r *Registry) ExistsAtGrain(name string, grain models.RowGrain) bool {
	sig, ok := r.signals[name]
	if !ok {
		return false
	}
	for _, g := range sig.Grains {
		if g == grain {
			return true
		}
	}
	return false
}

// SignalsFor returns every signal legal at the given row grain, in
// catalog order. The returned slice is a copy.
func (r *Registry) SignalsFor(grain models.RowGrain) []string {
	return append([]string(nil), r.byGrain[grain]...)
}

// DefaultSignals returns the default signal bundle for a row grain, in
// catalog order. The returned slice is a copy.
func (r *Registry) DefaultSignals(grain models.RowGrain) []string {
	return append([]string(nil), r.defaults[grain]...)
}

// ResolveArea resolves an informal area token ("jvc", "dubai marina")
// to its canonical name. Returns "" when the token is unknown.
func (r *Registry) ResolveArea(token string) string {
	return r.areaAliases[strings.ToLower(strings.TrimSpace(token))]
}

// ResolveCity resolves an informal city token to its canonical name.
// Returns "" when the token is unknown.
func (r *Registry) ResolveCity(token string) string {
	return r.cityAliases[strings.ToLower(strings.TrimSpace(token))]
}

// MaxAliasWords is the longest alias length in words, the n-gram window
// the intent parser scans with.
func (r *Registry) MaxAliasWords() int {
	max := 1
	for alias := range r.areaAliases {
		if n := len(strings.Fields(alias)); n > max {
			max = n
		}
	}
	for alias := range r.cityAliases {
		if n := len(strings.Fields(alias)); n > max {
			max = n
		}
	}
	return max
}
