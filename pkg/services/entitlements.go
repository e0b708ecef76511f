package services

import (
	"context"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// EntitlementsProvider resolves a caller's capability set. The engine
// never infers entitlements from the spec itself; they always arrive
// from outside the compilation pipeline.
type EntitlementsProvider interface {
	// EntitlementsFor returns the capability set for a tier.
	EntitlementsFor(ctx context.Context, tier models.Tier) (models.Entitlements, error)
}

// staticEntitlements maps tiers to their built-in defaults. Unknown
// tiers resolve to free, never to a broader set.
type staticEntitlements struct{}

// NewStaticEntitlements creates the default tier-table provider.
func NewStaticEntitlements() EntitlementsProvider {
	return &staticEntitlements{}
}

func (p *staticEntitlements) EntitlementsFor(_ context.Context, tier models.Tier) (models.Entitlements, error) {
	return models.ForTier(tier), nil
}
