package models

// Tier is the caller's subscription level. It bounds which signals and
// row counts a TableSpec may request.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// IsValid returns true if the tier is a known subscription level.
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierPro, TierEnterprise:
		return true
	default:
		return false
	}
}

// Entitlements is the capability set passed alongside a TableSpec into
// enforcement. Enforcement only ever narrows a spec against these.
type Entitlements struct {
	Tier Tier `json:"tier"`

	// RowCeiling is the maximum materialized row count for this tier.
	RowCeiling int `json:"row_ceiling"`

	// PremiumSignals is true when the tier may project premium-gated
	// signals (e.g. transaction-level yield history).
	PremiumSignals bool `json:"premium_signals"`
}

// FreeEntitlements returns the default capability set for anonymous and
// free-tier callers.
func FreeEntitlements() Entitlements {
	return Entitlements{Tier: TierFree, RowCeiling: 50, PremiumSignals: false}
}

// ProEntitlements returns the capability set for pro-tier callers.
func ProEntitlements() Entitlements {
	return Entitlements{Tier: TierPro, RowCeiling: 500, PremiumSignals: true}
}

// EnterpriseEntitlements returns the capability set for enterprise
// callers, including pre-validated direct spec construction.
func EnterpriseEntitlements() Entitlements {
	return Entitlements{Tier: TierEnterprise, RowCeiling: 5000, PremiumSignals: true}
}

// ForTier maps a tier to its default entitlements. Unknown tiers map to
// free, never to a broader capability set.
func ForTier(t Tier) Entitlements {
	switch t {
	case TierPro:
		return ProEntitlements()
	case TierEnterprise:
		return EnterpriseEntitlements()
	default:
		return FreeEntitlements()
	}
}
