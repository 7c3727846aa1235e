package model

// RoleTier is the category of caller used for quota decisions.
type RoleTier string

const (
	TierPublic    RoleTier = "public"
	TierUser      RoleTier = "user"
	TierAdmin     RoleTier = "admin"
	TierRootAdmin RoleTier = "rootadmin"
)

// Unlimited reports whether the tier is exempt from quota gating.
func (t RoleTier) Unlimited() bool {
	return t == TierRootAdmin
}

// RateLimitInfo mirrors the backend's quota state for the caller. It is
// a cached view for UX gating only; the backend enforces the real limit.
type RateLimitInfo struct {
	Role      RoleTier `json:"role"`
	Limit     int      `json:"limit"`
	Remaining int      `json:"remaining"`
	WindowMs  int64    `json:"windowMs"`
}
