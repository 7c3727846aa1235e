// Package auth derives the caller identity from the configured bearer
// token. The widget never verifies signatures; the backend is the
// authority. Claims are read only to pick a local state namespace and
// a default role tier.
package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/localstate"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
)

// Claims are the token fields the widget cares about.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Identity is the resolved caller identity.
type Identity struct {
	// Namespace keys all locally persisted state. GlobalNamespace when
	// unauthenticated.
	Namespace string
	// Role is the caller's quota tier as claimed by the token. The
	// backend independently decides the real tier.
	Role model.RoleTier
}

// FromToken derives an identity from a raw bearer token. An empty or
// unparseable token yields the anonymous public identity.
func FromToken(token string) Identity {
	anon := Identity{Namespace: localstate.GlobalNamespace, Role: model.TierPublic}
	if token == "" {
		return anon
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return anon
	}
	if claims.Subject == "" {
		return anon
	}

	id := Identity{Namespace: "user:" + claims.Subject, Role: model.TierUser}
	switch model.RoleTier(claims.Role) {
	case model.TierAdmin:
		id.Role = model.TierAdmin
	case model.TierRootAdmin:
		id.Role = model.TierRootAdmin
	}
	return id
}
