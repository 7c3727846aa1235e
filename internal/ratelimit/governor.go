// Package ratelimit caches the backend's quota state and gates sends
// locally. The backend is the authority; this exists only to avoid
// doomed requests and drive the sign-in prompt.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/logger"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/metrics"
)

// StatusClient fetches the caller's quota from the backend.
type StatusClient interface {
	RateLimitStatus(ctx context.Context) (*model.RateLimitInfo, error)
}

// roleDefault is the locally assumed quota when the status endpoint is
// unreachable.
type roleDefault struct {
	limit  int
	window time.Duration
}

var roleDefaults = map[model.RoleTier]roleDefault{
	model.TierPublic: {limit: 10, window: time.Hour},
	model.TierUser:   {limit: 100, window: time.Hour},
	model.TierAdmin:  {limit: 1000, window: time.Hour},
}

// Governor tracks the remaining-quota counter for one widget instance.
type Governor struct {
	client StatusClient
	role   model.RoleTier
	log    *logger.Logger

	mu       sync.Mutex
	info     model.RateLimitInfo
	fallback *rate.Limiter
}

// New creates a governor for the given caller role. Until the first
// Refresh the governor runs on the local per-role default.
func New(client StatusClient, role model.RoleTier, log *logger.Logger) *Governor {
	g := &Governor{client: client, role: role, log: log}

	def := roleDefaults[role]
	if role.Unlimited() {
		g.fallback = rate.NewLimiter(rate.Inf, 1)
	} else {
		g.fallback = rate.NewLimiter(rate.Every(def.window/time.Duration(max(def.limit, 1))), def.limit)
	}
	g.info = g.localInfo()
	return g
}

// Allowed reports whether a send is currently permitted. The
// unrestricted top tier is always permitted regardless of remaining.
func (g *Governor) Allowed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.info.Role.Unlimited() {
		return true
	}
	allowed := g.info.Remaining > 0
	if !allowed {
		metrics.RecordRateDenial(string(g.info.Role))
	}
	return allowed
}

// Info returns the current cached quota view.
func (g *Governor) Info() model.RateLimitInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.info
}

// Note records a completed send against the local fallback estimate so
// the cached view stays roughly honest between refreshes.
func (g *Governor) Note() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fallback.Allow()
	if !g.info.Role.Unlimited() && g.info.Remaining > 0 {
		g.info.Remaining--
	}
}

// Refresh polls the backend for the authoritative quota. On transport
// failure it falls back to the locally computed default rather than
// blocking the UI; the error is logged, never returned.
func (g *Governor) Refresh(ctx context.Context) model.RateLimitInfo {
	info, err := g.client.RateLimitStatus(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil || info == nil {
		g.log.Warn("rate limit refresh failed, using local default", "error", err, "role", g.role)
		g.info = g.localInfo()
		return g.info
	}
	g.info = *info
	return g.info
}

// localInfo derives a quota view from the fallback limiter.
func (g *Governor) localInfo() model.RateLimitInfo {
	def := roleDefaults[g.role]
	info := model.RateLimitInfo{
		Role:     g.role,
		Limit:    def.limit,
		WindowMs: def.window.Milliseconds(),
	}
	if g.role.Unlimited() {
		info.Remaining = -1
		return info
	}
	tokens := int(g.fallback.Tokens())
	if tokens < 0 {
		tokens = 0
	}
	info.Remaining = tokens
	return info
}
