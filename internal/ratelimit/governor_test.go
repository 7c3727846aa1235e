package ratelimit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/logger"
)

type stubStatus struct {
	info *model.RateLimitInfo
	err  error
}

func (s *stubStatus) RateLimitStatus(ctx context.Context) (*model.RateLimitInfo, error) {
	return s.info, s.err
}

func TestAllowed_DeniesAtZeroRemaining(t *testing.T) {
	stub := &stubStatus{info: &model.RateLimitInfo{
		Role: model.TierUser, Limit: 100, Remaining: 0, WindowMs: 3600000,
	}}
	g := New(stub, model.TierUser, logger.NewNop())
	g.Refresh(context.Background())

	require.False(t, g.Allowed())

	// A refresh reporting quota again re-enables sends.
	stub.info = &model.RateLimitInfo{Role: model.TierUser, Limit: 100, Remaining: 5, WindowMs: 3600000}
	g.Refresh(context.Background())
	require.True(t, g.Allowed())
}

func TestAllowed_RootAdminUnlimited(t *testing.T) {
	stub := &stubStatus{info: &model.RateLimitInfo{
		Role: model.TierRootAdmin, Limit: 0, Remaining: 0,
	}}
	g := New(stub, model.TierRootAdmin, logger.NewNop())
	g.Refresh(context.Background())

	require.True(t, g.Allowed(), "top tier must always be permitted regardless of remaining")
}

func TestRefresh_FallsBackOnTransportFailure(t *testing.T) {
	stub := &stubStatus{err: errors.New("connection refused")}
	g := New(stub, model.TierUser, logger.NewNop())

	info := g.Refresh(context.Background())
	require.Equal(t, model.TierUser, info.Role)
	require.Equal(t, 100, info.Limit)
	require.Positive(t, info.Remaining, "fallback must not lock the user out")
	require.True(t, g.Allowed())
}

func TestNote_DecrementsCachedRemaining(t *testing.T) {
	stub := &stubStatus{info: &model.RateLimitInfo{
		Role: model.TierUser, Limit: 100, Remaining: 2, WindowMs: 3600000,
	}}
	g := New(stub, model.TierUser, logger.NewNop())
	g.Refresh(context.Background())

	g.Note()
	require.Equal(t, 1, g.Info().Remaining)
	g.Note()
	require.Equal(t, 0, g.Info().Remaining)
	require.False(t, g.Allowed())
}
