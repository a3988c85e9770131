package capacityservice

import (
	"context"
	"testing"

	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo *FakeCapacityRepo) *CapacityService {
	return NewCapacityService(repo, ReleaseByRegistration, nil, observability.NoopMetrics{}, noop.NewTracerProvider().Tracer("test"), nil)
}

func TestCapacityService_ReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeCapacityRepo()
	repo.SetCapacity(fiveK, ptr(2))
	svc := newTestService(repo)

	ids, err := svc.Reserve(ctx, fiveK, 0, 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	_, err = svc.Reserve(ctx, fiveK, 0, 1)
	assert.ErrorIs(t, err, apperr.ErrCapacityExceeded)

	avail, err := svc.Remaining(ctx, fiveK)
	require.NoError(t, err)
	assert.Equal(t, Availability{CategoryID: fiveK, Remaining: 0, Limited: true}, avail)

	n, err := svc.Release(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	avail, err = svc.Remaining(ctx, fiveK)
	require.NoError(t, err)
	assert.Equal(t, 2, avail.Remaining)
}

func TestCapacityService_UnknownCategory(t *testing.T) {
	_, err := newTestService(NewFakeCapacityRepo()).Remaining(context.Background(), 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
