package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshAll(ctx context.Context) (int, error) {
	r.calls.Add(1)
	return 2, r.err
}

func TestNewAlertRefreshScheduler_Validation(t *testing.T) {
	_, err := NewAlertRefreshScheduler(AlertRefreshConfig{}, &countingRefresher{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewAlertRefreshScheduler(DefaultAlertRefreshConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAlertRefreshScheduler_RunsOnStartAndTicks(t *testing.T) {
	refresher := &countingRefresher{}
	s, err := NewAlertRefreshScheduler(AlertRefreshConfig{
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
	}, refresher, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool {
		return refresher.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	assert.False(t, s.LastRun().IsZero())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())

	stopped := refresher.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, refresher.calls.Load())

	require.NoError(t, s.Stop(ctx))
}

func TestAlertRefreshScheduler_WaitsForInterval(t *testing.T) {
	refresher := &countingRefresher{}
	s, err := NewAlertRefreshScheduler(AlertRefreshConfig{Interval: time.Hour}, refresher, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), refresher.calls.Load())
	require.NoError(t, s.Stop(context.Background()))
}

func TestAlertRefreshScheduler_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	refresher := &countingRefresher{err: errors.New("tenant lookup failed")}
	s, err := NewAlertRefreshScheduler(AlertRefreshConfig{Interval: time.Hour, RunOnStart: true}, refresher, zap.New(core))
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Alert refresh finished with errors").Len() == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}
