package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-device-gateway/internal/model"
)

type fakeTimerGateway struct {
	submitted map[string][]model.TimerDescriptor
	timers    []model.DeviceTimer
	submitErr error
	getErr    error
}

func newFakeTimerGateway() *fakeTimerGateway {
	return &fakeTimerGateway{submitted: map[string][]model.TimerDescriptor{}}
}

func (g *fakeTimerGateway) SubmitTimers(_ context.Context, _ model.AccessGrant, deviceID string, timers []model.TimerDescriptor) error {
	if g.submitErr != nil {
		return g.submitErr
	}
	g.submitted[deviceID] = append(g.submitted[deviceID], timers...)
	return nil
}

func (g *fakeTimerGateway) GetTimers(_ context.Context, _ model.AccessGrant, _ string) ([]model.DeviceTimer, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.timers, nil
}

func TestTimerService_CreateTimer(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := NewTimerService(newFakeTimerGateway())
	svc.now = func() time.Time { return now }

	t.Run("single channel device gets a global shutoff", func(t *testing.T) {
		timer := svc.CreateTimer(5, 1)

		assert.Equal(t, "once", timer.Type)
		assert.Equal(t, "delay", timer.TimerKind)
		assert.Equal(t, 1, timer.Enabled)
		assert.Equal(t, "5", timer.Period)
		assert.Equal(t, "off", timer.Do.Switch)
		assert.Empty(t, timer.Do.Switches)
		assert.NotEmpty(t, timer.MID)

		at, err := time.Parse(timerTimeLayout, timer.At)
		require.NoError(t, err)
		assert.Equal(t, now.Add(5*time.Minute), at.UTC())
	})

	t.Run("multi channel device gets one shutoff per outlet", func(t *testing.T) {
		timer := svc.CreateTimer(30, 3)

		assert.Empty(t, timer.Do.Switch)
		require.Len(t, timer.Do.Switches, 3)
		for outlet, sw := range timer.Do.Switches {
			assert.Equal(t, "off", sw.Switch)
			assert.Equal(t, outlet, sw.Outlet)
		}
		assert.Equal(t, "30", timer.Period)
	})

	t.Run("unknown channel count falls back to a global shutoff", func(t *testing.T) {
		timer := svc.CreateTimer(10, 0)

		assert.Equal(t, "off", timer.Do.Switch)
		assert.Empty(t, timer.Do.Switches)
	})

	t.Run("timer ids never collide", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			timer := svc.CreateTimer(5, 1)
			assert.False(t, seen[timer.MID], "duplicate timer id %s", timer.MID)
			seen[timer.MID] = true
		}
	})
}

func TestTimerService_SubmitTimer(t *testing.T) {
	grant := model.AccessGrant{AccessToken: "at", Region: "us"}

	t.Run("submits a single descriptor", func(t *testing.T) {
		gateway := newFakeTimerGateway()
		svc := NewTimerService(gateway)

		timer := svc.CreateTimer(5, 1)
		err := svc.SubmitTimer(context.Background(), grant, "dev-1", timer)

		require.NoError(t, err)
		require.Len(t, gateway.submitted["dev-1"], 1)
		assert.Equal(t, timer.MID, gateway.submitted["dev-1"][0].MID)
	})

	t.Run("gateway errors surface as gateway failures", func(t *testing.T) {
		gateway := newFakeTimerGateway()
		gateway.submitErr = errors.New("cloud unavailable")
		svc := NewTimerService(gateway)

		err := svc.SubmitTimer(context.Background(), grant, "dev-1", svc.CreateTimer(5, 1))

		require.ErrorIs(t, err, model.ErrGatewayFailure)
	})
}

func TestTimerService_VerifyTimer(t *testing.T) {
	grant := model.AccessGrant{AccessToken: "at", Region: "us"}

	t.Run("reports present for a live matching timer", func(t *testing.T) {
		gateway := newFakeTimerGateway()
		gateway.timers = []model.DeviceTimer{
			{MID: "other", Enabled: 1},
			{MID: "target", Enabled: 1},
		}
		svc := NewTimerService(gateway)

		verification, err := svc.VerifyTimer(context.Background(), grant, "dev-1", "target")

		require.NoError(t, err)
		assert.True(t, verification.Present)
		assert.Len(t, verification.Timers, 2)
	})

	t.Run("reports absent when nothing matches", func(t *testing.T) {
		gateway := newFakeTimerGateway()
		gateway.timers = []model.DeviceTimer{{MID: "other", Enabled: 1}}
		svc := NewTimerService(gateway)

		verification, err := svc.VerifyTimer(context.Background(), grant, "dev-1", "target")

		require.NoError(t, err)
		assert.False(t, verification.Present)
	})

	t.Run("a disabled timer reports as absent", func(t *testing.T) {
		gateway := newFakeTimerGateway()
		gateway.timers = []model.DeviceTimer{{MID: "target", Enabled: 0}}
		svc := NewTimerService(gateway)

		verification, err := svc.VerifyTimer(context.Background(), grant, "dev-1", "target")

		require.NoError(t, err)
		assert.False(t, verification.Present)
		assert.Len(t, verification.Timers, 1, "the raw list still carries the disabled entry")
	})

	t.Run("empty timer list reports absent", func(t *testing.T) {
		svc := NewTimerService(newFakeTimerGateway())

		verification, err := svc.VerifyTimer(context.Background(), grant, "dev-1", "target")

		require.NoError(t, err)
		assert.False(t, verification.Present)
		assert.Empty(t, verification.Timers)
	})

	t.Run("gateway errors surface as gateway failures", func(t *testing.T) {
		gateway := newFakeTimerGateway()
		gateway.getErr = errors.New("cloud unavailable")
		svc := NewTimerService(gateway)

		_, err := svc.VerifyTimer(context.Background(), grant, "dev-1", "target")

		require.ErrorIs(t, err, model.ErrGatewayFailure)
	})
}
