package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-device-gateway/internal/model"
)

type fakeDeviceGateway struct {
	singleCalls []string
	multiCalls  [][]model.OutletSwitch
	devices     []model.Device
	err         error
}

func (g *fakeDeviceGateway) SetSwitch(_ context.Context, _ model.AccessGrant, _ string, state string) error {
	g.singleCalls = append(g.singleCalls, state)
	return g.err
}

func (g *fakeDeviceGateway) SetSwitches(_ context.Context, _ model.AccessGrant, _ string, switches []model.OutletSwitch) error {
	g.multiCalls = append(g.multiCalls, switches)
	return g.err
}

func (g *fakeDeviceGateway) ListThings(_ context.Context, _ model.AccessGrant) ([]model.Device, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.devices, nil
}

func TestDeviceService_Control(t *testing.T) {
	grant := model.AccessGrant{AccessToken: "at", Region: "us"}

	t.Run("single switch request sets the global switch", func(t *testing.T) {
		gateway := &fakeDeviceGateway{}
		svc := NewDeviceService(gateway)

		err := svc.Control(context.Background(), grant, model.ControlRequest{DeviceID: "dev-1", Switch: "on"})

		require.NoError(t, err)
		assert.Equal(t, []string{"on"}, gateway.singleCalls)
		assert.Empty(t, gateway.multiCalls)
	})

	t.Run("per-outlet request sets individual outlets", func(t *testing.T) {
		gateway := &fakeDeviceGateway{}
		svc := NewDeviceService(gateway)

		switches := []model.OutletSwitch{{Switch: "off", Outlet: 0}, {Switch: "on", Outlet: 1}}
		err := svc.Control(context.Background(), grant, model.ControlRequest{DeviceID: "dev-1", Switches: switches})

		require.NoError(t, err)
		require.Len(t, gateway.multiCalls, 1)
		assert.Equal(t, switches, gateway.multiCalls[0])
		assert.Empty(t, gateway.singleCalls)
	})

	t.Run("gateway errors surface as gateway failures", func(t *testing.T) {
		gateway := &fakeDeviceGateway{err: errors.New("timeout")}
		svc := NewDeviceService(gateway)

		err := svc.Control(context.Background(), grant, model.ControlRequest{DeviceID: "dev-1", Switch: "on"})

		require.ErrorIs(t, err, model.ErrGatewayFailure)
	})
}

func TestDeviceService_ListDevices(t *testing.T) {
	grant := model.AccessGrant{AccessToken: "at", Region: "eu"}

	t.Run("returns the account device list", func(t *testing.T) {
		gateway := &fakeDeviceGateway{devices: []model.Device{
			{DeviceID: "dev-1", Name: "Heater", Online: true, ChannelCnt: 1},
			{DeviceID: "dev-2", Name: "Strip", Online: false, ChannelCnt: 4},
		}}
		svc := NewDeviceService(gateway)

		devices, err := svc.ListDevices(context.Background(), grant)

		require.NoError(t, err)
		require.Len(t, devices, 2)
		assert.Equal(t, "dev-1", devices[0].DeviceID)
	})

	t.Run("gateway errors surface as gateway failures", func(t *testing.T) {
		gateway := &fakeDeviceGateway{err: errors.New("timeout")}
		svc := NewDeviceService(gateway)

		_, err := svc.ListDevices(context.Background(), grant)

		require.ErrorIs(t, err, model.ErrGatewayFailure)
	})
}
