package service

import (
	"context"
	"fmt"

	"go-device-gateway/internal/model"
)

type deviceGateway interface {
	SetSwitch(ctx context.Context, grant model.AccessGrant, deviceID string, state string) error
	SetSwitches(ctx context.Context, grant model.AccessGrant, deviceID string, switches []model.OutletSwitch) error
	ListThings(ctx context.Context, grant model.AccessGrant) ([]model.Device, error)
}

// DeviceService forwards control and listing operations to the cloud.
type DeviceService struct {
	gateway deviceGateway
}

func NewDeviceService(gateway deviceGateway) *DeviceService {
	return &DeviceService{gateway: gateway}
}

// Control applies a switch request. Multi-channel requests carry explicit
// per-outlet entries; otherwise the single global switch is set. Input
// validation happened at the handler boundary.
func (s *DeviceService) Control(ctx context.Context, grant model.AccessGrant, req model.ControlRequest) error {
	var err error
	if len(req.Switches) > 0 {
		err = s.gateway.SetSwitches(ctx, grant, req.DeviceID, req.Switches)
	} else {
		err = s.gateway.SetSwitch(ctx, grant, req.DeviceID, req.Switch)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrGatewayFailure, err)
	}

	return nil
}

// ListDevices fetches the account's full device list.
func (s *DeviceService) ListDevices(ctx context.Context, grant model.AccessGrant) ([]model.Device, error) {
	devices, err := s.gateway.ListThings(ctx, grant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGatewayFailure, err)
	}

	return devices, nil
}
