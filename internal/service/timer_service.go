package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"go-device-gateway/internal/model"
)

// The cloud stores timer instants as ISO-8601 UTC with millisecond
// precision.
const timerTimeLayout = "2006-01-02T15:04:05.000Z"

type timerGateway interface {
	SubmitTimers(ctx context.Context, grant model.AccessGrant, deviceID string, timers []model.TimerDescriptor) error
	GetTimers(ctx context.Context, grant model.AccessGrant, deviceID string) ([]model.DeviceTimer, error)
}

// TimerService constructs delayed-shutoff timers, submits them to the cloud,
// and verifies their placement afterwards. The cloud is the source of truth
// for whether a timer will fire; submission only confirms acceptance.
type TimerService struct {
	gateway timerGateway
	now     func() time.Time
}

func NewTimerService(gateway timerGateway) *TimerService {
	return &TimerService{gateway: gateway, now: time.Now}
}

// CreateTimer builds a one-shot shutoff timer firing delayMinutes from now.
// Pure construction, no I/O; callers validate delayMinutes > 0 first. A
// channelCount above 1 produces one shutoff entry per outlet, anything else
// a single global shutoff. The timer id comes from a crypto-strength random
// source so concurrently created timers on one device can never collide.
func (s *TimerService) CreateTimer(delayMinutes int, channelCount int) model.TimerDescriptor {
	var action model.TimerAction
	if channelCount > 1 {
		action.Switches = make([]model.OutletSwitch, 0, channelCount)
		for outlet := 0; outlet < channelCount; outlet++ {
			action.Switches = append(action.Switches, model.OutletSwitch{Switch: "off", Outlet: outlet})
		}
	} else {
		action.Switch = "off"
	}

	executeAt := s.now().UTC().Add(time.Duration(delayMinutes) * time.Minute)

	return model.TimerDescriptor{
		MID:       uuid.NewString(),
		Type:      "once",
		TimerKind: "delay",
		At:        executeAt.Format(timerTimeLayout),
		Enabled:   1,
		Do:        action,
		Period:    strconv.Itoa(delayMinutes),
	}
}

// SubmitTimer writes the descriptor to the device's timer list. Failures are
// reported as gateway failures and never retried here; retry policy belongs
// to the caller.
func (s *TimerService) SubmitTimer(ctx context.Context, grant model.AccessGrant, deviceID string, timer model.TimerDescriptor) error {
	if err := s.gateway.SubmitTimers(ctx, grant, deviceID, []model.TimerDescriptor{timer}); err != nil {
		return fmt.Errorf("%w: %v", model.ErrGatewayFailure, err)
	}

	return nil
}

// VerifyTimer fetches the device's current timer list and reports whether an
// entry with the given id exists and is enabled. A disabled timer is not an
// active commitment and reports as absent.
func (s *TimerService) VerifyTimer(ctx context.Context, grant model.AccessGrant, deviceID string, timerID string) (model.TimerVerification, error) {
	timers, err := s.gateway.GetTimers(ctx, grant, deviceID)
	if err != nil {
		return model.TimerVerification{}, fmt.Errorf("%w: %v", model.ErrGatewayFailure, err)
	}

	verification := model.TimerVerification{Timers: timers}
	for _, timer := range timers {
		if timer.MID == timerID && timer.Live() {
			verification.Present = true
			break
		}
	}

	return verification, nil
}
