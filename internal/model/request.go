package model

// ControlRequest switches a device (or individual outlets of a multi-channel
// device) on or off. Exactly one of Switch or Switches must be supplied.
type ControlRequest struct {
	DeviceID string         `json:"deviceId"`
	Switch   string         `json:"switch,omitempty"`
	Switches []OutletSwitch `json:"switches,omitempty"`
}

// SetTimerRequest schedules a delayed shutoff. ChannelCount above 1 marks a
// multi-channel device and produces one shutoff action per outlet.
type SetTimerRequest struct {
	DeviceID     string `json:"deviceId"`
	Minutes      int    `json:"minutes"`
	ChannelCount int    `json:"channelCount,omitempty"`
}

// VerifyTimerRequest checks that a previously submitted timer is still
// present and enabled on the device.
type VerifyTimerRequest struct {
	DeviceID string `json:"deviceId"`
	TimerID  string `json:"timerId"`
}
