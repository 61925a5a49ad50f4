package model

// OutletSwitch addresses a single outlet of a multi-channel device.
type OutletSwitch struct {
	Switch string `json:"switch"`
	Outlet int    `json:"outlet"`
}

// TimerAction is the state change a timer applies when it fires. Exactly one
// of Switch (single-channel) or Switches (one entry per outlet) is set.
type TimerAction struct {
	Switch   string         `json:"switch,omitempty"`
	Switches []OutletSwitch `json:"switches,omitempty"`
}

// TimerDescriptor is a locally constructed one-shot device timer in the wire
// shape the cloud's thing-status endpoint expects. At is an ISO-8601 UTC
// instant; Enabled uses the platform's 0/1 encoding; Period is the delay in
// minutes as a string.
type TimerDescriptor struct {
	MID       string      `json:"mId"`
	Type      string      `json:"type"`
	TimerKind string      `json:"coolkit_timer_type"`
	At        string      `json:"at"`
	Enabled   int         `json:"enabled"`
	Do        TimerAction `json:"do"`
	Period    string      `json:"period"`
}

// DeviceTimer is one entry of a device's reported timer list. Only MID and
// Enabled matter for verification; the rest is carried through for display.
type DeviceTimer struct {
	MID       string      `json:"mId"`
	Type      string      `json:"type,omitempty"`
	TimerKind string      `json:"coolkit_timer_type,omitempty"`
	At        string      `json:"at,omitempty"`
	Enabled   int         `json:"enabled"`
	Do        TimerAction `json:"do"`
	Period    string      `json:"period,omitempty"`
}

// Live reports whether the timer counts as an active commitment. A timer
// that exists but is disabled does not.
func (t DeviceTimer) Live() bool {
	return t.Enabled == 1
}

// TimerVerification is the outcome of checking a submitted timer against the
// device's current timer list.
type TimerVerification struct {
	Present bool          `json:"present"`
	Timers  []DeviceTimer `json:"timers"`
}
