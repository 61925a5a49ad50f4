package model

// Every endpoint answers with an {error: 0|1, ...} shaped body; error 1
// always carries msg.

type ErrorResponse struct {
	Error int    `json:"error"`
	Msg   string `json:"msg"`
}

type ControlResponse struct {
	Error int `json:"error"`
}

type SetTimerResponse struct {
	Error   int    `json:"error"`
	TimerID string `json:"timerId"`
	At      string `json:"at"`
}

type VerifyTimerResponse struct {
	Error   int           `json:"error"`
	Present bool          `json:"present"`
	Timers  []DeviceTimer `json:"timers"`
}

type DevicesResponse struct {
	Error   int      `json:"error"`
	Devices []Device `json:"devices"`
}

type LogoutResponse struct {
	Error     int  `json:"error"`
	LoggedOut bool `json:"loggedOut"`
}

type SessionResponse struct {
	Error         int    `json:"error"`
	Authenticated bool   `json:"authenticated"`
	Region        string `json:"region,omitempty"`
}
