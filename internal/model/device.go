package model

import "encoding/json"

// Device is one entry of the account's thing list, trimmed to the fields the
// control page needs. Params is passed through untouched since its shape
// varies per device type.
type Device struct {
	DeviceID   string          `json:"deviceid"`
	Name       string          `json:"name"`
	Online     bool            `json:"online"`
	Brand      string          `json:"brandName,omitempty"`
	Model      string          `json:"productModel,omitempty"`
	ChannelCnt int             `json:"channelCount,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
}
