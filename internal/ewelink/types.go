package ewelink

import (
	"encoding/json"

	"go-device-gateway/internal/model"
)

// envelope is the {error, msg, data} wrapper every API response carries.
// error 0 means success regardless of HTTP status.
type envelope struct {
	Error int             `json:"error"`
	Msg   string          `json:"msg"`
	Data  json.RawMessage `json:"data"`
}

// OAuthTokenData is the payload of a successful authorization-code exchange.
// Expiry times are millisecond epoch timestamps.
type OAuthTokenData struct {
	AccessToken      string `json:"accessToken"`
	AccessExpiresAt  int64  `json:"atExpiredTime"`
	RefreshToken     string `json:"refreshToken"`
	RefreshExpiresAt int64  `json:"rtExpiredTime"`
}

// RefreshData is the payload of a successful token refresh. The platform
// rotates both tokens but reports no expiries; callers derive them from the
// documented 30/60 day lifetimes.
type RefreshData struct {
	AccessToken  string `json:"at"`
	RefreshToken string `json:"rt"`
}

type thingItem struct {
	ItemType int          `json:"itemType"`
	ItemData model.Device `json:"itemData"`
}

type thingListData struct {
	Total     int         `json:"total"`
	ThingList []thingItem `json:"thingList"`
}

type thingStatusData struct {
	Params json.RawMessage `json:"params"`
}

type timersParams struct {
	Timers []model.DeviceTimer `json:"timers"`
}
