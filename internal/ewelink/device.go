package ewelink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go-device-gateway/internal/model"
)

const (
	thingStatusPath = "/v2/device/thing/status"
	thingListPath   = "/v2/device/thing"

	thingListPageSize = 30
)

type thingStatusRequest struct {
	Type   int    `json:"type"`
	ID     string `json:"id"`
	Params any    `json:"params"`
}

// SetSwitch turns a single-channel device on or off. state is "on" or "off".
func (c *Client) SetSwitch(ctx context.Context, grant model.AccessGrant, deviceID string, state string) error {
	return c.setThingStatus(ctx, grant, deviceID, map[string]string{"switch": state})
}

// SetSwitches addresses individual outlets of a multi-channel device.
func (c *Client) SetSwitches(ctx context.Context, grant model.AccessGrant, deviceID string, switches []model.OutletSwitch) error {
	return c.setThingStatus(ctx, grant, deviceID, map[string]any{"switches": switches})
}

// SubmitTimers writes the device's timer list. The cloud accepting the write
// confirms placement only, never execution.
func (c *Client) SubmitTimers(ctx context.Context, grant model.AccessGrant, deviceID string, timers []model.TimerDescriptor) error {
	return c.setThingStatus(ctx, grant, deviceID, map[string]any{"timers": timers})
}

func (c *Client) setThingStatus(ctx context.Context, grant model.AccessGrant, deviceID string, params any) error {
	body := thingStatusRequest{Type: 1, ID: deviceID, Params: params}
	return c.doBearer(ctx, http.MethodPost, grant.Region, thingStatusPath, nil, grant.AccessToken, body, nil)
}

// GetStatus fetches the named status fields of a device and returns the raw
// params object.
func (c *Client) GetStatus(ctx context.Context, grant model.AccessGrant, deviceID string, fields []string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("type", "1")
	q.Set("id", deviceID)
	if len(fields) > 0 {
		q.Set("params", strings.Join(fields, "|"))
	}

	var data thingStatusData
	if err := c.doBearer(ctx, http.MethodGet, grant.Region, thingStatusPath, q, grant.AccessToken, nil, &data); err != nil {
		return nil, err
	}

	return data.Params, nil
}

// GetTimers fetches the device's current timer list.
func (c *Client) GetTimers(ctx context.Context, grant model.AccessGrant, deviceID string) ([]model.DeviceTimer, error) {
	raw, err := c.GetStatus(ctx, grant, deviceID, []string{"timers"})
	if err != nil {
		return nil, err
	}

	// A device with no timers reports params without the field at all.
	if len(raw) == 0 {
		return nil, nil
	}

	var params timersParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}

	return params.Timers, nil
}

// ListThings fetches every device of the account, walking the paginated
// thing list to the end.
func (c *Client) ListThings(ctx context.Context, grant model.AccessGrant) ([]model.Device, error) {
	var devices []model.Device

	beginIndex := -9999 // the API's magic first-page marker
	for {
		q := url.Values{}
		q.Set("num", strconv.Itoa(thingListPageSize))
		q.Set("beginIndex", strconv.Itoa(beginIndex))

		var page thingListData
		if err := c.doBearer(ctx, http.MethodGet, grant.Region, thingListPath, q, grant.AccessToken, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.ThingList {
			devices = append(devices, item.ItemData)
		}

		if len(page.ThingList) == 0 || len(devices) >= page.Total {
			return devices, nil
		}

		beginIndex = len(devices)
	}
}
