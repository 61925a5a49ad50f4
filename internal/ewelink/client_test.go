package ewelink

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-device-gateway/internal/model"
)

const (
	testAppID     = "app-id"
	testAppSecret = "app-secret"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(testAppID, testAppSecret, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func expectedSign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testAppSecret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func writeEnvelope(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": 0, "msg": "", "data": json.RawMessage(raw)})
}

func TestClient_LoginURL(t *testing.T) {
	c := New(testAppID, testAppSecret)

	loginURL := c.LoginURL("http://127.0.0.1:4001/redirectUrl", "state-123")

	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	assert.Equal(t, "c2ccdn.coolkit.cc", parsed.Host)

	q := parsed.Query()
	assert.Equal(t, testAppID, q.Get("clientId"))
	assert.Equal(t, "authorization_code", q.Get("grantType"))
	assert.Equal(t, "http://127.0.0.1:4001/redirectUrl", q.Get("redirectUrl"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Len(t, q.Get("nonce"), 8)

	seq := q.Get("seq")
	require.NotEmpty(t, seq)
	assert.Equal(t, expectedSign([]byte(testAppID+"_"+seq)), q.Get("authorization"))
}

func TestClient_ExchangeCode(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody []byte
		gotHdr  http.Header
	)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotHdr = r.Header.Clone()
		gotBody = mustReadAll(t, r)
		writeEnvelope(w, OAuthTokenData{
			AccessToken:      "at-1",
			RefreshToken:     "rt-1",
			AccessExpiresAt:  1700000000000,
			RefreshExpiresAt: 1800000000000,
		})
	})

	data, err := c.ExchangeCode(context.Background(), "eu", "code-xyz", "http://127.0.0.1:4001/redirectUrl")

	require.NoError(t, err)
	assert.Equal(t, "/v2/user/oauth/token", gotPath)
	assert.Equal(t, testAppID, gotHdr.Get("X-CK-Appid"))
	assert.Len(t, gotHdr.Get("X-CK-Nonce"), 8)
	assert.Equal(t, "Sign "+expectedSign(gotBody), gotAuth, "authorization must sign the exact raw body")

	var body map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, "code-xyz", body["code"])
	assert.Equal(t, "authorization_code", body["grantType"])
	assert.Equal(t, "http://127.0.0.1:4001/redirectUrl", body["redirectUrl"])

	assert.Equal(t, "at-1", data.AccessToken)
	assert.Equal(t, "rt-1", data.RefreshToken)
	assert.Equal(t, int64(1700000000000), data.AccessExpiresAt)
}

func TestClient_RefreshToken(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody []byte
	)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody = mustReadAll(t, r)
		writeEnvelope(w, RefreshData{AccessToken: "at-2", RefreshToken: "rt-2"})
	})

	data, err := c.RefreshToken(context.Background(), "us", "at-old", "rt-old")

	require.NoError(t, err)
	assert.Equal(t, "/v2/user/refresh", gotPath)
	assert.Equal(t, "Bearer at-old", gotAuth)
	assert.JSONEq(t, `{"rt":"rt-old"}`, string(gotBody))
	assert.Equal(t, "at-2", data.AccessToken)
	assert.Equal(t, "rt-2", data.RefreshToken)
}

func TestClient_SetSwitch(t *testing.T) {
	var gotBody []byte
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, thingStatusPath, r.URL.Path)
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		gotBody = mustReadAll(t, r)
		writeEnvelope(w, nil)
	})

	grant := model.AccessGrant{AccessToken: "at-1", Region: "us"}
	err := c.SetSwitch(context.Background(), grant, "dev-1", "off")

	require.NoError(t, err)
	assert.JSONEq(t, `{"type":1,"id":"dev-1","params":{"switch":"off"}}`, string(gotBody))
}

func TestClient_SubmitTimers(t *testing.T) {
	var gotBody []byte
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody = mustReadAll(t, r)
		writeEnvelope(w, nil)
	})

	grant := model.AccessGrant{AccessToken: "at-1", Region: "us"}
	timer := model.TimerDescriptor{
		MID:       "timer-1",
		Type:      "once",
		TimerKind: "delay",
		At:        "2026-03-14T12:05:00.000Z",
		Enabled:   1,
		Do:        model.TimerAction{Switch: "off"},
		Period:    "5",
	}
	err := c.SubmitTimers(context.Background(), grant, "dev-1", []model.TimerDescriptor{timer})

	require.NoError(t, err)

	var body struct {
		Type   int    `json:"type"`
		ID     string `json:"id"`
		Params struct {
			Timers []map[string]any `json:"timers"`
		} `json:"params"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, 1, body.Type)
	assert.Equal(t, "dev-1", body.ID)
	require.Len(t, body.Params.Timers, 1)

	wire := body.Params.Timers[0]
	assert.Equal(t, "timer-1", wire["mId"])
	assert.Equal(t, "once", wire["type"])
	assert.Equal(t, "delay", wire["coolkit_timer_type"])
	assert.Equal(t, float64(1), wire["enabled"])
	assert.Equal(t, "5", wire["period"])
}

func TestClient_GetTimers(t *testing.T) {
	t.Run("parses the timer list out of params", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "timers", r.URL.Query().Get("params"))
			assert.Equal(t, "dev-1", r.URL.Query().Get("id"))
			writeEnvelope(w, map[string]any{"params": map[string]any{"timers": []map[string]any{
				{"mId": "timer-1", "enabled": 1, "at": "2026-03-14T12:05:00.000Z"},
			}}})
		})

		grant := model.AccessGrant{AccessToken: "at-1", Region: "us"}
		timers, err := c.GetTimers(context.Background(), grant, "dev-1")

		require.NoError(t, err)
		require.Len(t, timers, 1)
		assert.Equal(t, "timer-1", timers[0].MID)
		assert.True(t, timers[0].Live())
	})

	t.Run("device without timers yields an empty list", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, map[string]any{"params": map[string]any{}})
		})

		grant := model.AccessGrant{AccessToken: "at-1", Region: "us"}
		timers, err := c.GetTimers(context.Background(), grant, "dev-1")

		require.NoError(t, err)
		assert.Empty(t, timers)
	})
}

func TestClient_EnvelopeErrorBecomesAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": 402, "msg": "access token expired"})
	})

	grant := model.AccessGrant{AccessToken: "at-1", Region: "us"}
	err := c.SetSwitch(context.Background(), grant, "dev-1", "on")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 402, apiErr.Code)
	assert.Equal(t, "access token expired", apiErr.Message)
}

func TestClient_HTTPErrorBecomesAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	grant := model.AccessGrant{AccessToken: "at-1", Region: "us"}
	_, err := c.GetTimers(context.Background(), grant, "dev-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestClient_ListThingsPaginates(t *testing.T) {
	const total = 45 // spans two pages at the fixed page size

	var requests []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, thingListPath, r.URL.Path)
		begin := r.URL.Query().Get("beginIndex")
		requests = append(requests, begin)

		start := 0
		if begin != "-9999" {
			_, err := fmt.Sscanf(begin, "%d", &start)
			require.NoError(t, err)
		}

		items := make([]map[string]any, 0, thingListPageSize)
		for i := start; i < total && len(items) < thingListPageSize; i++ {
			items = append(items, map[string]any{
				"itemType": 1,
				"itemData": map[string]any{"deviceid": fmt.Sprintf("dev-%d", i), "name": "Device", "online": true},
			})
		}
		writeEnvelope(w, map[string]any{"total": total, "thingList": items})
	})

	grant := model.AccessGrant{AccessToken: "at-1", Region: "us"}
	devices, err := c.ListThings(context.Background(), grant)

	require.NoError(t, err)
	assert.Len(t, devices, total)
	assert.Equal(t, []string{"-9999", "30"}, requests)
	assert.Equal(t, "dev-0", devices[0].DeviceID)
	assert.Equal(t, "dev-44", devices[total-1].DeviceID)
}

func TestClient_ListThingsEmptyAccount(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{"total": 0, "thingList": []any{}})
	})

	grant := model.AccessGrant{AccessToken: "at-1", Region: "us"}
	devices, err := c.ListThings(context.Background(), grant)

	require.NoError(t, err)
	assert.Empty(t, devices)
}

func mustReadAll(t *testing.T, r *http.Request) []byte {
	t.Helper()

	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	return raw
}
