//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-device-gateway/internal/config"
	"go-device-gateway/internal/database"
	"go-device-gateway/internal/ewelink"
	"go-device-gateway/internal/handler"
	"go-device-gateway/internal/middleware"
	"go-device-gateway/internal/model"
	"go-device-gateway/internal/repository"
	"go-device-gateway/internal/router"
	"go-device-gateway/internal/service"
	"go-device-gateway/internal/session"
	"go-device-gateway/web"
)

// stubCloud fakes the device cloud: it issues tokens, stores per-device timer
// lists, and remembers the last switch command per device.
type stubCloud struct {
	mu sync.Mutex

	// expireAccessImmediately makes the token exchange hand out an already
	// expired access token, forcing the gateway into its lazy refresh path.
	expireAccessImmediately bool

	refreshCalls int
	statusWrites int
	timers       map[string][]model.DeviceTimer
	lastSwitch   map[string]string
	devices      []map[string]any
}

func newStubCloud() *stubCloud {
	return &stubCloud{
		timers:     map[string][]model.DeviceTimer{},
		lastSwitch: map[string]string{},
		devices: []map[string]any{
			{"deviceid": "dev-1", "name": "Heater", "online": true, "brandName": "SONOFF"},
			{"deviceid": "dev-2", "name": "Power Strip", "online": true, "brandName": "SONOFF"},
		},
	}
}

func (s *stubCloud) seedTimer(deviceID string, timer model.DeviceTimer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[deviceID] = append(s.timers[deviceID], timer)
}

func (s *stubCloud) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

func (s *stubCloud) statusWriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusWrites
}

func (s *stubCloud) switchState(deviceID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSwitch[deviceID]
}

func (s *stubCloud) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v2/user/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		atExpiry := time.Now().Add(30 * 24 * time.Hour)
		if s.expireAccessImmediately {
			atExpiry = time.Now().Add(-time.Minute)
		}
		s.mu.Unlock()

		writeData(w, map[string]any{
			"accessToken":   "at-initial",
			"refreshToken":  "rt-initial",
			"atExpiredTime": atExpiry.UnixMilli(),
			"rtExpiredTime": time.Now().Add(60 * 24 * time.Hour).UnixMilli(),
		})
	})

	mux.HandleFunc("POST /v2/user/refresh", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.refreshCalls++
		s.mu.Unlock()

		writeData(w, map[string]any{"at": "at-refreshed", "rt": "rt-refreshed"})
	})

	mux.HandleFunc("POST /v2/device/thing/status", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Type   int    `json:"type"`
			ID     string `json:"id"`
			Params struct {
				Switch   string               `json:"switch"`
				Switches []model.OutletSwitch `json:"switches"`
				Timers   []model.DeviceTimer  `json:"timers"`
			} `json:"params"`
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			writeCloudError(w, 400, "bad request")
			return
		}

		s.mu.Lock()
		s.statusWrites++
		if body.Params.Timers != nil {
			s.timers[body.ID] = body.Params.Timers
		}
		if body.Params.Switch != "" {
			s.lastSwitch[body.ID] = body.Params.Switch
		}
		if len(body.Params.Switches) > 0 {
			s.lastSwitch[body.ID] = body.Params.Switches[0].Switch
		}
		s.mu.Unlock()

		writeData(w, nil)
	})

	mux.HandleFunc("GET /v2/device/thing/status", func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.URL.Query().Get("id")

		s.mu.Lock()
		timers := s.timers[deviceID]
		s.mu.Unlock()

		writeData(w, map[string]any{"params": map[string]any{"timers": timers}})
	})

	mux.HandleFunc("GET /v2/device/thing", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		items := make([]map[string]any, 0, len(s.devices))
		for _, device := range s.devices {
			items = append(items, map[string]any{"itemType": 1, "itemData": device})
		}
		s.mu.Unlock()

		writeData(w, map[string]any{"total": len(items), "thingList": items})
	})

	return mux
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	payload := map[string]any{"error": 0, "msg": ""}
	if data != nil {
		payload["data"] = data
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeCloudError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code, "msg": msg})
}

// newGatewayServer wires the full HTTP surface against a stub cloud, the same
// way the application assembles it at startup.
func newGatewayServer(t *testing.T, cloud *stubCloud) *httptest.Server {
	t.Helper()

	cloudServer := httptest.NewServer(cloud.handler())
	t.Cleanup(cloudServer.Close)

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "gateway.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.EnsureSchema(context.Background()))

	client := ewelink.New("test-app-id", "test-app-secret", ewelink.WithBaseURL(cloudServer.URL))
	credentialRepo := repository.NewCredentialRepository(db.Conn)
	binder := session.NewBinder("test-session-secret", time.Hour)
	sessionMiddleware := middleware.NewSessionMiddleware(binder)

	tokenService := service.NewTokenService(credentialRepo, client)
	deviceService := service.NewDeviceService(client)
	timerService := service.NewTimerService(client)

	cfg := &config.Config{
		ServerPort:       "4001",
		RequestTimeout:   30 * time.Second,
		AppID:            "test-app-id",
		AppSecret:        "test-app-secret",
		Region:           "us",
		RedirectURL:      "http://127.0.0.1:4001/redirectUrl",
		APIBaseURL:       cloudServer.URL,
		SessionSecret:    "test-session-secret",
		SessionTTL:       time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	appRouter := router.New(cfg, sessionMiddleware, router.Handlers{
		Auth:   handler.NewAuthHandler(client, tokenService, binder, cfg.RedirectURL, cfg.Region),
		Device: handler.NewDeviceHandler(tokenService, deviceService),
		Timer:  handler.NewTimerHandler(tokenService, timerService),
		Static: handler.NewStaticHandler(web.Index),
	})

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server
}

// newBrowser returns a client with a cookie jar that never follows redirects,
// so tests can inspect each hop of the OAuth dance.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// login walks the OAuth flow: /login hands out the state cookie and redirect,
// the callback exchanges the code and binds the session cookie.
func login(t *testing.T, browser *http.Client, serverURL string) {
	t.Helper()

	loginResp, err := browser.Get(serverURL + "/login")
	require.NoError(t, err)
	t.Cleanup(func() { _ = loginResp.Body.Close() })
	require.Equal(t, http.StatusFound, loginResp.StatusCode)

	location, err := url.Parse(loginResp.Header.Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	callbackResp, err := browser.Get(serverURL + "/redirectUrl?code=test-code&region=us&state=" + url.QueryEscape(state))
	require.NoError(t, err)
	t.Cleanup(func() { _ = callbackResp.Body.Close() })
	require.Equal(t, http.StatusFound, callbackResp.StatusCode)
	require.Equal(t, "/", callbackResp.Header.Get("Location"))
}

func postJSON(t *testing.T, browser *http.Client, reqURL string, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, reqURL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := browser.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp, decodeJSON(t, resp)
}

func getJSON(t *testing.T, browser *http.Client, reqURL string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := browser.Get(reqURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp, decodeJSON(t, resp)
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "response body: %s", raw)
	return body
}

