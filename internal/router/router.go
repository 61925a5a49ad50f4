package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-device-gateway/internal/config"
	"go-device-gateway/internal/handler"
	"go-device-gateway/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Device *handler.DeviceHandler
	Timer  *handler.TimerHandler
	Static *handler.StaticHandler
}

func New(cfg *config.Config, sessionMiddleware *middleware.SessionMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", h.Static.Index)
	r.Get("/login", h.Auth.Login)
	r.Get("/redirectUrl", h.Auth.Callback)
	r.Get("/session", h.Auth.Session)
	r.Post("/logout", h.Auth.Logout)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.Timeout(cfg.RequestTimeout))
		protected.Use(sessionMiddleware.RequireSession)

		protected.Post("/control", h.Device.Control)
		protected.Get("/devices", h.Device.List)
		protected.Post("/set-timer", h.Timer.SetTimer)
		protected.Post("/verify-timer", h.Timer.VerifyTimer)
	})

	return r
}
