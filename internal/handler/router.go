/*
This file defines the main Router, applying middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"roboveda/internal/pkg/auth/jwt"
	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/limiter"
	"roboveda/internal/pkg/logx"
	"roboveda/internal/pkg/resp"
)

// requireAuth rejects requests whose session cookie did not resolve to an
// identity. Routes that answer differently for anonymous callers (the session
// probe, logout) check the context themselves instead.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if jwt.GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Auth endpoints are brute-force targets; one attempt per 5 seconds with a
// small burst per IP.
const (
	AuthRate  = 0.2
	AuthBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":      "ok",
			"service":     "RoboVeda API",
			"limitedMode": deps.LimitedMode,
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{"version": Version})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", authLimiter.Middleware(HandleSignup(deps)).ServeHTTP)
			auth.Post("/login", authLimiter.Middleware(HandleLogin(deps)).ServeHTTP)
			auth.Post("/logout", HandleLogout(deps))
			auth.Get("/session", HandleGetSession(deps))
		})

		api.Route("/user", func(user chi.Router) {
			user.Patch("/profile", HandleUpdateProfile(deps))
			user.Patch("/preferences", HandleUpdatePreferences(deps))
			user.Post("/avatar/presign", HandlePresignAvatar(deps))
			user.Get("/avatar", HandleAvatarDownloadURL(deps))
			user.Delete("/avatar", HandleRemoveAvatar(deps))
		})

		api.Route("/blockchain", func(bc chi.Router) {
			bc.Get("/chains", HandleListChains(deps))
			bc.Post("/link-wallet", HandleLinkWallet(deps))
		})

		api.Route("/dashboard", func(dash chi.Router) {
			dash.Use(requireAuth)
			dash.Get("/overview", HandleDashboardOverview(deps))
			dash.Get("/activity", HandleDashboardActivity(deps))
			dash.Get("/quick-stats", HandleQuickStats(deps))
		})

		api.Route("/ai", func(aiRoutes chi.Router) {
			aiRoutes.Post("/chat", HandleChat(deps))
			aiRoutes.Get("/models", HandleListModels(deps))
		})

		api.Route("/devices", func(dev chi.Router) {
			dev.Use(requireAuth)
			dev.Post("/", HandleRegisterDevice(deps))
			dev.Get("/", HandleListDevices(deps))
			dev.Get("/{id}", HandleGetDevice(deps))
			dev.Delete("/{id}", HandleRemoveDevice(deps))
			dev.Post("/{id}/command", HandleDeviceCommand(deps))
			dev.Get("/{id}/telemetry", HandleDeviceTelemetry(deps))
		})
	})

	r.Get("/ws/devices/{id}/telemetry",
		jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret)(HandleTelemetryFeed(wsUpgrader, deps)).ServeHTTP)

	return r
}
