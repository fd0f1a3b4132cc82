package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	closurecore "github.com/loomwork/retention/internal/closure"
	"github.com/loomwork/retention/internal/config"
	"github.com/loomwork/retention/internal/filetrash"
	closurefeature "github.com/loomwork/retention/internal/http/features/closure"
	cronfeature "github.com/loomwork/retention/internal/http/features/cron"
	trashfeature "github.com/loomwork/retention/internal/http/features/trash"
	"github.com/loomwork/retention/internal/http/middleware"
	"github.com/loomwork/retention/internal/httputil"
	"github.com/loomwork/retention/internal/reaper"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Orchestrator    *closurecore.Orchestrator
	TrashService    *filetrash.Service
	ExpiryNotifier  *reaper.ExpiryNotifier
	ArchiveCleaner  *reaper.ArchiveCleaner
	FileTrashReaper *reaper.FileTrashReaper

	JWTSecret       []byte
	JWTIssuer       string
	CronSecret      string
	Production      bool
	RateLimit       config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	MaxRequestBody  int64
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBody))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := middleware.Auth(middleware.AuthConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
	})

	limit := middleware.NoRateLimit()
	if cfg.RateLimit.Enabled {
		limit = middleware.RateLimit(middleware.RateLimitConfig{
			Requests: cfg.RateLimit.ClosureRequests,
			Window:   cfg.RateLimit.ClosureWindow,
			Logger:   cfg.Logger,
		})
	}

	closurefeature.NewHandler(cfg.Orchestrator).RegisterRoutes(r, auth, limit)
	trashfeature.NewHandler(cfg.TrashService).RegisterRoutes(r, auth)

	cronAuth := middleware.CronAuth(middleware.CronAuthConfig{
		Secret:     cfg.CronSecret,
		Production: cfg.Production,
	})
	cronfeature.NewHandler(cfg.ExpiryNotifier, cfg.ArchiveCleaner, cfg.FileTrashReaper).RegisterRoutes(r, cronAuth)

	return r
}
