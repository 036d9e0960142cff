package controllers

import (
	"net/http"

	"github.com/maisonaurelle/boutique-backend/api/responses"
	"github.com/maisonaurelle/boutique-backend/pkg/config"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
	pkgredis "github.com/maisonaurelle/boutique-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aurelle-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness after checking the cache connection. The
// database is exercised on every request path, so a dedicated check there
// would only duplicate what the first real query reports.
func HealthReady(cfg *config.Config, cache pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Aurelle-Env", cfg.App.Env)
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
