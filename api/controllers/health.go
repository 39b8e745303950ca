package controllers

import (
	"net/http"

	"github.com/mehtakaran9/librarium-backend/api/responses"
	"github.com/mehtakaran9/librarium-backend/pkg/config"
	"github.com/mehtakaran9/librarium-backend/pkg/db"
	pkgerrors "github.com/mehtakaran9/librarium-backend/pkg/errors"
	"github.com/mehtakaran9/librarium-backend/pkg/logger"
	"github.com/mehtakaran9/librarium-backend/pkg/redis"
)

// Healthz reports readiness: the process is up and both backing stores answer.
func Healthz(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}
