package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/supplysync/supplysync-backend/api/responses"
	"github.com/supplysync/supplysync-backend/pkg/config"
	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/logger"
)

const envHeader = "X-SupplySync-Env"

const readyCheckTimeout = 2 * time.Second

// Pinger is the readiness surface shared by the datastore clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing store; a single failure makes the
// instance not ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, stores map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := make(map[string]string, len(stores))
		for name, store := range stores {
			if store == nil {
				continue
			}
			if err := store.Ping(ctx); err != nil {
				checks[name] = "down"
				err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").
					WithDetails(map[string]any{"checks": checks})
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			checks[name] = "up"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
