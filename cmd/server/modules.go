package main

import (
	"net/http"

	"github.com/JaimeStill/estate/internal/api"
	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/internal/infrastructure"
	"github.com/JaimeStill/estate/pkg/handlers"
	"github.com/JaimeStill/estate/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type probeStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// buildRouter serves the liveness and readiness probes outside the API module
// so they bypass its middleware.
func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, probeStatus{Status: "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := infra.Lifecycle.Probe(r.Context()); err != nil {
			infra.Logger.Warn("readiness probe failed", "error", err)
			handlers.RespondJSON(w, http.StatusServiceUnavailable, probeStatus{Status: "not ready", Error: err.Error()})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, probeStatus{Status: "ready"})
	})

	return router
}
