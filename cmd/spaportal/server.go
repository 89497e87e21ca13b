// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/thediveo/spaportal"
	"github.com/thediveo/spaportal/internal/config"
)

// healthz is the JSON body served on the portal's own liveness endpoint.
type healthz struct {
	Status  string        `json:"status"`
	Backend backendStatus `json:"backend"`
}

type backendStatus struct {
	Endpoint string     `json:"endpoint"`
	State    string     `json:"state"`
	Message  string     `json:"message,omitempty"`
	Error    string     `json:"error,omitempty"`
	At       *time.Time `json:"at,omitempty"`
}

// newServer returns the portal's HTTP server together with the health check
// it pings the backend with.
func newServer(cfg config.Config, log *slog.Logger) (*http.Server, *spaportal.HealthCheck) {
	health := spaportal.NewHealthCheck(cfg.BackendURL,
		spaportal.WithPingTimeout(cfg.PingTimeout),
		spaportal.WithHealthLogger(log.With(slog.String("component", "health"))))
	return &http.Server{
		Addr:              cfg.Listen,
		Handler:           newRouter(cfg, health, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}, health
}

// newRouter wires the portal, deferring the admin panel to static files, and
// the liveness endpoint.
func newRouter(cfg config.Config, health *spaportal.HealthCheck, log *slog.Logger) *mux.Router {
	portal := spaportal.NewPortal(health,
		spaportal.WithDeferredHandler(spaportal.NewStaticHandler(os.DirFS(cfg.PublicDir))),
		spaportal.WithLogger(log))

	r := mux.NewRouter()
	r.NewRoute().
		Methods(http.MethodGet, http.MethodHead).
		Path("/healthz").
		Handler(healthzHandler(health))
	r.NewRoute().
		PathPrefix("/").
		Handler(portal)
	return r
}

func healthzHandler(health *spaportal.HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st := health.Status()
		body := healthz{
			Status: "ok",
			Backend: backendStatus{
				Endpoint: health.Endpoint(),
				State:    st.State.String(),
				Message:  st.Message,
			},
		}
		if st.Err != nil {
			body.Backend.Error = st.Err.Error()
		}
		if !st.At.IsZero() {
			at := st.At.UTC()
			body.Backend.At = &at
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}
