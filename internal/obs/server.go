// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package obs

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status is the JSON payload served at /debug/status.
type Status struct {
	Role              string `json:"role"`
	MasterReplID      string `json:"master_replid"`
	MasterReplOffset  int64  `json:"master_repl_offset"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	ConnectedClients  int64  `json:"connected_clients"`
	ConnectedReplicas int64  `json:"connected_replicas"`
}

// StatusFunc is called on every /debug/status request to build a fresh
// snapshot; the dispatcher owns the state, obs only renders it.
type StatusFunc func() Status

// Server is the observability HTTP surface, independent of the wire
// protocol TCP listener.
type Server struct {
	http *http.Server
}

// NewServer builds the gorilla/mux router exposing /metrics and
// /debug/status and wraps it the same way the teacher wraps its API
// router: gorilla/handlers request logging on top of a mux.Router.
func NewServer(addr string, statusFn StatusFunc) *Server {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/debug/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(statusFn()); err != nil {
			cclog.Errorf("obs: encoding status response: %v", err)
		}
	})

	handler := handlers.CombinedLoggingHandler(os.Stdout, r)

	return &Server{
		http: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts serving and blocks until the listener fails or ctx is
// cancelled, in which case it shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		cclog.Infof("obs: observability server listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
