// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package housekeeping runs the node's background maintenance jobs on a
// single cooperative scheduler, grounded on the teacher's
// internal/taskManager: an active TTL sweep on top of the store's
// mandatory lazy eviction, and a periodic stats log.
package housekeeping

import (
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/go-co-op/gocron/v2"
	"github.com/kvnode/kvnode/internal/dispatch"
	"github.com/kvnode/kvnode/internal/store"
)

const statsInterval = 30 * time.Second

// Scheduler owns the gocron.Scheduler running for the process lifetime.
type Scheduler struct {
	sched gocron.Scheduler
}

// New builds a Scheduler with both housekeeping jobs registered:
//   - an active TTL sweep of st.Strings, at sweepInterval, purely an
//     optimization over the mandatory lazy eviction performed on read;
//   - a fixed 30s stats log of connected-client/replica and per-store
//     key counts.
//
// sweepInterval is parsed the same way the teacher parses its own
// cron-frequency durations; a malformed interval falls back to 1m
// rather than aborting startup.
func New(st *store.GlobalStore, d *dispatch.Dispatcher, sweepInterval string) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	interval, err := time.ParseDuration(sweepInterval)
	if err != nil {
		cclog.Warnf("housekeeping: could not parse retention-sweep interval %q, defaulting to 1m", sweepInterval)
		interval = time.Minute
	}

	if _, err := sched.NewJob(gocron.DurationJob(interval), gocron.NewTask(func() {
		n := st.Strings.SweepExpired(time.Now())
		if n > 0 {
			cclog.Debugf("housekeeping: TTL sweep expired %d key(s)", n)
		}
	})); err != nil {
		return nil, err
	}

	if _, err := sched.NewJob(gocron.DurationJob(statsInterval), gocron.NewTask(func() {
		cclog.Infof(
			"housekeeping: clients=%d replicas=%d strings=%d lists=%d streams=%d",
			d.ConnectedClients(), st.ConnectedFollowers(), st.Strings.Len(), st.Lists.KeyCount(), st.Streams.KeyCount(),
		)
	})); err != nil {
		return nil, err
	}

	return &Scheduler{sched: sched}, nil
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Shutdown stops the scheduler and waits for any in-flight job to finish.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
